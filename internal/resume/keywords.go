package resume

// Indicator vocabularies. Every entry counts once towards the keyword
// denominator, so words shared between languages ("резюме", "cv") are counted
// per list.
var (
	englishKeywords = []string{
		"resume", "cv", "curriculum vitae", "experience", "education",
		"skills", "work history", "employment", "qualifications",
		"professional summary", "career objective", "achievements",
		"responsibilities", "references", "internship", "projects",
		"certifications", "languages", "contact information",
	}

	russianKeywords = []string{
		"резюме", "cv", "опыт работы", "образование", "навыки",
		"трудовой опыт", "карьера", "квалификация", "достижения",
		"обязанности", "профессиональные навыки", "о себе",
		"контактная информация", "стаж", "должность", "компания",
		"сертификаты", "языки", "рекомендации", "портфолио",
	}

	kazakhKeywords = []string{
		"резюме", "жұмыс тәжірибесі", "білім", "дағдылар", "мансап",
		"біліктілік", "жетістіктер", "міндеттер", "байланыс ақпараты",
		"кәсіби дағдылар", "өзім туралы", "тілдер", "сертификаттар",
		"ұсыныстар", "жоба", "тағылымдама",
	}
)

// Section families used by the structure signal.
var (
	educationSection  = []string{"education", "образование", "білім"}
	experienceSection = []string{"experience", "опыт", "тәжірибе"}
	skillsSection     = []string{"skills", "навыки", "дағдылар"}
)

func allKeywords() []string {
	out := make([]string, 0, len(englishKeywords)+len(russianKeywords)+len(kazakhKeywords))
	out = append(out, englishKeywords...)
	out = append(out, russianKeywords...)
	out = append(out, kazakhKeywords...)
	return out
}
