package lang

// Key identifies a user-facing text.
type Key int

const (
	FileReadError Key = iota
	AnalysisError
	NetworkError
	TimeoutError
	APIError
	FileTooLarge
	Processing
	PhotoCTA
	PhotoButton
	FollowUp
)

var keyNames = map[Key]string{
	FileReadError: "file_read_error",
	AnalysisError: "analysis_error",
	NetworkError:  "network_error",
	TimeoutError:  "timeout_error",
	APIError:      "api_error",
	FileTooLarge:  "file_too_large",
	Processing:    "processing",
	PhotoCTA:      "photo_cta",
	PhotoButton:   "photo_button",
	FollowUp:      "follow_up",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

type catalog struct {
	fileReadError string
	analysisError string
	networkError  string
	timeoutError  string
	apiError      string
	fileTooLarge  string
	processing    string
	photoCTA      string
	photoButton   string
	followUp      string
}

var kazakhCatalog = catalog{
	fileReadError: "❌ Файлды оқу мүмкін болмады. Басқа форматты қолданып көріңіз.",
	analysisError: "😔 Кешіріңіз, резюмені талдау кезінде қате пайда болды. Біраздан кейін қайталап көріңіз.",
	networkError:  "🌐 Желі қатесі. Интернет байланысын тексеріп, қайталап көріңіз.",
	timeoutError:  "⏱️ Талдау уақыты өте ұзаққа созылды. Қайталап көріңіз.",
	apiError:      "🤖 AI қызметімен байланыс орнату мүмкін болмады. Біраздан кейін қайталап көріңіз.",
	fileTooLarge:  "📏 Файл тым үлкен. 10MB-тан кіші файл жүктеңіз.",
	processing:    "🔄 Резюмеңізді талдап жатырмын... Бұл 15-30 секунд алады.",
	photoCTA:      "📸 **Резюмеңізге кәсіби сурет қосыңыз!**\nСтудент пакеті: 990₸ (80% жеңілдік)\n👆 Тапсырыс беру үшін төмендегі батырманы басыңыз",
	photoButton:   "📸 Кәсіби сурет алу - 990₸",
	followUp: `👋 Резюмеңізді жаңарттыңыз ба?

💡 **Кеңестер:**
- LinkedIn, HeadHunter, Naim.kz профильдерін жаңартыңыз
- Жаңа дағдыларыңызды қосуды ұмытпаңыз
- Кәсіби суретті резюмеге қосыңыз

📸 Кәсіби сурет әлі де керек болса - 990₸`,
}

var russianCatalog = catalog{
	fileReadError: "❌ Не удалось прочитать файл. Попробуйте другой формат.",
	analysisError: "😔 Извините, произошла ошибка при анализе резюме. Попробуйте позже.",
	networkError:  "🌐 Ошибка сети. Проверьте интернет-соединение и попробуйте снова.",
	timeoutError:  "⏱️ Анализ занял слишком много времени. Попробуйте еще раз.",
	apiError:      "🤖 Не удалось связаться с AI сервисом. Попробуйте позже.",
	fileTooLarge:  "📏 Файл слишком большой. Загрузите файл меньше 10MB.",
	processing:    "🔄 Анализирую ваше резюме... Это займет 15-30 секунд.",
	photoCTA:      "📸 **Добавьте профессиональное фото к резюме!**\nСтуденческий пакет: 990₸ (скидка 80%)\n👆 Нажмите кнопку ниже для заказа",
	photoButton:   "📸 Получить профессиональное фото - 990₸",
	followUp: `👋 Обновили свое резюме?

💡 **Рекомендации:**
- Обновите профили в LinkedIn, HeadHunter, Naim.kz
- Не забудьте добавить новые навыки
- Добавьте профессиональное фото

📸 Если все еще нужно профессиональное фото - 990₸`,
}

var englishCatalog = catalog{
	fileReadError: "❌ Failed to read the file. Please try another format.",
	analysisError: "😔 Sorry, an error occurred while analyzing the resume. Please try again later.",
	networkError:  "🌐 Network error. Please check your connection and try again.",
	timeoutError:  "⏱️ Analysis took too long. Please try again.",
	apiError:      "🤖 Failed to connect to AI service. Please try later.",
	fileTooLarge:  "📏 File is too large. Please upload a file smaller than 10MB.",
	processing:    "🔄 Analyzing your resume... This will take 15-30 seconds.",
	photoCTA:      "📸 **Add a professional photo to your resume!**\nStudent Package: 990₸ (80% discount)\n👆 Click the button below to order",
	photoButton:   "📸 Get Professional Photo - 990₸",
	followUp: `👋 Updated your resume?

💡 **Recommendations:**
- Update your LinkedIn, HeadHunter, Naim.kz profiles
- Don't forget to add new skills
- Add a professional photo

📸 Still need a professional photo? - 990₸`,
}

func catalogFor(l Language) catalog {
	switch l {
	case Kazakh:
		return kazakhCatalog
	case English:
		return englishCatalog
	case Russian:
		return russianCatalog
	default:
		return russianCatalog
	}
}

// Text returns the text for key in language l. Unsupported languages get the
// Russian text, unknown keys an empty string.
func Text(key Key, l Language) string {
	c := catalogFor(l)

	switch key {
	case FileReadError:
		return c.fileReadError
	case AnalysisError:
		return c.analysisError
	case NetworkError:
		return c.networkError
	case TimeoutError:
		return c.timeoutError
	case APIError:
		return c.apiError
	case FileTooLarge:
		return c.fileTooLarge
	case Processing:
		return c.processing
	case PhotoCTA:
		return c.photoCTA
	case PhotoButton:
		return c.photoButton
	case FollowUp:
		return c.followUp
	default:
		return ""
	}
}
