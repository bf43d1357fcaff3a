package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/spigell/resumebek/internal/contact"
	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/resume"
)

// DetectReport is the outcome of detection for a single file.
type DetectReport struct {
	File      string          `json:"file" yaml:"file"`
	Resume    bool            `json:"resume" yaml:"resume"`
	Threshold float64         `json:"threshold" yaml:"threshold"`
	Score     resume.Score    `json:"score" yaml:"score"`
	Patterns  map[string]int  `json:"patterns" yaml:"patterns"`
	Language  *lang.Detection `json:"language,omitempty" yaml:"language,omitempty"`
	Contacts  *contact.Info   `json:"contacts,omitempty" yaml:"contacts,omitempty"`
}

type detector struct {
	classifier *resume.Classifier
	identifier *lang.Identifier
	extractor  *contact.Extractor
}

func (d detector) detect(name, text string) DetectReport {
	score, isResume := d.classifier.Evaluate(text)
	report := DetectReport{
		File:      name,
		Resume:    isResume,
		Threshold: d.classifier.Threshold(),
		Score:     score,
		Patterns:  d.classifier.PatternHits(text),
	}
	if !report.Resume {
		return report
	}

	detection := d.identifier.Identify(text)
	info := d.extractor.Extract(text)
	report.Language = &detection
	report.Contacts = &info

	return report
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Check whether plain-text documents are resumes and detect their language",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		detect(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	detectCmd.Flags().IntP("concurrency", "c", 4, "how many files to process at once")
	detectCmd.Flags().Float64P("threshold", "t", 0, "classification threshold (default from detector.threshold)")
}

func detect(cmd *cobra.Command, files []string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	threshold := config.Detector.Threshold
	if t, _ := cmd.Flags().GetFloat64("threshold"); t > 0 {
		threshold = t
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	output, _ := cmd.Flags().GetString("output")

	d := detector{
		classifier: resume.NewClassifier(threshold),
		identifier: lang.NewIdentifier(),
		extractor:  contact.NewExtractor(),
	}

	reports, err := detectFiles(context.Background(), d, files, concurrency)
	if err != nil {
		logger.Fatal("detecting resumes", zap.Error(err))
	}

	for _, r := range reports {
		logger.Debug("detected",
			zap.String("file", r.File),
			zap.Bool("resume", r.Resume),
			zap.Float64("total_score", r.Score.Total),
		)
	}

	if err := writeOutput(cmd.OutOrStdout(), output, reports); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}
}

func detectFiles(ctx context.Context, d detector, files []string, concurrency int) ([]DetectReport, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	reports := make([]DetectReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			reports[i] = d.detect(file, string(data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
