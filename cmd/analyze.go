package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/contact"
	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/notify"
	"github.com/spigell/resumebek/internal/pipeline"
	"github.com/spigell/resumebek/internal/resume"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Review a plain-text resume with AI and schedule a follow-up",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int64P("user-id", "u", 0, "id of the user who uploaded the document")
	analyzeCmd.Flags().Int64P("chat-id", "c", 0, "chat to reply to (default is the user id)")
	analyzeCmd.Flags().BoolP("yes", "y", false, "analyze without confirmation even if the document does not look like a resume")
	analyzeCmd.Flags().StringP("output", "o", "json", "output format of the result: json or yaml")
}

func analyze(cmd *cobra.Command, file string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resumebek", zap.String("version", version))

	info, err := os.Stat(file)
	if err != nil {
		logger.Fatal("reading the document", zap.Error(err))
	}
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Fatal("reading the document", zap.Error(err))
	}
	text := string(data)

	userID, _ := cmd.Flags().GetInt64("user-id")
	chatID, _ := cmd.Flags().GetInt64("chat-id")
	if chatID == 0 {
		chatID = userID
	}

	classifier := resume.NewClassifier(config.Detector.Threshold)

	force := false
	if score, isResume := classifier.Evaluate(text); !isResume {
		yes, _ := cmd.Flags().GetBool("yes")
		force = yes || confirmForce(score)
		if !force {
			logger.Info("exiting", zap.String("reason", "document does not look like a resume"))
			return
		}
	}

	analyzer, err := newAnalyzer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating the analyzer", zap.Error(err))
	}

	sink, err := newMetricsSink(config.Metrics, logger)
	if err != nil {
		logger.Fatal("creating the metrics sink", zap.Error(err))
	}

	notifier := notify.NewConsole(cmd.OutOrStdout())

	deps := pipeline.Deps{
		Classifier: classifier,
		Identifier: lang.NewIdentifier(),
		Extractor:  contact.NewExtractor(),
		Analyzer:   analyzer,
		Notifier:   notifier,
		Metrics:    sink,
		Logger:     logger,
	}

	if config.FollowUp.Enabled {
		scheduler, store, err := newScheduler(config, notifier, sink, logger)
		if err != nil {
			logger.Fatal("creating the follow-up scheduler", zap.Error(err))
		}
		// Pending follow-ups stay persisted and are delivered by "followups run".
		defer store.Close()
		defer scheduler.Close()
		deps.Scheduler = scheduler
	}

	handler, err := pipeline.NewHandler(deps, config.pipelineOptions())
	if err != nil {
		logger.Fatal("creating the pipeline", zap.Error(err))
	}

	result, err := handler.Handle(ctx, pipeline.Upload{
		UserID: userID,
		ChatID: chatID,
		Size:   info.Size(),
		Text:   text,
		Force:  force,
	})

	output, _ := cmd.Flags().GetString("output")
	if werr := writeOutput(cmd.OutOrStdout(), output, result); werr != nil {
		logger.Error("writing output", zap.Error(werr))
	}

	switch {
	case errors.Is(err, pipeline.ErrFileTooLarge), errors.Is(err, pipeline.ErrTextTooShort):
		logger.Warn("document rejected", zap.Error(err))
	case err != nil:
		logger.Error("analysis failed", zap.Error(err))
	default:
		logger.Info("done", zap.String("outcome", string(result.Outcome)))
	}
}

func confirmForce(score resume.Score) bool {
	prompt := promptui.Prompt{
		Label:     "The document does not look like a resume. Analyze anyway",
		IsConfirm: true,
	}

	log.Printf("classification score %.1f (keyword %.1f, pattern %.1f, structure %.1f)",
		score.Total, score.Keyword, score.Pattern, score.Structure)

	_, err := prompt.Run()
	return err == nil
}
