package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/notify"
)

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "Inspect and deliver pending follow-up messages",
}

var followupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending follow-ups",
	Run: func(cmd *cobra.Command, _ []string) {
		listFollowUps(cmd)
	},
}

var followupsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Restore pending follow-ups and deliver them when due",
	Run: func(cmd *cobra.Command, _ []string) {
		runFollowUps(cmd)
	},
}

func init() {
	rootCmd.AddCommand(followupsCmd)
	followupsCmd.AddCommand(followupsListCmd, followupsRunCmd)

	followupsListCmd.Flags().StringP("output", "o", "yaml", "output format: json or yaml")
}

func listFollowUps(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := newFollowUpStore(config.FollowUp)
	if err != nil {
		logger.Fatal("opening the follow-up store", zap.Error(err))
	}
	defer store.Close()

	jobs, err := store.List(context.Background())
	if err != nil {
		logger.Fatal("listing follow-ups", zap.Error(err))
	}

	logger.Info("pending follow-ups", zap.Int("count", len(jobs)))

	output, _ := cmd.Flags().GetString("output")
	if err := writeOutput(cmd.OutOrStdout(), output, jobs); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}
}

func runFollowUps(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	sink, err := newMetricsSink(config.Metrics, logger)
	if err != nil {
		logger.Fatal("creating the metrics sink", zap.Error(err))
	}

	scheduler, store, err := newScheduler(config, notify.NewConsole(cmd.OutOrStdout()), sink, logger)
	if err != nil {
		logger.Fatal("creating the follow-up scheduler", zap.Error(err))
	}
	defer store.Close()

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			updated, err := getConfig()
			if err != nil {
				logger.Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
				return
			}
			moved, err := scheduler.SetDelay(ctx, updated.FollowUp.Delay)
			if err != nil {
				logger.Error("applying the new follow-up delay", zap.Error(err))
			}
			logger.Info("config reloaded",
				zap.String("file", e.Name),
				zap.Duration("followup_delay", scheduler.Delay()),
				zap.Int("rescheduled", moved),
			)
		})
		viper.WatchConfig()
	}

	restored, err := scheduler.Restore(ctx)
	if err != nil {
		logger.Fatal("restoring follow-ups", zap.Error(err))
	}
	if restored == 0 {
		logger.Info("exiting", zap.String("reason", "no pending follow-ups"))
		return
	}

	done := make(chan struct{})
	go func() {
		scheduler.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all follow-ups processed")
	case <-ctx.Done():
		logger.Info("interrupted, pending follow-ups stay persisted")
		scheduler.Close()
	}
}
