package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/metrics"
)

const dateLayout = "2006-01-02"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report on tracked events",
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show the stats of a single day",
	Run: func(cmd *cobra.Command, _ []string) {
		withSink(cmd, func(sink *metrics.FileSink, log *zap.Logger) error {
			day, err := dateFlag(cmd, "date", time.Now())
			if err != nil {
				return err
			}
			stats, err := sink.DailyStats(day)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputFlag(cmd), stats)
		})
	},
}

var statsWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the stats of the last seven days, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		withSink(cmd, func(sink *metrics.FileSink, log *zap.Logger) error {
			week, err := sink.WeeklyStats(time.Now())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputFlag(cmd), week)
		})
	},
}

var statsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily stats for a date range as json or csv",
	Run: func(cmd *cobra.Command, _ []string) {
		withSink(cmd, func(sink *metrics.FileSink, log *zap.Logger) error {
			to, err := dateFlag(cmd, "to", time.Now())
			if err != nil {
				return err
			}
			from, err := dateFlag(cmd, "from", to.AddDate(0, 0, -6))
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()
				out = f
				log.Info("exporting stats to file", zap.String("filename", path))
			}

			return sink.Export(out, from, to, format)
		})
	},
}

var statsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove daily event files older than the retention period",
	Run: func(cmd *cobra.Command, _ []string) {
		withSink(cmd, func(sink *metrics.FileSink, log *zap.Logger) error {
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = viper.GetInt("metrics.retention-days")
			}
			removed, err := sink.Cleanup(time.Now(), days)
			log.Info("cleanup finished", zap.Int("removed", len(removed)), zap.Int("retention_days", days))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsDailyCmd, statsWeekCmd, statsExportCmd, statsCleanupCmd)

	statsCmd.PersistentFlags().StringP("output", "o", "json", "output format: json or yaml")

	statsDailyCmd.Flags().String("date", "", "day to report, YYYY-MM-DD (default today)")

	statsExportCmd.Flags().String("from", "", "first day, YYYY-MM-DD (default six days before --to)")
	statsExportCmd.Flags().String("to", "", "last day, YYYY-MM-DD (default today)")
	statsExportCmd.Flags().StringP("format", "f", metrics.FormatJSON, "export format: json or csv")
	statsExportCmd.Flags().String("file", "", "write the export to a file instead of stdout")

	statsCleanupCmd.Flags().Int("days", 0, "days to keep (default from metrics.retention-days)")
}

func withSink(cmd *cobra.Command, fn func(*metrics.FileSink, *zap.Logger) error) {
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
		logger.Fatal("opening metrics", zap.Error(err))
	}

	if err := fn(sink, logger); err != nil {
		logger.Fatal(cmd.CommandPath(), zap.Error(err))
	}
}

func outputFlag(cmd *cobra.Command) string {
	output, _ := cmd.Flags().GetString("output")
	return output
}

func dateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return fallback, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --%s: %w", name, err)
	}
	return day, nil
}
