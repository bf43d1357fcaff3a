package metrics

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	filePrefix = "resumebek_analytics_"
	fileSuffix = ".json"
	dayLayout  = "2006-01-02"

	DefaultRetentionDays = 30
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// DailyStats summarizes one day of events.
type DailyStats struct {
	Date               string         `json:"date" yaml:"date"`
	TotalUsers         int            `json:"total_users" yaml:"total_users"`
	TotalAnalyses      int            `json:"total_analyses" yaml:"total_analyses"`
	PhotoClicks        int            `json:"photo_clicks" yaml:"photo_clicks"`
	ConversionRate     float64        `json:"conversion_rate" yaml:"conversion_rate"`
	Languages          map[string]int `json:"languages" yaml:"languages"`
	HourlyDistribution map[int]int    `json:"hourly_distribution" yaml:"hourly_distribution"`
}

func emptyStats(day time.Time) DailyStats {
	return DailyStats{
		Date:               day.Format(dayLayout),
		Languages:          map[string]int{},
		HourlyDistribution: map[int]int{},
	}
}

var _ Sink = (*FileSink)(nil)

// FileSink appends events to one file per day under dir.
type FileSink struct {
	mu     sync.Mutex
	fs     afero.Fs
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSink creates dir when needed and returns a sink writing into it.
func NewFileSink(fs afero.Fs, dir string, logger *zap.Logger) (*FileSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("metrics directory is required")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create metrics directory %q: %w", dir, err)
	}

	return &FileSink{fs: fs, dir: dir, logger: logger, now: time.Now}, nil
}

func (s *FileSink) path(day time.Time) string {
	return filepath.Join(s.dir, filePrefix+day.Format(dayLayout)+fileSuffix)
}

// Track appends the event to the file of the day it happened. A zero
// timestamp is set to the current time.
func (s *FileSink) Track(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(event.Timestamp)
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}

	s.logger.Debug("tracked event",
		zap.String("event", string(event.Name)),
		zap.Int64("user_id", event.UserID),
	)

	return nil
}

// DailyStats aggregates the events of day. A day without a file has zero stats.
func (s *FileSink) DailyStats(day time.Time) (DailyStats, error) {
	stats := emptyStats(day)

	events, err := s.readDay(day)
	if err != nil {
		return stats, err
	}

	users := make(map[int64]struct{})
	for _, e := range events {
		users[e.UserID] = struct{}{}
		stats.HourlyDistribution[e.Timestamp.Hour()]++

		switch e.Name {
		case ResumeAnalyzed:
			stats.TotalAnalyses++
			language := e.Language
			if language == "" {
				language = "unknown"
			}
			stats.Languages[language]++
		case PhotoClicked:
			stats.PhotoClicks++
		}
	}

	stats.TotalUsers = len(users)
	if stats.TotalAnalyses > 0 {
		stats.ConversionRate = float64(stats.PhotoClicks) / float64(stats.TotalAnalyses) * 100
	}

	return stats, nil
}

func (s *FileSink) readDay(day time.Time) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(day)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var events []Event
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			s.logger.Warn("skip unparseable event", zap.String("file", path), zap.Int("line", n), zap.Error(err))
			continue
		}

		event, err := decodeEvent(record)
		if err != nil {
			s.logger.Warn("skip invalid event", zap.String("file", path), zap.Int("line", n), zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return events, nil
}

// WeeklyStats returns the stats of the seven days ending with today, newest first.
func (s *FileSink) WeeklyStats(today time.Time) ([]DailyStats, error) {
	week := make([]DailyStats, 0, 7)
	for i := range 7 {
		stats, err := s.DailyStats(today.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		week = append(week, stats)
	}
	return week, nil
}

// Export writes the stats of every day from..to inclusive in the given format.
func (s *FileSink) Export(w io.Writer, from, to time.Time, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON && format != FormatCSV {
		return fmt.Errorf("unsupported format: %q", format)
	}

	all := []DailyStats{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		stats, err := s.DailyStats(day)
		if err != nil {
			return err
		}
		all = append(all, stats)
	}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Total Users", "Total Analyses", "Photo Clicks", "Conversion Rate"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, stats := range all {
		record := []string{
			stats.Date,
			strconv.Itoa(stats.TotalUsers),
			strconv.Itoa(stats.TotalAnalyses),
			strconv.Itoa(stats.PhotoClicks),
			strconv.FormatFloat(stats.ConversionRate, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Cleanup removes the daily files dated before today minus days and returns
// their names. Files with a malformed date are left alone.
func (s *FileSink) Cleanup(today time.Time, days int) ([]string, error) {
	if days < 0 {
		return nil, fmt.Errorf("retention must not be negative: %d", days)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	y, m, d := today.AddDate(0, 0, -days).Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		date, err := time.Parse(dayLayout, raw)
		if err != nil {
			s.logger.Warn("skip metrics file with malformed date", zap.String("file", name), zap.Error(err))
			continue
		}
		if !date.Before(cutoff) {
			continue
		}

		if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		s.logger.Info("removed old metrics file", zap.String("file", name))
		removed = append(removed, name)
	}

	return removed, nil
}
