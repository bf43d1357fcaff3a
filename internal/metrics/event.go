// Package metrics records product events as daily JSON-lines files and
// aggregates them into reports.
package metrics

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// EventName is the kind of a tracked event.
type EventName string

const (
	ResumeAnalyzed EventName = "resume_analyzed"
	PhotoClicked   EventName = "photo_cta_clicked"
	UserStarted    EventName = "user_started"
	FollowUpSent   EventName = "followup_sent"
)

// Event is a single tracked occurrence.
type Event struct {
	Name      EventName `json:"event" mapstructure:"event"`
	UserID    int64     `json:"user_id" mapstructure:"user_id"`
	Language  string    `json:"language,omitempty" mapstructure:"language"`
	Timestamp time.Time `json:"timestamp" mapstructure:"timestamp"`
}

// Sink accepts events.
type Sink interface {
	Track(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(context.Context, Event) error { return nil }

// Layouts accepted for timestamps. Older files were written without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func timestampHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	raw := data.(string)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("unsupported timestamp %q", raw)
}

// decodeEvent converts a loosely typed record into an Event. User IDs may be
// strings or numbers.
func decodeEvent(record map[string]any) (Event, error) {
	var event Event

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timestampHook,
		WeaklyTypedInput: true,
		Result:           &event,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(record); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	if event.Name == "" {
		return Event{}, fmt.Errorf("event name is missing")
	}
	if event.Timestamp.IsZero() {
		return Event{}, fmt.Errorf("event timestamp is missing")
	}

	return event, nil
}
