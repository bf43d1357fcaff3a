// Package followup persists and delivers the reminder sent to a user some time
// after their resume was reviewed.
package followup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spigell/resumebek/internal/lang"
)

// Job is a pending follow-up message.
type Job struct {
	ID           string        `json:"id" yaml:"id"`
	UserID       int64         `json:"user_id" yaml:"user_id"`
	ChatID       int64         `json:"chat_id" yaml:"chat_id"`
	Language     lang.Language `json:"language" yaml:"language"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
	ScheduledFor time.Time     `json:"scheduled_for" yaml:"scheduled_for"`
}

// Name identifies the recipient of the job.
func (j Job) Name() string {
	return fmt.Sprintf("followup_%d_%d", j.UserID, j.ChatID)
}

// Store persists jobs until they are delivered.
type Store interface {
	Save(ctx context.Context, job Job) error
	Remove(ctx context.Context, id string) error
	// List returns every job ordered by ScheduledFor.
	List(ctx context.Context) ([]Job, error)
	Close() error
}

func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].ScheduledFor.Before(jobs[k].ScheduledFor)
	})
}
