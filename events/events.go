package events

import (
	"context"
	"time"

	"github.com/Dosada05/party-bets/models"
	"github.com/google/uuid"
)

// EntrySubmitted is published once per committed entry.
type EntrySubmitted struct {
	EventID       string    `json:"event_id"`
	EntryID       int64     `json:"entry_id"`
	Applicant     string    `json:"applicant"`
	PapaMemberIDs []int64   `json:"papa_member_ids"`
	LineMemberIDs []int64   `json:"line_member_ids"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEntrySubmitted(e *models.Entry) EntrySubmitted {
	line := e.LineMemberIDs()
	return EntrySubmitted{
		EventID:       uuid.NewString(),
		EntryID:       e.ID,
		Applicant:     e.Applicant,
		PapaMemberIDs: e.PapaMemberIDs(),
		LineMemberIDs: line[:],
		OccurredAt:    e.CreatedAt.UTC(),
	}
}

type Publisher interface {
	PublishEntrySubmitted(ctx context.Context, e EntrySubmitted) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishEntrySubmitted(context.Context, EntrySubmitted) error { return nil }
func (NoopPublisher) Close() error                                               { return nil }
