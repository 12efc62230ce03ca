package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/party-bets/events"
	"github.com/Dosada05/party-bets/live"
	"github.com/Dosada05/party-bets/metrics"
	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/repositories"
	"go.uber.org/zap"
)

// publishTimeout stays well under the HTTP server write timeout.
const publishTimeout = 2 * time.Second

type EntryService interface {
	SubmitEntry(ctx context.Context, input SubmitEntryInput) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]*models.Entry, error)
	GetEntry(ctx context.Context, id int64) (*models.Entry, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
}

type entryService struct {
	entryRepo repositories.EntryRepository
	roster    Roster
	hub       *live.Hub
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewEntryService(
	entryRepo repositories.EntryRepository,
	roster Roster,
	hub *live.Hub,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) EntryService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &entryService{
		entryRepo: entryRepo,
		roster:    roster,
		hub:       hub,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *entryService) SubmitEntry(ctx context.Context, input SubmitEntryInput) (*models.Entry, error) {
	known, err := s.roster.Lookup(ctx, input.ReferencedIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roster: %w", err)
	}

	draft, verr := ValidateSubmission(input, known)
	if verr != nil {
		for _, v := range verr.Violations {
			s.metrics.ValidationFailed(string(v.Kind))
		}
		return nil, verr
	}

	if collapsed := len(input.PapaMembers) - len(draft.PapaMemberIDs); collapsed > 0 {
		s.logger.Warn("duplicate game 1 picks collapsed",
			zap.String("applicant", draft.Applicant),
			zap.Int("submitted", len(input.PapaMembers)),
			zap.Int("stored", len(draft.PapaMemberIDs)))
		s.metrics.DuplicatesCollapsed(collapsed)
	}

	entry, err := s.entryRepo.Create(ctx, draft)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMemberReferenceInvalid):
			return nil, fmt.Errorf("%w: %w", ErrMemberReferenceInvalid, err)
		default:
			return nil, fmt.Errorf("%w: failed to create entry: %w", ErrPersistence, err)
		}
	}
	resolveMemberNames(entry, known)

	s.metrics.EntrySubmitted()
	s.logger.Info("entry submitted", zap.Int64("entry_id", entry.ID), zap.String("applicant", entry.Applicant))
	s.notify(ctx, entry)

	return entry, nil
}

// notify runs after the commit; failures here never undo the entry.
func (s *entryService) notify(ctx context.Context, entry *models.Entry) {
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.EntriesRoom, live.Message{Type: live.MessageEntryCreated, Payload: entry})
	}
	// Outlives a client disconnect, bounded by publishTimeout.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishEntrySubmitted(pubCtx, events.NewEntrySubmitted(entry)); err != nil {
		s.metrics.PublishFailed()
		s.logger.Error("failed to publish entry submitted event", zap.Int64("entry_id", entry.ID), zap.Error(err))
	}
}

func (s *entryService) ListEntries(ctx context.Context) ([]*models.Entry, error) {
	entries, err := s.entryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list entries: %w", ErrPersistence, err)
	}
	if entries == nil {
		return []*models.Entry{}, nil
	}
	return entries, nil
}

func (s *entryService) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("%w: failed to get entry %d: %w", ErrPersistence, id, err)
	}
	return entry, nil
}

func (s *entryService) ListMembers(ctx context.Context) ([]models.Member, error) {
	members, err := s.roster.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func resolveMemberNames(entry *models.Entry, known models.Roster) {
	for i, m := range entry.PapaMembers {
		if full, ok := known[m.ID]; ok {
			entry.PapaMembers[i] = full
		}
	}
	for i, m := range entry.LineMembers {
		if m == nil {
			continue
		}
		if full, ok := known[m.ID]; ok {
			member := full
			entry.LineMembers[i] = &member
		}
	}
}
