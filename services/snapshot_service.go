package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/party-bets/metrics"
	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/storage"
	"go.uber.org/zap"
)

const snapshotContentType = "application/json"

type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Count       int             `json:"count"`
	Entries     []*models.Entry `json:"entries"`
}

// SnapshotService writes the full entry list to object storage.
type SnapshotService struct {
	entries  EntryService
	uploader storage.Uploader
	prefix   string
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewSnapshotService(entries EntryService, uploader storage.Uploader, prefix string, m *metrics.Metrics, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		entries:  entries,
		uploader: uploader,
		prefix:   prefix,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Export uploads a timestamped snapshot and overwrites the "latest" one.
// It returns the key of the timestamped object.
func (s *SnapshotService) Export(ctx context.Context) (key string, err error) {
	defer func() { s.metrics.SnapshotExported(err) }()

	list, err := s.entries.ListEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load entries for snapshot: %w", err)
	}

	generatedAt := s.now().UTC()
	payload, err := json.Marshal(Snapshot{GeneratedAt: generatedAt, Count: len(list), Entries: list})
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key = fmt.Sprintf("%sentries-%s.json", s.prefix, generatedAt.Format("20060102T150405Z"))
	for _, k := range []string{key, s.prefix + "entries-latest.json"} {
		if _, err = s.uploader.Upload(ctx, k, snapshotContentType, bytes.NewReader(payload)); err != nil {
			return "", fmt.Errorf("failed to upload snapshot: %w", err)
		}
	}

	s.logger.Info("snapshot exported", zap.String("key", key), zap.Int("entries", len(list)))
	return key, nil
}
