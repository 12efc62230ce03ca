package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/party-bets/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEntryNotFound          = errors.New("entry not found")
	ErrMemberReferenceInvalid = errors.New("entry references a member that does not exist")
	ErrEntryRejected          = errors.New("entry rejected by a storage constraint")
	ErrSelectionRowsMismatch  = errors.New("unexpected number of selection rows written")
)

type EntryRepository interface {
	Create(ctx context.Context, draft models.EntryDraft) (*models.Entry, error)
	ListAll(ctx context.Context) ([]*models.Entry, error)
	GetByID(ctx context.Context, id int64) (*models.Entry, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

const (
	insertEntryQuery = `INSERT INTO entries (applicant) VALUES ($1) RETURNING id, created_at`

	// Repeated member ids collapse on the (entry_id, member_id) primary key.
	insertPicksQuery = `
		INSERT INTO entry_game1_picks (entry_id, member_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT (entry_id, member_id) DO NOTHING`

	insertSlotsQuery = `
		INSERT INTO entry_game2_slots (entry_id, slot, member_id)
		SELECT $1, s.slot, s.member_id
		FROM unnest($2::smallint[], $3::bigint[]) AS s(slot, member_id)`

	selectEntriesQuery = `SELECT id, applicant, created_at FROM entries ORDER BY created_at DESC, id DESC`
	selectEntryQuery   = `SELECT id, applicant, created_at FROM entries WHERE id = $1`

	// $1 = NULL loads selections of every entry.
	selectPicksQuery = `
		SELECT p.entry_id, m.id, m.name
		FROM entry_game1_picks p
		JOIN members m ON m.id = p.member_id
		WHERE $1::bigint[] IS NULL OR p.entry_id = ANY($1)
		ORDER BY p.entry_id, m.id`

	selectSlotsQuery = `
		SELECT s.entry_id, s.slot, m.id, m.name
		FROM entry_game2_slots s
		JOIN members m ON m.id = s.member_id
		WHERE $1::bigint[] IS NULL OR s.entry_id = ANY($1)
		ORDER BY s.entry_id, s.slot`
)

// Create stores the entry and both selections in one transaction. The returned
// entry carries member ids only; names are resolved by the caller.
func (r *postgresEntryRepository) Create(ctx context.Context, draft models.EntryDraft) (entry *models.Entry, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			entry = nil
			err = fmt.Errorf("failed to commit entry: %w", cErr)
		}
	}()

	created := &models.Entry{Applicant: draft.Applicant}
	if err = tx.QueryRowContext(ctx, insertEntryQuery, draft.Applicant).Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, mapWriteError("insert entry", err)
	}

	uniquePicks := uniqueIDs(draft.PapaMemberIDs)
	if err = insertPicks(ctx, tx, created.ID, uniquePicks); err != nil {
		return nil, err
	}
	if err = insertSlots(ctx, tx, created.ID, draft.LineMemberIDs); err != nil {
		return nil, err
	}

	created.PapaMembers = make([]models.Member, 0, len(uniquePicks))
	for _, id := range uniquePicks {
		created.PapaMembers = append(created.PapaMembers, models.Member{ID: id})
	}
	for i, id := range draft.LineMemberIDs {
		created.LineMembers[i] = &models.Member{ID: id}
	}
	return created, nil
}

func (r *postgresEntryRepository) ListAll(ctx context.Context) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectEntriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	byID := make(map[int64]*models.Entry)
	for rows.Next() {
		e := &models.Entry{PapaMembers: []models.Member{}}
		if err := rows.Scan(&e.ID, &e.Applicant, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	if err := r.loadSelections(ctx, byID, nil); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	e := &models.Entry{PapaMembers: []models.Member{}}
	err := r.db.QueryRowContext(ctx, selectEntryQuery, id).Scan(&e.ID, &e.Applicant, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}

	if err := r.loadSelections(ctx, map[int64]*models.Entry{e.ID: e}, []int64{e.ID}); err != nil {
		return nil, err
	}
	return e, nil
}

// loadSelections fills game 1 and game 2 members of the given entries. The two
// queries run concurrently; each goroutine writes a different field.
func (r *postgresEntryRepository) loadSelections(ctx context.Context, byID map[int64]*models.Entry, filter []int64) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.db.QueryContext(gCtx, selectPicksQuery, pq.Array(filter))
		if err != nil {
			return fmt.Errorf("failed to load game 1 picks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var entryID int64
			var m models.Member
			if err := rows.Scan(&entryID, &m.ID, &m.Name); err != nil {
				return fmt.Errorf("failed to scan game 1 pick: %w", err)
			}
			if e, ok := byID[entryID]; ok {
				e.PapaMembers = append(e.PapaMembers, m)
			}
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.db.QueryContext(gCtx, selectSlotsQuery, pq.Array(filter))
		if err != nil {
			return fmt.Errorf("failed to load game 2 slots: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var entryID int64
			var slot int
			var m models.Member
			if err := rows.Scan(&entryID, &slot, &m.ID, &m.Name); err != nil {
				return fmt.Errorf("failed to scan game 2 slot: %w", err)
			}
			e, ok := byID[entryID]
			if !ok || slot < 1 || slot > models.LineSlotCount {
				continue
			}
			e.LineMembers[slot-1] = &m
		}
		return rows.Err()
	})

	return g.Wait()
}

func insertPicks(ctx context.Context, exec SQLExecutor, entryID int64, memberIDs []int64) error {
	res, err := exec.ExecContext(ctx, insertPicksQuery, entryID, pq.Array(memberIDs))
	if err != nil {
		return mapWriteError("insert game 1 picks", err)
	}
	if err := checkAffectedRows(res, int64(len(memberIDs)), ErrSelectionRowsMismatch); err != nil {
		return fmt.Errorf("insert game 1 picks for entry %d: %w", entryID, err)
	}
	return nil
}

func insertSlots(ctx context.Context, exec SQLExecutor, entryID int64, lineIDs [models.LineSlotCount]int64) error {
	slots := make([]int64, models.LineSlotCount)
	for i := range slots {
		slots[i] = int64(i + 1)
	}
	res, err := exec.ExecContext(ctx, insertSlotsQuery, entryID, pq.Array(slots), pq.Array(lineIDs[:]))
	if err != nil {
		return mapWriteError("insert game 2 slots", err)
	}
	if err := checkAffectedRows(res, models.LineSlotCount, ErrSelectionRowsMismatch); err != nil {
		return fmt.Errorf("insert game 2 slots for entry %d: %w", entryID, err)
	}
	return nil
}

func mapWriteError(op string, err error) error {
	code, pqErr := pqErrorCode(err)
	switch code {
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: %w (%s)", op, ErrMemberReferenceInvalid, pqErr.Detail)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w (%s)", op, ErrEntryRejected, pqErr.Constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
