package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryEntryRepo stores entries the way the postgres repository does: picks
// collapse on member id, slots keep their order, names come from the roster
// on read.
type memoryEntryRepo struct {
	mu      sync.Mutex
	roster  models.Roster
	nextID  int64
	clock   time.Time
	entries map[int64]models.EntryDraft
	created map[int64]time.Time
}

func newMemoryEntryRepo(members []models.Member) *memoryEntryRepo {
	return &memoryEntryRepo{
		roster:  models.NewRoster(members),
		clock:   time.Date(2026, 1, 23, 19, 0, 0, 0, time.UTC),
		entries: map[int64]models.EntryDraft{},
		created: map[int64]time.Time{},
	}
}

func (r *memoryEntryRepo) Create(_ context.Context, draft models.EntryDraft) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range append(append([]int64{}, draft.PapaMemberIDs...), draft.LineMemberIDs[:]...) {
		if !r.roster.Has(id) {
			return nil, fmt.Errorf("insert selections: %w", repositories.ErrMemberReferenceInvalid)
		}
	}

	r.nextID++
	r.clock = r.clock.Add(time.Second)
	stored := models.EntryDraft{Applicant: draft.Applicant, LineMemberIDs: draft.LineMemberIDs}
	seen := map[int64]bool{}
	for _, id := range draft.PapaMemberIDs {
		if !seen[id] {
			seen[id] = true
			stored.PapaMemberIDs = append(stored.PapaMemberIDs, id)
		}
	}
	r.entries[r.nextID] = stored
	r.created[r.nextID] = r.clock

	e := &models.Entry{ID: r.nextID, Applicant: stored.Applicant, CreatedAt: r.clock}
	for _, id := range stored.PapaMemberIDs {
		e.PapaMembers = append(e.PapaMembers, models.Member{ID: id})
	}
	for i, id := range stored.LineMemberIDs {
		e.LineMembers[i] = &models.Member{ID: id}
	}
	return e, nil
}

func (r *memoryEntryRepo) load(id int64) *models.Entry {
	draft := r.entries[id]
	e := &models.Entry{ID: id, Applicant: draft.Applicant, CreatedAt: r.created[id], PapaMembers: []models.Member{}}
	for _, mid := range draft.PapaMemberIDs {
		e.PapaMembers = append(e.PapaMembers, r.roster[mid])
	}
	sort.Slice(e.PapaMembers, func(i, j int) bool { return e.PapaMembers[i].ID < e.PapaMembers[j].ID })
	for i, mid := range draft.LineMemberIDs {
		m := r.roster[mid]
		e.LineMembers[i] = &m
	}
	return e
}

func (r *memoryEntryRepo) ListAll(context.Context) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*models.Entry, 0, len(r.entries))
	for id := range r.entries {
		entries = append(entries, r.load(id))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	return entries, nil
}

func (r *memoryEntryRepo) GetByID(_ context.Context, id int64) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return nil, repositories.ErrEntryNotFound
	}
	return r.load(id), nil
}

func TestEntryService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	roster := newPartyRoster()
	repo := newMemoryEntryRepo(roster.members)
	svc := NewEntryService(repo, roster, nil, nil, nil, nil)

	created, err := svc.SubmitEntry(ctx, validInput())
	require.NoError(t, err)

	first, err := svc.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	second, err := svc.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "reads without writes in between are identical")

	assert.Equal(t, "Grace", first.Applicant)
	names := make([]string, 0, len(first.PapaMembers))
	for _, m := range first.PapaMembers {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Alice", "Bob", "Carol", "Dave", "Eve"}, names)
	assert.Equal(t, "Frank", first.MemberAtSlot(1).Name)
	assert.Equal(t, "Alice", first.MemberAtSlot(2).Name)
	assert.Equal(t, "Bob", first.MemberAtSlot(3).Name)
	assert.Equal(t, created.PapaMembers, first.PapaMembers)
	assert.Equal(t, created.LineMemberIDs(), first.LineMemberIDs())
}

func TestEntryService_ListAfterSubmits(t *testing.T) {
	ctx := context.Background()
	roster := newPartyRoster()
	repo := newMemoryEntryRepo(roster.members)
	svc := NewEntryService(repo, roster, nil, nil, nil, nil)

	inputs := []SubmitEntryInput{
		validInput(),
		{Applicant: "Henry", PapaMembers: []string{"6", "5", "4", "3", "2"}, LineMembers: [models.LineSlotCount]string{"1", "1", "1"}},
		{Applicant: "Ivy", PapaMembers: []string{"2", "2", "3", "4", "4"}, LineMembers: [models.LineSlotCount]string{"3", "2", "1"}},
	}
	// Rejected submissions leave nothing behind.
	_, err := svc.SubmitEntry(ctx, SubmitEntryInput{Applicant: "Henry", PapaMembers: []string{"1", "2", "3", "4"}, LineMembers: [models.LineSlotCount]string{"1", "2", "3"}})
	require.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.SubmitEntry(ctx, SubmitEntryInput{Applicant: "Jack", PapaMembers: []string{"1", "2", "3", "4", "5"}, LineMembers: [models.LineSlotCount]string{"1", "", "3"}})
	require.ErrorIs(t, err, ErrValidationFailed)

	for _, in := range inputs {
		_, err := svc.SubmitEntry(ctx, in)
		require.NoError(t, err)
	}

	entries, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(inputs))

	// Newest first; each entry reconstructs its input selections.
	for i, e := range entries {
		in := inputs[len(inputs)-1-i]
		draft, verr := ValidateSubmission(in, models.NewRoster(roster.members))
		require.Nil(t, verr)

		assert.Equal(t, draft.Applicant, e.Applicant)
		assert.Equal(t, draft.PapaMemberIDs, e.PapaMemberIDs())
		assert.Equal(t, draft.LineMemberIDs, e.LineMemberIDs())
	}
}
