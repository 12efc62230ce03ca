package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/repositories"
)

// Roster is the read-only view of eligible members.
type Roster interface {
	Members(ctx context.Context) ([]models.Member, error)
	// Lookup returns the subset of ids that exist.
	Lookup(ctx context.Context, ids []int64) (models.Roster, error)
}

type repositoryRoster struct {
	memberRepo repositories.MemberRepository
}

// NewRepositoryRoster reads the roster straight from storage.
func NewRepositoryRoster(memberRepo repositories.MemberRepository) Roster {
	return &repositoryRoster{memberRepo: memberRepo}
}

func (r *repositoryRoster) Members(ctx context.Context) ([]models.Member, error) {
	members, err := r.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return members, nil
}

func (r *repositoryRoster) Lookup(ctx context.Context, ids []int64) (models.Roster, error) {
	members, err := r.memberRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return models.NewRoster(members), nil
}
