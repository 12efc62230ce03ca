package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/party-bets/models"
	"github.com/lib/pq"
)

type MemberRepository interface {
	GetAll(ctx context.Context) ([]models.Member, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Member, error)
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) GetAll(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM members ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return scanMembers(rows)
}

func (r *postgresMemberRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Member, error) {
	if len(ids) == 0 {
		return []models.Member{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM members WHERE id = ANY($1) ORDER BY id ASC`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get members by ids: %w", err)
	}
	return scanMembers(rows)
}

func scanMembers(rows *sql.Rows) ([]models.Member, error) {
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
