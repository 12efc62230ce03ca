package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/party-bets/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRepository_GetAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresMemberRepository(db)

	mock.ExpectQuery(`SELECT id, name FROM members ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Alice").
			AddRow(int64(2), "Bob"))

	members, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Member{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_GetByIDs(t *testing.T) {
	t.Run("Subset", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresMemberRepository(db)

		mock.ExpectQuery(`FROM members WHERE id = ANY\(\$1\)`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(6), "Frank"))

		members, err := repo.GetByIDs(context.Background(), []int64{6, 99})
		require.NoError(t, err)
		assert.Equal(t, []models.Member{{ID: 6, Name: "Frank"}}, members)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoIDsSkipsQuery", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresMemberRepository(db)

		members, err := repo.GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, members)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostgresMemberRepository(db)

		mock.ExpectQuery(`FROM members`).WillReturnError(errors.New("timeout"))

		_, err := repo.GetByIDs(context.Background(), []int64{1})
		assert.ErrorContains(t, err, "failed to get members by ids")
	})
}
