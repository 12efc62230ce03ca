package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 4)

	for _, name := range files {
		body, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}

	picks, err := fs.ReadFile(migrations, "migrations/00003_create_entry_game1_picks.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(picks), "PRIMARY KEY (entry_id, member_id)"))

	slots, err := fs.ReadFile(migrations, "migrations/00004_create_entry_game2_slots.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(slots), "PRIMARY KEY (entry_id, slot)"))
}
