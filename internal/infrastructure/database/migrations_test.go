package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		raw, err := fs.ReadFile(migrations, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		body := string(raw)
		assert.Contains(t, body, "-- +goose Up", e.Name())
		assert.Contains(t, body, "-- +goose Down", e.Name())
		assert.Less(t, strings.Index(body, "-- +goose Up"), strings.Index(body, "-- +goose Down"), e.Name())
	}
}

func TestDocumentsTableDefinesKeyColumns(t *testing.T) {
	raw, err := fs.ReadFile(migrations, migrationsDir+"/00001_documents.sql")
	require.NoError(t, err)
	for _, col := range []string{"collection TEXT", "id TEXT", "data JSONB", "created_at TIMESTAMPTZ", "PRIMARY KEY (collection, id)"} {
		assert.Contains(t, string(raw), col)
	}
}
