package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(Files(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		body, err := fs.ReadFile(Files(), dir+"/"+e.Name())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(e.Name(), "0000"), "unexpected name %s", e.Name())
		assert.Contains(t, e.Name(), []string{"1", "2", "3", "4"}[i], "files should be sequential")
		assert.Contains(t, string(body), "-- +goose Up")
		assert.Contains(t, string(body), "-- +goose Down")
	}
}

func TestSchemaCarriesConstraints(t *testing.T) {
	t.Parallel()

	body, err := fs.ReadFile(Files(), dir+"/00003_create_tasks.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "ON DELETE SET NULL")

	body, err = fs.ReadFile(Files(), dir+"/00004_create_activity_logs.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "task_id   UUID REFERENCES tasks (id) ON DELETE SET NULL")
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), nil, "create", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
