package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add transit orders", "transit order workflow tables")
		require.NoError(t, err)

		assert.Len(t, mf.Version, 14)
		assert.True(t, strings.HasSuffix(mf.UpPath, "_add_transit_orders.up.sql"))
		assert.True(t, strings.HasSuffix(mf.DownPath, "_add_transit_orders.down.sql"))

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add transit orders")
		assert.Contains(t, string(up), "transit order workflow tables")
		assert.Contains(t, string(up), "Write your UP migration SQL here")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
		assert.Contains(t, string(down), "Write your DOWN migration SQL here")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)
		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"add transit orders", "add_transit_orders"},
		{"Add-Lot  Overrun_Check", "add_lot_overrun_check"},
		{"CV allocations v2", "cv_allocations_v2"},
		{"add__cv__allocations", "add_cv_allocations"},
		{"special!@#$chars", "specialchars"},
		{"   spaces   ", "spaces"},
		{"_leading", "leading"},
		{"trailing_", "trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeName(tt.in), tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory lists as empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("empty directory lists as empty", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists pairs by version, other files ignored", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20260102000001_add_lots.up.sql",
			"20260102000001_add_lots.down.sql",
			"20260101000001_init_schema.up.sql",
			"20260101000001_init_schema.down.sql",
			"README.md",
			".gitkeep",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20260101000001_init_schema",
			"20260102000001_add_lots",
		}, migrations)
	})
}
