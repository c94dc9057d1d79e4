package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Order-Notes", "add_order_notes"},
		{"add__reorder__point", "add_reorder_point"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_create_orders.up.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_create_orders.down.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "Add order notes")
	require.NoError(t, err)
	assert.Equal(t, uint(5), mf.Version)
	assert.Equal(t, filepath.Join(dir, "000005_add_order_notes.up.sql"), mf.UpPath)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_create_products.up.sql",
		"000002_create_products.down.sql",
		"000001_create_users.up.sql",
		"000001_create_users.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(1), files[0].Version)
	assert.Equal(t, "create_users", files[0].Name)
	assert.NotEmpty(t, files[0].DownPath)
	assert.Equal(t, uint(2), files[1].Version)
}

func TestListMigrations_MissingDir(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListMigrations_RepositorySchema(t *testing.T) {
	files, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.Len(t, files, 4)
	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version)
		assert.NotEmpty(t, f.UpPath, f.Name)
		assert.NotEmpty(t, f.DownPath, f.Name)
	}
}
