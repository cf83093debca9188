package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add sale discount", "add_sale_discount"},
		{"Add-Sale-Discount", "add_sale_discount"},
		{"ADD__SALE__DISCOUNT", "add_sale_discount"},
		{"index report 2", "index_report_2"},
		{"   spaced   ", "spaced"},
		{"special!@#$chars", "special_chars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 9, 5, 12, 30, 15, 0, time.UTC)

	f, err := Create(dir, "Add sale discount", "Per-line discount column", now)
	require.NoError(t, err)

	assert.Equal(t, "20260905123015", f.Version)
	assert.Equal(t, filepath.Join(dir, "20260905123015_add_sale_discount.up.sql"), f.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260905123015_add_sale_discount.down.sql"), f.DownPath)

	up, err := os.ReadFile(f.UpPath)
	require.NoError(t, err)
	assert.Equal(t, "-- Migration: add sale discount\n-- Per-line discount column\n\n", string(up))

	down, err := os.ReadFile(f.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(rollback)")

	require.NoError(t, Verify(os.DirFS(dir)))
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	_, err := Create(dir, "first", "", now)
	require.NoError(t, err)
	_, err = Create(dir, "first", "", now)
	assert.Error(t, err)
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	_, err := Create(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	files := fstest.MapFS{
		"2_b.up.sql":   {},
		"2_b.down.sql": {},
		"1_a.up.sql":   {},
		"1_a.down.sql": {},
		"3_c.down.sql": {},
		"README.md":    {},
		"nested":       {Mode: os.ModeDir},
	}

	names, err := List(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"1_a", "2_b", "3_c"}, names)
}

func TestVerify(t *testing.T) {
	err := Verify(fstest.MapFS{
		"1_a.up.sql":   {},
		"1_a.down.sql": {},
		"2_b.up.sql":   {},
		"3_c.down.sql": {},
	})
	require.ErrorIs(t, err, ErrUnpaired)
	assert.Contains(t, err.Error(), "2_b.down.sql")
	assert.Contains(t, err.Error(), "3_c.up.sql")
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files := Source("")
	require.NoError(t, Verify(files))

	names, err := List(files)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "20260301090000_initial_schema", names[0])
}
