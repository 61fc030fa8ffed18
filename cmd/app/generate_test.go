package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prasetyowira/qrstudio/domain/studio"
	"github.com/prasetyowira/qrstudio/infrastructure/db"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storageKey = "cwz_last_qr"

func newTestController(t *testing.T) (*studio.Controller, *db.PreferenceRepository) {
	t.Helper()
	repo, err := db.NewPreferenceRepository(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctrl := studio.NewController(qrcode.NewGenerator(), repo, "cli", storageKey)
	ctrl.Restore(context.Background())
	return ctrl, repo
}

func testFlags(dir string) generateFlags {
	defaults := studio.DefaultForm()
	return generateFlags{
		size:       defaults.Size,
		foreground: defaults.Foreground,
		background: defaults.Background,
		level:      defaults.Level,
		outDir:     dir,
	}
}

func TestGenerateImage_WritesPNG(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController(t)
	dir := t.TempDir()

	path, err := generateImage(ctx, ctrl, []string{"Hello World"}, testFlags(dir))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Hello_World.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	saved, found, err := repo.Get(ctx, "cli", storageKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Hello World", saved)
}

func TestGenerateImage_UsesRememberedText(t *testing.T) {
	ctx := context.Background()
	ctrl, repo := newTestController(t)
	require.NoError(t, repo.Set(ctx, "cli", storageKey, "https://example.com"))
	ctrl.Restore(ctx)
	dir := t.TempDir()

	path, err := generateImage(ctx, ctrl, nil, testFlags(dir))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "https___example.com.png"), path)
}

func TestGenerateImage_EmptyText(t *testing.T) {
	ctrl, _ := newTestController(t)
	dir := t.TempDir()

	_, err := generateImage(context.Background(), ctrl, nil, testFlags(dir))

	assert.ErrorIs(t, err, studio.ErrEmptyText)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGenerateImage_MissingOutputDir(t *testing.T) {
	ctrl, _ := newTestController(t)
	flags := testFlags(filepath.Join(t.TempDir(), "missing"))

	_, err := generateImage(context.Background(), ctrl, []string{"abc"}, flags)

	assert.Error(t, err)
}
