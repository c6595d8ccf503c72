package script

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/warpgame/game/engine"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func TestAbilityName(t *testing.T) {
	assert.Equal(t, "wall", AbilityName("scripts/abilities/wall.tengo"))
	assert.Equal(t, "wall", AbilityName("wall.tengo"))
}

func TestLoader_LoadAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "abilities/wall.tengo", []byte(`actions := []`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "abilities/purge.tengo", []byte(`actions := []`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "abilities/README.md", []byte(`# notes`), 0o644))
	require.NoError(t, fs.MkdirAll("abilities/nested.tengo", 0o755))

	reg := engine.DefaultAbilities()
	l := NewLoader(fs, "abilities", reg, quiet)

	n, err := l.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"barrier", "purge", "wall"}, reg.Names())

	loaded := l.Loaded()
	slices.Sort(loaded)
	assert.Equal(t, []string{"purge", "wall"}, loaded)
}

func TestLoader_LoadAllReportsBrokenScripts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "abilities/good.tengo", []byte(`actions := []`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "abilities/bad.tengo", []byte(`actions := [`), 0o644))

	reg := engine.NewAbilityRegistry()
	l := NewLoader(fs, "abilities", reg, quiet)

	n, err := l.LoadAll()
	assert.Equal(t, 1, n)
	assert.ErrorContains(t, err, "compile ability bad")
	assert.Equal(t, []string{"good"}, reg.Names())
}

func TestLoader_MissingDirectory(t *testing.T) {
	l := NewLoader(afero.NewMemMapFs(), "nowhere", engine.NewAbilityRegistry(), quiet)
	n, err := l.LoadAll()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoader_UnloadOnlyOwnAbilities(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "abilities/wall.tengo", []byte(`actions := []`), 0o644))

	reg := engine.DefaultAbilities()
	l := NewLoader(fs, "abilities", reg, quiet)
	require.NoError(t, l.Load("abilities/wall.tengo"))

	assert.False(t, l.Unload("barrier"))
	assert.True(t, l.Unload("wall"))
	assert.False(t, l.Unload("wall"))
	assert.Equal(t, []string{"barrier"}, reg.Names())
}

func TestLoader_LoadsShippedScripts(t *testing.T) {
	reg := engine.NewAbilityRegistry()
	l := NewLoader(afero.NewOsFs(), filepath.Join("..", "..", "scripts", "abilities"), reg, quiet)

	n, err := l.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"purge", "wall"}, reg.Names())
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zap.tengo")

	reg := engine.NewAbilityRegistry()
	l := NewLoader(afero.NewOsFs(), dir, reg, quiet)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, l.Watch(ctx))

	registered := func() bool {
		_, err := reg.Lookup("zap")
		return err == nil
	}

	require.NoError(t, os.WriteFile(path, []byte(`actions := []`), 0o644))
	assert.Eventually(t, registered, 2*time.Second, 20*time.Millisecond)

	// a broken edit keeps the previous version
	require.NoError(t, os.WriteFile(path, []byte(`actions := [`), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.True(t, registered())

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool { return !registered() }, 2*time.Second, 20*time.Millisecond)
}

func TestLoader_WatchMissingDirectory(t *testing.T) {
	l := NewLoader(afero.NewOsFs(), filepath.Join(t.TempDir(), "missing"), engine.NewAbilityRegistry(), quiet)
	assert.Error(t, l.Watch(t.Context()))
}
