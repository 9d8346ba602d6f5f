package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/ruminaider/confcascade/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ org.LocalSource = (*workspace.Workspace)(nil)

func writeAssistant(t *testing.T, root, name string) string {
	t.Helper()
	dir := paths.AssistantsDir(root)
	require.NoError(t, os.MkdirAll(dir, 0755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("name: "+name+"\n"), 0644))
	return p
}

func TestAssistantFiles(t *testing.T) {
	ctx := context.Background()
	rootA := t.TempDir()
	rootB := t.TempDir()
	rootEmpty := t.TempDir()

	b := writeAssistant(t, rootA, "b.yaml")
	a := writeAssistant(t, rootA, "a.yml")
	writeAssistant(t, rootA, "notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(paths.AssistantsDir(rootA), "sub.yaml"), 0755))
	c := writeAssistant(t, rootB, "c.YAML")

	w := workspace.New([]string{rootA, rootEmpty, rootB}, filepath.Join(t.TempDir(), "config.yaml"))
	files, err := w.AssistantFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c}, files)
}

func TestDirs(t *testing.T) {
	ctx := context.Background()

	w := workspace.New(nil, "")
	dirs, err := w.Dirs(ctx)
	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, []string{wd}, dirs)

	root := t.TempDir()
	w = workspace.New([]string{root}, "")
	dirs, err = w.Dirs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)
}

func TestWatchPaths(t *testing.T) {
	root := t.TempDir()
	global := filepath.Join(t.TempDir(), "home", "config.yaml")
	w := workspace.New([]string{root}, global)

	got, err := w.WatchPaths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Dir(global),
		filepath.Join(root, ".confcascade"),
		paths.AssistantsDir(root),
	}, got)
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	dir := paths.AssistantsDir(root)
	require.NoError(t, os.MkdirAll(dir, 0755))

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- workspace.Watch(ctx, []string{dir, filepath.Join(root, "missing")}, 20*time.Millisecond, nil, func() {
			calls.Add(1)
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: a\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: b\n"), 0644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_CallbackFinishesBeforeReturn(t *testing.T) {
	dir := t.TempDir()

	var running, finished atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- workspace.Watch(ctx, []string{dir}, 10*time.Millisecond, nil, func() {
			running.Store(1)
			time.Sleep(200 * time.Millisecond)
			running.Store(0)
			finished.Add(1)
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: a\n"), 0644))
	require.Eventually(t, func() bool { return running.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Equal(t, int32(0), running.Load())
	assert.GreaterOrEqual(t, finished.Load(), int32(1))
}
