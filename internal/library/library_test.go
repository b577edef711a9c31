package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/khel/internal/parser"
	"git.lost.host/meutraa/khel/internal/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func tree(t *testing.T) string {
	root := t.TempDir()
	for _, name := range []string{"b/one.khel", "A/Zed.khel", "A/alpha.KHEL"} {
		_, err := testdata.WriteChart(root, name)
		require.NoError(t, err)
	}
	write(t, filepath.Join(root, "A", "notes.txt"), "not a chart")
	write(t, filepath.Join(root, "c", "broken.khel"), "title=broken;\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	return root
}

func TestFolders(t *testing.T) {
	root := tree(t)

	folders, err := Folders(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "b", "c"}, folders)

	charts, err := Charts(filepath.Join(root, "A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha.KHEL", "Zed.khel"}, charts)

	_, err = Folders(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	root := tree(t)
	l := New(root, &parser.DefaultParser{})
	require.NoError(t, l.Load())

	folders := l.Folders()
	require.Len(t, folders, 2)
	assert.Equal(t, "A", folders[0].Name)
	assert.Len(t, folders[0].Charts, 2)
	assert.Equal(t, filepath.Join(root, "A", "alpha.KHEL"), folders[0].Charts[0].Path)
	assert.Equal(t, "b", folders[1].Name)
	assert.Len(t, l.Charts(), 3)
}

func TestWatch(t *testing.T) {
	root := tree(t)
	l := New(root, &parser.DefaultParser{})
	require.NoError(t, l.Load())

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan struct{}, 1)
	done := make(chan error)
	go func() {
		done <- l.Watch(ctx, 20*time.Millisecond, func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	_, err := testdata.WriteChart(root, "b/two.khel")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(l.Charts()) == 4
	}, 5*time.Second, 20*time.Millisecond)
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never ran")
	}

	cancel()
	assert.NoError(t, <-done)
}
