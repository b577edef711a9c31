package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/parser"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Extension of chart files.
const Extension = ".khel"

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("library")
}

// Folder is one directory of charts under the library root.
type Folder struct {
	Name   string
	Charts []*game.Chart
}

// Library is every chart found under a root directory, one folder deep.
type Library struct {
	Root   string
	Parser parser.Parser

	mu      sync.RWMutex
	folders []Folder
}

func New(root string, p parser.Parser) *Library {
	return &Library{Root: root, Parser: p}
}

// less orders names case-insensitively, falling back to byte order so the
// result is stable.
func less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func list(dir string, keep func(e os.DirEntry) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if nil != err {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if keep(e) {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, less)
	return names, nil
}

// Folders lists the directories under root.
func Folders(root string) ([]string, error) {
	return list(root, func(e os.DirEntry) bool {
		return e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
}

// Charts lists the chart files in dir.
func Charts(dir string) ([]string, error) {
	return list(dir, func(e os.DirEntry) bool {
		return !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension)
	})
}

// LoadFolder parses every chart in dir. Charts that fail to parse are logged
// and left out.
func (l *Library) LoadFolder(dir string) ([]*game.Chart, error) {
	names, err := Charts(dir)
	if nil != err {
		return nil, fmt.Errorf("unable to list charts: %w", err)
	}
	charts := make([]*game.Chart, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		chart, err := l.Parser.Parse(path)
		if nil != err {
			logger.Warn("skipping chart", zap.String("path", path), zap.Error(err))
			continue
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

// Load crawls the root again and replaces the loaded folders. Folders
// without a single good chart are left out.
func (l *Library) Load() error {
	names, err := Folders(l.Root)
	if nil != err {
		return fmt.Errorf("unable to list folders: %w", err)
	}

	folders := make([]Folder, 0, len(names))
	count := 0
	for _, name := range names {
		charts, err := l.LoadFolder(filepath.Join(l.Root, name))
		if nil != err {
			logger.Warn("skipping folder", zap.String("folder", name), zap.Error(err))
			continue
		}
		if len(charts) == 0 {
			continue
		}
		folders = append(folders, Folder{Name: name, Charts: charts})
		count += len(charts)
	}

	l.mu.Lock()
	l.folders = folders
	l.mu.Unlock()

	logger.Info("loaded library", zap.String("root", l.Root), zap.Int("folders", len(folders)), zap.Int("charts", count))
	return nil
}

// Folders returns the loaded folders.
func (l *Library) Folders() []Folder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.folders)
}

// Charts returns every loaded chart in folder order.
func (l *Library) Charts() []*game.Chart {
	l.mu.RLock()
	defer l.mu.RUnlock()
	charts := []*game.Chart{}
	for _, f := range l.folders {
		charts = append(charts, f.Charts...)
	}
	return charts
}

// Watch reloads the library whenever something under the root changes,
// at most once per delay, and calls onReload after each reload. It blocks
// until ctx is done.
func (l *Library) Watch(ctx context.Context, delay time.Duration, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := l.watchFolders(watcher); nil != err {
		return err
	}

	debounced := debounce.New(delay)
	reload := func() {
		if err := l.Load(); nil != err {
			logger.Error("unable to reload library", zap.Error(err))
			return
		}
		if err := l.watchFolders(watcher); nil != err {
			logger.Warn("unable to watch new folders", zap.Error(err))
		}
		if onReload != nil {
			onReload()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			logger.Debug("library changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			debounced(reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchFolders adds the root and its folders to the watcher. Adding a path
// twice is harmless.
func (l *Library) watchFolders(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(l.Root); nil != err {
		return fmt.Errorf("unable to watch %v: %w", l.Root, err)
	}
	names, err := Folders(l.Root)
	if nil != err {
		return fmt.Errorf("unable to list folders: %w", err)
	}
	for _, name := range names {
		dir := filepath.Join(l.Root, name)
		if err := watcher.Add(dir); nil != err {
			return fmt.Errorf("unable to watch %v: %w", dir, err)
		}
	}
	return nil
}
