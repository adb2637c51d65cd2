package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestWatcher_NewFileTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	files := make(chan string, 10)
	w := New([]string{dir}, []string{".txt"}, false, func(path string) {
		files <- path
	}, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "course.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, files, path)
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	files := make(chan string, 10)
	w := New([]string{dir}, []string{".txt", ".md"}, false, func(path string) {
		files <- path
	}, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	ignored := filepath.Join(dir, "image.png")
	if err := os.WriteFile(ignored, []byte("binary"), 0644); err != nil {
		t.Fatal(err)
	}
	wanted := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(wanted, []byte("notes"), 0644); err != nil {
		t.Fatal(err)
	}

	waitForPath(t, files, wanted)
	select {
	case got := <-files:
		t.Errorf("unexpected callback for %s", got)
	default:
	}
}

func TestWatcher_IngestExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	if err := os.WriteFile(path, []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	files := make(chan string, 10)
	w := New([]string{dir}, []string{".txt"}, false, func(p string) {
		files <- p
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.IngestExisting()
	waitForPath(t, files, path)
}

func TestWatcher_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "unit1")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	files := make(chan string, 10)
	w := New([]string{dir}, nil, true, func(p string) {
		files <- p
	}, zap.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(sub, "nested.txt")
	if err := os.WriteFile(path, []byte("nested"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForPath(t, files, path)
}

func TestWatcher_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ingest")
	w := New([]string{root}, nil, false, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root was not created: %v", err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != root {
		t.Errorf("Directories() = %v", dirs)
	}
}

func TestWatcher_CombinedOpEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	files := make(chan string, 10)
	w := New([]string{dir}, []string{".txt"}, false, func(p string) {
		files <- p
	}, zap.NewNop())
	w.debounce = 10 * time.Millisecond

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create | fsnotify.Write})
	waitForPath(t, files, path)
}
