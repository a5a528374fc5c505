package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

type recordingEngine struct {
	mu      sync.Mutex
	entries []action.Entry
}

func (r *recordingEngine) InsertAction(kind action.Kind, dataName string) (action.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := action.Entry{Kind: kind, DataName: dataName, Seq: uint64(len(r.entries) + 1)}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *recordingEngine) snapshot() []action.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]action.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func TestWatcherInsertsOnFileCreate(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()

	eng := &recordingEngine{}
	w := New(root, st, eng, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(root, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	require.Eventually(t, func() bool {
		for _, e := range eng.snapshot() {
			if e.DataName == "/hello.txt" && e.Kind == action.Insertion {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t, store.StatusInserted, st.GetDataStatus("/hello.txt"))
}

func TestWatcherDeletesOnFileRemove(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()

	eng := &recordingEngine{}
	w := New(root, st, eng, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(root, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("bye"), 0o644))
	require.Eventually(t, func() bool {
		return len(eng.snapshot()) >= 1
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		for _, e := range eng.snapshot() {
			if e.DataName == "/gone.txt" && e.Kind == action.Deletion {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)
}

func TestDataNameRejectsPathsOutsideRoot(t *testing.T) {
	w := &Watcher{root: "/a/b"}
	if got := w.dataName("/a/c/d.txt"); got != "" {
		t.Fatalf("expected empty dataName for path outside root, got %q", got)
	}
	if got := w.dataName("/a/b/sub/file.txt"); got != "/sub/file.txt" {
		t.Fatalf("got %q, want /sub/file.txt", got)
	}
}
