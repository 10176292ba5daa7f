package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileKV_RoundTrip(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "state"))

	_, err := kv.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set("k", []byte(`{"a":1}`)))
	got, err := kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	info, err := os.Stat(kv.Path("k"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(kv.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, kv.Delete("k"))
	require.NoError(t, kv.Delete("k"), "deleting twice is fine")
	_, err = kv.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileKV_RejectsPathKeys(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	assert.Error(t, kv.Set("../escape", []byte("x")))
	_, err := kv.Get("a/b")
	assert.Error(t, err)
}

func TestManager_LoadRestoresValidSession(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(Key, []byte(`{"auth":true,"currentUser":"Philip","token":"jwt"}`)))

	m := NewManager(kv)
	got := m.Load()

	want := Session{Authenticated: true, CurrentUser: "Philip", Token: "jwt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "jwt", m.Token())
}

func TestManager_LoadRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"auth false", `{"auth":false,"currentUser":"Philip"}`},
		{"no user", `{"auth":true,"currentUser":""}`},
		{"garbage", `{not json`},
		{"wrong types", `{"auth":"yes","currentUser":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(Key, []byte(tt.record)))
			got := NewManager(kv).Load()
			assert.Equal(t, Session{}, got)
		})
	}
}

func TestManager_SaveAndClear(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	m := NewManager(kv)

	m.Save(Session{Authenticated: true, CurrentUser: "Chris"})
	data, err := kv.Get(Key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"auth":true,"currentUser":"Chris","token":""}`, string(data))

	// A second manager sees the persisted login.
	assert.Equal(t, "Chris", NewManager(kv).Load().CurrentUser)

	m.Clear()
	_, err = kv.Get(Key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, m.Current().Authenticated)
}

func TestManager_SaveInvalidSessionDeletes(t *testing.T) {
	kv := NewMemoryKV()
	m := NewManager(kv)
	m.Save(Session{Authenticated: true, CurrentUser: "A"})

	m.Save(Session{Authenticated: true})
	_, err := kv.Get(Key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Session{}, m.Current())
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error) { return nil, os.ErrPermission }
func (failingKV) Set(string, []byte) error   { return os.ErrPermission }
func (failingKV) Delete(string) error        { return os.ErrPermission }

func TestManager_StorageFailuresAreSwallowed(t *testing.T) {
	m := NewManager(failingKV{})
	assert.Equal(t, Session{}, m.Load())

	m.Save(Session{Authenticated: true, CurrentUser: "A"})
	assert.Equal(t, "A", m.Current().CurrentUser, "in-memory state survives a failed write")
	m.Clear()
}

func TestWatcher_ReportsExternalLogout(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	m := NewManager(kv)
	m.Save(Session{Authenticated: true, CurrentUser: "Philip"})

	changed := make(chan struct{}, 4)
	w, err := NewWatcher(kv, func() { changed <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Another process signs out.
	NewManager(kv).Clear()

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
	assert.False(t, m.Peek().Valid())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	kv := NewFileKV(t.TempDir())

	changed := make(chan struct{}, 4)
	w, err := NewWatcher(kv, func() { changed <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(kv.Dir(), "other.json"), []byte("{}"), 0600))

	select {
	case <-changed:
		t.Fatal("unexpected change notification")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	kv := NewFileKV(t.TempDir())
	w, err := NewWatcher(kv, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
