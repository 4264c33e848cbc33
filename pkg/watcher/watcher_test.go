package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/loader"
	"github.com/jurisgraph/jurisgraph/pkg/rdf"
	"github.com/jurisgraph/jurisgraph/pkg/store"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

type okRunner struct{}

func (okRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, nil
}

func newClient(t *testing.T, st store.Store) *jurisgraph.Client {
	t.Helper()
	dir := t.TempDir()
	live := loader.NewLive(loader.Config{
		Alpha: "alpha:9080", Zero: "zero:5080",
		SchemaFile: "judgments.schema", DockerImage: "dgraph/dgraph:latest",
		DockerNetwork: "test", DataDir: dir,
	}, loader.BreakerSettings{}, okRunner{}, nil)
	writer := rdf.NewWriter(filepath.Join(dir, "judgments.rdf"), nil)
	return jurisgraph.NewClient(st, live, writer, nil)
}

func TestWatcherTriggersOnPendingDocuments(t *testing.T) {
	st := store.NewMemStore(types.SourceDocument{
		StoreID: "es-1",
		Fields:  map[string]any{"doc_id": "D-1", "title": "A v B"},
	})
	client := newClient(t, st)

	w := New(client, 20*time.Millisecond, nil)
	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool {
		return st.IsConverted("D-1")
	}, 3*time.Second, 20*time.Millisecond)

	status := w.Status()
	assert.True(t, status.Running)
	assert.GreaterOrEqual(t, status.RunsTriggered, 1)
	assert.NotNil(t, status.LastTrigger)
}

func TestWatcherIdleWhenNothingPending(t *testing.T) {
	st := store.NewMemStore()
	client := newClient(t, st)

	w := New(client, 10*time.Millisecond, nil)
	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool {
		return w.Status().ChecksPerformed >= 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, w.Status().RunsTriggered)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	client := newClient(t, store.NewMemStore())
	w := New(client, 10*time.Millisecond, nil)

	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.False(t, w.Status().Running)
}

func TestWatcherStartTwice(t *testing.T) {
	client := newClient(t, store.NewMemStore())
	w := New(client, 10*time.Millisecond, nil)

	w.Start(context.Background())
	w.Start(context.Background())
	w.Stop()

	assert.False(t, w.Status().Running)
}
