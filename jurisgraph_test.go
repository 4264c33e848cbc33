package jurisgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisgraph/jurisgraph/pkg/loader"
	"github.com/jurisgraph/jurisgraph/pkg/rdf"
	"github.com/jurisgraph/jurisgraph/pkg/store"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

type fakeRunner struct {
	err     error
	runs    int
	release chan struct{} // when non-nil, Run blocks until closed
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.runs++
	if f.release != nil {
		<-f.release
	}
	return nil, f.err
}

func testDoc(id, title string) types.SourceDocument {
	return types.SourceDocument{
		StoreID: "es-" + id,
		Fields:  map[string]any{"doc_id": id, "title": title},
	}
}

func testClient(t *testing.T, st store.Store, runner *fakeRunner, opts ...ClientOption) *Client {
	t.Helper()
	dir := t.TempDir()
	live := loader.NewLive(loader.Config{
		Alpha:         "alpha:9080",
		Zero:          "zero:5080",
		SchemaFile:    "judgments.schema",
		DockerImage:   "dgraph/dgraph:latest",
		DockerNetwork: "test",
		DataDir:       dir,
	}, loader.BreakerSettings{}, runner, nil)
	writer := rdf.NewWriter(filepath.Join(dir, "judgments.rdf"), nil)
	return NewClient(st, live, writer, nil, opts...)
}

func TestRunSuccessMarksDocuments(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"), testDoc("D-2", "C v D"))
	runner := &fakeRunner{}
	c := testClient(t, st, runner)

	result, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)

	assert.Equal(t, 2, result.DocumentsProcessed)
	assert.Equal(t, 2, result.DocumentsMarked)
	assert.Equal(t, 1, runner.runs)
	assert.True(t, st.IsConverted("D-1"))
	assert.True(t, st.IsConverted("D-2"))
	require.NotNil(t, result.Stats)
	assert.Equal(t, 2, result.Stats.TotalJudgments)
	assert.Equal(t, types.StateDone, c.Status().State)
}

func TestUploadFailureLeavesUnconverted(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	runner := &fakeRunner{err: errors.New("exit status 1")}
	c := testClient(t, st, runner)

	result, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	assert.False(t, st.IsConverted("D-1"), "failed upload must not mark documents")
	assert.Equal(t, types.StateFailed, c.Status().State)

	// The next run picks the document up again.
	runner.err = nil
	result, err = c.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)
	assert.True(t, st.IsConverted("D-1"))
}

func TestDryRunSkipsUploadAndMarking(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	runner := &fakeRunner{}
	c := testClient(t, st, runner)

	result, err := c.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)

	assert.Equal(t, 0, runner.runs, "dry run must not invoke the loader")
	assert.False(t, st.IsConverted("D-1"))
	assert.Equal(t, 0, result.DocumentsMarked)
}

func TestNoUnconvertedIsNoOp(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	st.MarkConverted(context.Background(), []string{"D-1"})
	runner := &fakeRunner{}
	c := testClient(t, st, runner)

	result, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, 0, result.DocumentsProcessed)
	assert.Equal(t, 0, runner.runs)
}

func TestEmptyFullRunFails(t *testing.T) {
	c := testClient(t, store.NewMemStore(), &fakeRunner{})

	result, err := c.Run(context.Background(), Options{Full: true})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	assert.Contains(t, result.Message, types.ErrNoDocuments.Error())
}

func TestUnknownDocIDsFail(t *testing.T) {
	c := testClient(t, store.NewMemStore(testDoc("D-1", "A v B")), &fakeRunner{})

	result, err := c.Run(context.Background(), Options{DocIDs: []string{"D-404"}})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
}

func TestForceReprocess(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	st.MarkConverted(context.Background(), []string{"D-1"})
	c := testClient(t, st, &fakeRunner{})

	result, err := c.Run(context.Background(), Options{DocIDs: []string{"D-1"}, ForceReprocess: true})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)
	assert.Equal(t, 1, result.DocumentsProcessed)
	assert.True(t, st.IsConverted("D-1"))
}

func TestConcurrentRunRejected(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	runner := &fakeRunner{release: make(chan struct{})}
	c := testClient(t, st, runner)

	_, done, err := c.Start(context.Background(), Options{})
	require.NoError(t, err)

	// Wait for the run to reach the blocked upload.
	require.Eventually(t, func() bool {
		return c.Status().State == types.StateUploading
	}, 2*time.Second, 10*time.Millisecond)

	_, err = c.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, types.ErrRunInProgress)

	close(runner.release)
	result := <-done
	assert.True(t, result.Succeeded(), result.Message)

	// After completion the pipeline is free again.
	st.ResetConverted(context.Background(), nil)
	_, err = c.Run(context.Background(), Options{})
	assert.NoError(t, err)
}

func TestSnapshotSuppressesReDescription(t *testing.T) {
	dir := t.TempDir()
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	st.Add(types.SourceDocument{StoreID: "es-D-1b", Fields: map[string]any{
		"doc_id": "D-1", "title": "A v B", "judges": `["Justice Rao"]`,
	}})
	c := testClient(t, st, &fakeRunner{}, WithSnapshotDir(dir))

	result, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)
	assert.Equal(t, 1, result.Stats.TotalJudges)

	// The second run sees the same judge again: rehydrated, not re-created.
	st.Add(types.SourceDocument{StoreID: "es-D-2", Fields: map[string]any{
		"doc_id": "D-2", "title": "C v D", "judges": `["Justice Rao"]`,
	}})
	result, err = c.Run(context.Background(), Options{Append: true})
	require.NoError(t, err)
	require.True(t, result.Succeeded(), result.Message)
	assert.Equal(t, 0, result.Stats.TotalJudges)
	assert.Equal(t, 1, result.Stats.JudgeRelationships)
}

func TestAppendGrowsTripleFile(t *testing.T) {
	st := store.NewMemStore(testDoc("D-1", "A v B"))
	c := testClient(t, st, &fakeRunner{}, WithCleanup(false))

	_, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)

	path := c.writer.Path()
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	st.Add(testDoc("D-2", "C v D"))
	_, err = c.Run(context.Background(), Options{Append: true})
	require.NoError(t, err)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, len(second), len(first))
	assert.Contains(t, string(second), "# === Incremental update:")
}
