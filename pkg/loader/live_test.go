package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	name string
	args []string
	out  []byte
	err  error
	runs int
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	f.runs++
	return f.out, f.err
}

func testConfig() Config {
	return Config{
		Alpha:         "dgraph-alpha:9080",
		Zero:          "dgraph-zero:5080",
		SchemaFile:    "judgments.schema",
		DockerImage:   "dgraph/dgraph:latest",
		DockerNetwork: "dgraph_default",
		DataDir:       "/var/lib/jurisgraph",
	}
}

func TestUploadInvocation(t *testing.T) {
	runner := &fakeRunner{}
	l := NewLive(testConfig(), BreakerSettings{}, runner, nil)

	err := l.Upload(context.Background(), "/var/lib/jurisgraph/judgments.rdf")
	require.NoError(t, err)

	assert.Equal(t, "docker", runner.name)
	args := runner.args
	assert.Contains(t, args, "--network")
	assert.Contains(t, args, "dgraph_default")
	assert.Contains(t, args, "/var/lib/jurisgraph:/data")
	assert.Contains(t, args, "dgraph/dgraph:latest")
	assert.Contains(t, args, "/data/judgments.rdf")
	assert.Contains(t, args, "/data/judgments.schema")
	assert.Contains(t, args, "dgraph-alpha:9080")
	assert.Contains(t, args, "dgraph-zero:5080")

	// Every natural-key predicate must be passed for upsert merging.
	count := 0
	for i, a := range args {
		if a == "--upsertPredicate" {
			count++
			require.Greater(t, len(args), i+1)
		}
	}
	assert.Equal(t, len(upsertPredicates), count)
	for _, pred := range upsertPredicates {
		assert.Contains(t, args, pred)
	}
}

func TestUploadFailurePropagates(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), out: []byte("schema mismatch")}
	l := NewLive(testConfig(), BreakerSettings{}, runner, nil)

	err := l.Upload(context.Background(), "/var/lib/jurisgraph/judgments.rdf")
	assert.Error(t, err)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	l := NewLive(testConfig(), BreakerSettings{ReadyToTripRatio: 0.6}, runner, nil)

	for i := 0; i < 3; i++ {
		_ = l.Upload(context.Background(), "/var/lib/jurisgraph/judgments.rdf")
	}
	before := runner.runs

	// The open breaker rejects without invoking the runner.
	err := l.Upload(context.Background(), "/var/lib/jurisgraph/judgments.rdf")
	assert.Error(t, err)
	assert.Equal(t, before, runner.runs)
}
