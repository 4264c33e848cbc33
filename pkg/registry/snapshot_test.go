package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()

	snap, err := OpenSnapshot(dir, nil)
	require.NoError(t, err)

	first := NewBuilders()
	judgeID, _ := first.Judges.GetOrCreate("Justice Rao")
	advID, _ := first.PetitionerAdvocates.GetOrCreate("A. Kumar")
	require.NoError(t, snap.Save(first))
	require.NoError(t, snap.Close())

	snap, err = OpenSnapshot(dir, nil)
	require.NoError(t, err)
	defer snap.Close()

	second := NewBuilders()
	require.NoError(t, snap.LoadInto(second))

	// Rehydrated keys keep their ids and do not describe themselves again.
	id, created := second.Judges.GetOrCreate("Justice Rao")
	assert.Equal(t, judgeID, id)
	assert.False(t, created)
	assert.Empty(t, second.Judges.Statements())

	id, created = second.PetitionerAdvocates.GetOrCreate("A. Kumar")
	assert.Equal(t, advID, id)
	assert.False(t, created)

	// The same name in the other role is still a brand new entity.
	_, created = second.RespondantAdvocates.GetOrCreate("A. Kumar")
	assert.True(t, created)
}
