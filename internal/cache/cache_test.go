package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factionboard/missionstore/pkg/core"
)

func TestDocumentCache_EmptyGet(t *testing.T) {
	c := NewDocumentCache()

	_, ok := c.Get()
	assert.False(t, ok, "expected an empty cache to miss")
}

func TestDocumentCache_PutThenGet(t *testing.T) {
	c := NewDocumentCache()
	now := time.Now().UTC()
	doc := core.EmptyDocument()
	doc.Append(core.NewMission("Harpers 🎼", "Recover the Moonshard", "300 gp", "City of the Dead", "", now))

	c.Put(doc)

	got, ok := c.Get()
	require.True(t, ok)
	require.Len(t, got.Missions, 1)
	assert.Equal(t, "Recover the Moonshard", got.Missions[0].Title)
}

func TestDocumentCache_HandsOutCopies(t *testing.T) {
	c := NewDocumentCache()
	now := time.Now().UTC()
	doc := core.EmptyDocument()
	doc.Append(core.NewMission("Harpers 🎼", "Recover the Moonshard", "", "", "", now))
	c.Put(doc)

	// mutating the source after Put must not reach the cache
	doc.Missions[0].Title = "mutated source"

	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "Recover the Moonshard", got.Missions[0].Title)

	// mutating a Get result must not reach the cache either
	got.Missions[0].Title = "mutated copy"

	again, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "Recover the Moonshard", again.Missions[0].Title)
}

func TestDocumentCache_Reset(t *testing.T) {
	c := NewDocumentCache()
	c.Put(core.EmptyDocument())

	c.Reset()

	_, ok := c.Get()
	assert.False(t, ok, "expected the cache to be empty after Reset")
}
