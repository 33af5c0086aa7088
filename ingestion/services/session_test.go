package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecodedFixture() *DecodeResult {
	name := FieldName
	return &DecodeResult{
		Headers: []string{"Name"},
		Rows: []RawRow{
			{RowNumber: 1, Data: map[string]string{"Name": "Widget"}},
		},
		Mappings: []ColumnMapping{{FileHeader: "Name", TargetField: &name}},
	}
}

func TestSessionRegistryCreateAndGet(t *testing.T) {
	registry := NewSessionRegistry(time.Hour)

	session := registry.Create(uuid.New(), "importer@example.com", "stock.csv", newDecodedFixture())
	require.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, 1, registry.Count())

	got, ok := registry.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "stock.csv", got.FileName)
	assert.Equal(t, []string{"Name"}, got.Headers)
	assert.Len(t, got.Rows, 1)
}

func TestSessionRegistryGetUnknown(t *testing.T) {
	registry := NewSessionRegistry(time.Hour)

	_, ok := registry.Get(uuid.New())
	assert.False(t, ok)
}

func TestSessionRegistryGetExpiresLazily(t *testing.T) {
	registry := NewSessionRegistry(10 * time.Millisecond)

	session := registry.Create(uuid.New(), "importer@example.com", "stock.csv", newDecodedFixture())
	time.Sleep(25 * time.Millisecond)

	_, ok := registry.Get(session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Count())
}

func TestSessionRegistryGetTouchesSession(t *testing.T) {
	registry := NewSessionRegistry(40 * time.Millisecond)

	session := registry.Create(uuid.New(), "importer@example.com", "stock.csv", newDecodedFixture())

	// keep touching inside the TTL; the session must outlive several windows
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		_, ok := registry.Get(session.ID)
		require.True(t, ok)
	}
}

func TestSessionRegistryDelete(t *testing.T) {
	registry := NewSessionRegistry(time.Hour)

	session := registry.Create(uuid.New(), "importer@example.com", "stock.csv", newDecodedFixture())
	registry.Delete(session.ID)

	_, ok := registry.Get(session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Count())
}

func TestSessionRegistryPurgeExpired(t *testing.T) {
	registry := NewSessionRegistry(10 * time.Millisecond)

	registry.Create(uuid.New(), "importer@example.com", "a.csv", newDecodedFixture())
	registry.Create(uuid.New(), "importer@example.com", "b.csv", newDecodedFixture())
	time.Sleep(25 * time.Millisecond)
	fresh := registry.Create(uuid.New(), "importer@example.com", "c.csv", newDecodedFixture())

	purged := registry.PurgeExpired()
	assert.Equal(t, 2, purged)
	assert.Equal(t, 1, registry.Count())

	_, ok := registry.Get(fresh.ID)
	assert.True(t, ok)
}
