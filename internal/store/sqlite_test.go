// ABOUTME: Tests for the SQLite interaction archive append and filtered listing

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmv-credia/cobranza-gateway/internal/audit"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(phone string, kind audit.Kind, detail string, at time.Time) audit.Record {
	return audit.Record{
		ID:        uuid.New().String(),
		Phone:     phone,
		Kind:      kind,
		Detail:    detail,
		Timestamp: at,
	}
}

func TestArchiveAndListRoundTrip(t *testing.T) {
	s := createTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.Archive(record("5512345678", audit.KindInbound, "hola", now)))
	require.NoError(t, s.Archive(record("5512345678", audit.KindOutbound, "bienvenida", now.Add(time.Second))))
	require.NoError(t, s.Archive(record("5598765432", audit.KindEscalation, "rechazo de pago", now.Add(2*time.Second))))

	all, err := s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, audit.KindEscalation, all[0].Kind)

	byPhone, err := s.List(Filter{Phone: "5512345678"})
	require.NoError(t, err)
	require.Len(t, byPhone, 2)

	byKind, err := s.List(Filter{Kind: audit.KindEscalation})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "rechazo de pago", byKind[0].Detail)

	since, err := s.List(Filter{Since: now.Add(time.Second)})
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestListLimit(t *testing.T) {
	s := createTestStore(t)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Archive(record("5512345678", audit.KindInbound, "m", base.Add(time.Duration(i)*time.Second))))
	}

	got, err := s.List(Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
