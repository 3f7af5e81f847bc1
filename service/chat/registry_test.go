package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRegistryLastRegistrationWins(t *testing.T) {
	r := NewMemoryRegistry()

	r.Register("u1", "c1")
	r.Register("u1", "c2")

	connID, ok := r.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, "c2", connID)
	require.ElementsMatch(t, []string{"u1"}, r.ListOnline())
}

func TestMemoryRegistryLookupUnknown(t *testing.T) {
	r := NewMemoryRegistry()

	connID, ok := r.Lookup("nobody")
	require.False(t, ok)
	require.Empty(t, connID)
}

func TestMemoryRegistryUnregister(t *testing.T) {
	r := NewMemoryRegistry()
	r.Register("u1", "c1")
	r.Register("u2", "c2")

	r.Unregister("u1")
	_, ok := r.Lookup("u1")
	require.False(t, ok)
	require.ElementsMatch(t, []string{"u2"}, r.ListOnline())

	// unregistering an absent user is a no-op
	r.Unregister("u1")
	require.ElementsMatch(t, []string{"u2"}, r.ListOnline())
}

func TestMemoryRegistryIgnoresEmptyArgs(t *testing.T) {
	r := NewMemoryRegistry()
	r.Register("", "c1")
	r.Register("u1", "")
	require.Empty(t, r.ListOnline())
}

func TestMemoryRegistryListOnlineNeverNil(t *testing.T) {
	r := NewMemoryRegistry()
	require.NotNil(t, r.ListOnline())
	require.Len(t, r.ListOnline(), 0)
}
