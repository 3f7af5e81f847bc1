package countries

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidCode(t *testing.T) {
	require.True(t, IsValidCode("br"))
	require.True(t, IsValidCode("BR"), "codes are case-insensitive")
	require.True(t, IsValidCode(" de "))

	require.False(t, IsValidCode("xx"))
	require.False(t, IsValidCode(""))
	require.False(t, IsValidCode("bra"))
}

func TestName(t *testing.T) {
	require.Equal(t, "Brazil", Name("br"))
	require.Equal(t, "Germany", Name("DE"))
	require.Empty(t, Name("xx"))
}
