package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	s := New("session-secret")

	sealed, err := s.Seal("backend.jwt.token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "backend")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "backend.jwt.token", plain)
}

func TestSeal_UsesFreshNonce(t *testing.T) {
	s := New("session-secret")

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestOpen_Rejects(t *testing.T) {
	s := New("session-secret")
	sealed, err := s.Seal("token")
	require.NoError(t, err)

	_, err = New("other-secret").Open(sealed)
	assert.ErrorIs(t, err, ErrInvalidSeal)

	_, err = s.Open("!!!")
	assert.ErrorIs(t, err, ErrInvalidSeal)

	_, err = s.Open("AAAA")
	assert.ErrorIs(t, err, ErrInvalidSeal)
}

func TestHashToken(t *testing.T) {
	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
