package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer("top-secret")
	require.NoError(t, err)

	sealed, err := s.Seal("backend-token-123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "backend-token-123")

	again, err := s.Seal("backend-token-123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "backend-token-123", plain)
}

func TestSealer_WrongKeyOrTampered(t *testing.T) {
	a, _ := NewSealer("one")
	b, _ := NewSealer("two")

	sealed, err := a.Seal("tok")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = a.Open("not-base64!!")
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = a.Open("c2hvcnQ")
	assert.ErrorIs(t, err, ErrUnsealFailed)
}

func TestNewSealer_EmptySecret(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}

func TestGetPublicIDFromURL(t *testing.T) {
	assert.Equal(t, "studio/avatars/avatar-7",
		GetPublicIDFromURL("https://res.cloudinary.com/demo/image/upload/v1712/studio/avatars/avatar-7.png"))
	assert.Equal(t, "", GetPublicIDFromURL(""))
	assert.Equal(t, "", GetPublicIDFromURL("https://example.com/avatar.png"))
}
