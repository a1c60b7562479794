package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "2f1c7a90-6d0e-4b7a-9a55-0d5f3f2b9e11")
	assert.NotEmpty(t, token)

	decodedAt, id, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedAt))
	assert.Equal(t, "2f1c7a90-6d0e-4b7a-9a55-0d5f3f2b9e11", id)
}

func TestEncodeTokenNormalisesToUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	local := time.Date(2026, 1, 2, 10, 0, 0, 0, paris)

	decodedAt, _, err := DecodeToken(EncodeToken(local, "id"))
	require.NoError(t, err)
	assert.True(t, local.Equal(decodedAt))
	assert.Equal(t, time.UTC, decodedAt.Location())
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	emptyID := base64.URLEncoding.EncodeToString([]byte("2026-05-15T00:00:00Z|"))
	_, _, err = DecodeToken(emptyID)
	require.Error(t, err)

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|abc"))
	_, _, err = DecodeToken(badDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}
