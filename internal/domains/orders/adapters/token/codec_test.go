package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	payload, err := codec.Encode("cart-token-123")
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	require.Equal(t, "cart-token-123", codec.Decode(payload))
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	_, err := NewCodec(nil, time.Hour)
	require.Error(t, err)
}

func TestEncode_RejectsEmptyToken(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	_, err = codec.Encode("   ")
	require.Error(t, err)
}

func TestDecode_InvalidPayloadsDegradeToEmpty(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	require.Empty(t, codec.Decode(""))
	require.Empty(t, codec.Decode("not-a-jwt"))

	// A payload signed under a different secret does not verify.
	other, err := NewCodec([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Encode("cart-token-123")
	require.NoError(t, err)
	require.Empty(t, codec.Decode(foreign))

	// A tampered payload does not verify either.
	payload, err := codec.Encode("cart-token-123")
	require.NoError(t, err)
	parts := strings.Split(payload, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	require.Empty(t, codec.Decode(tampered))
}

func TestDecode_ExpiredPayload(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }
	payload, err := codec.Encode("cart-token-123")
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(30 * time.Minute) }
	require.Equal(t, "cart-token-123", codec.Decode(payload))

	codec.now = func() time.Time { return issued.Add(2 * time.Hour) }
	require.Empty(t, codec.Decode(payload))
}
