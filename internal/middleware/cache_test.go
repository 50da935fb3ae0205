package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Custom":     []string{"a", "b"},
	}
	body := []byte(`[{"id":1}]`)

	enc, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(enc)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestPayloadCodecEmptyBody(t *testing.T) {
	enc, err := encodePayload(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)

	status, _, body, ok := decodePayload(enc)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("short"),
		{0, 0, 0, 200, 0, 0, 0, 99}, // header length past the buffer
	}
	for _, bs := range cases {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}
