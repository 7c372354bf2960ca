// ABOUTME: Tests for the CBOR request/response envelope codec.
// ABOUTME: Covers exact round-trip preservation and decode failures on garbage input.

package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{
		Method: "POST",
		Path:   "/r/orders",
		Header: map[string][]string{
			"Content-Type":    {"application/octet-stream"},
			"X-Custom-Header": {"first", "second"},
		},
		Body: []byte{0x00, 0xff, 0x10, 0x80}, // raw bytes, no transcoding
	}

	data, err := EncodeRequest(req)
	require.NoError(t, err)

	got, err := DecodeRequest(data)
	require.NoError(t, err)

	assert.Equal(t, req.Method, got.Method)
	assert.Equal(t, req.Path, got.Path)
	assert.Equal(t, req.Header, got.Header)
	assert.Equal(t, req.Body, got.Body)
}

func TestResponseRoundTrip(t *testing.T) {
	resp := &Response{
		Status: 200,
		Header: map[string][]string{"Content-Type": {"text/plain"}},
		Body:   []byte("ok"),
	}

	data, err := EncodeResponse(resp)
	require.NoError(t, err)

	got, err := DecodeResponse(data)
	require.NoError(t, err)

	assert.Equal(t, resp, got)
}

func TestDecodeRequestGarbage(t *testing.T) {
	_, err := DecodeRequest([]byte("not cbor at all"))
	assert.Error(t, err)
}

func TestDecodeResponseGarbage(t *testing.T) {
	_, err := DecodeResponse([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestRequestEmptyBody(t *testing.T) {
	req := &Request{Method: "GET", Path: "/r/status", Header: map[string][]string{}}

	data, err := EncodeRequest(req)
	require.NoError(t, err)

	got, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Empty(t, got.Body)
}
