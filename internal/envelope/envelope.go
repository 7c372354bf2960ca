// ABOUTME: CBOR codec for HTTP request/response envelopes carried as bus payloads.
// ABOUTME: Preserves method, path, headers, and body bytes exactly across the bridge.

package envelope

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Request is an immutable snapshot of an inbound HTTP request captured at
// ingress. It is owned by one session, never mutated after construction, and
// serialized exactly once.
type Request struct {
	Method string              `cbor:"method"`
	Path   string              `cbor:"path"`
	Header map[string][]string `cbor:"header"`
	Body   []byte              `cbor:"body"`
}

// Response is the backend's reply, assembled from the response-body stream.
type Response struct {
	Status int                 `cbor:"status"`
	Header map[string][]string `cbor:"header"`
	Body   []byte              `cbor:"body"`
}

// EncodeRequest serializes a request envelope for transport over the bus.
func EncodeRequest(r *Request) ([]byte, error) {
	data, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding request envelope: %w", err)
	}
	return data, nil
}

// DecodeRequest deserializes a request envelope received from the bus.
func DecodeRequest(data []byte) (*Request, error) {
	var r Request
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding request envelope: %w", err)
	}
	return &r, nil
}

// EncodeResponse serializes a response envelope for transport over the bus.
func EncodeResponse(r *Response) ([]byte, error) {
	data, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding response envelope: %w", err)
	}
	return data, nil
}

// DecodeResponse deserializes the accumulated response-body bytes into a
// response envelope.
func DecodeResponse(data []byte) (*Response, error) {
	var r Response
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	return &r, nil
}
