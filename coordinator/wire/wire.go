// Package wire defines the envelope exchanged with the coordinator and a
// single validating codec for it.
//
// Exactly three envelope variants exist on the wire:
//
//   - Request:  { id, method, params, ts, sig }
//   - Response: { id, result } or { id, error: { code, message } }
//   - Push:     { type, payload }  (no id, never correlated)
//
// Decode discriminates them through one parser at the socket boundary so
// upper layers only ever see a tagged union.
package wire

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clearport/session_layer/internal/signer"
)

// ErrMalformed is wrapped by every decode failure. A malformed envelope
// is a protocol error: receivers log and drop it.
var ErrMalformed = errors.New("wire: malformed envelope")

// Kind discriminates the envelope variants.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindResponse
	KindPush
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindPush:
		return "push"
	default:
		return "unknown"
	}
}

// Request is an outbound signed call.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	TS     uint64          `json:"ts"`
	Sig    string          `json:"sig,omitempty"`
}

// RPCError is the error half of a Response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("coordinator error %d: %s", e.Code, e.Message)
}

// Response correlates back to the Request with the same ID. Exactly one
// of Result and Err is set.
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Err    *RPCError       `json:"error,omitempty"`
}

// Push is an unsolicited event notification.
type Push struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope is the decoded tagged union. Exactly one variant pointer is
// non-nil, matching Kind.
type Envelope struct {
	Kind     Kind
	Request  *Request
	Response *Response
	Push     *Push
}

// rawEnvelope is the superset shape used for discrimination.
type rawEnvelope struct {
	ID      *uint64         `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	TS      uint64          `json:"ts"`
	Sig     string          `json:"sig"`
	Result  json.RawMessage `json:"result"`
	Err     *RPCError       `json:"error"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses and validates a single envelope.
//
// Discrimination rules: a "method" field marks a Request, a "type" field
// marks a Push, and an "id" with "result" or "error" marks a Response.
// Anything else fails with ErrMalformed.
func Decode(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case raw.Method != "":
		if raw.ID == nil {
			return nil, fmt.Errorf("%w: request without id", ErrMalformed)
		}
		return &Envelope{
			Kind: KindRequest,
			Request: &Request{
				ID:     *raw.ID,
				Method: raw.Method,
				Params: raw.Params,
				TS:     raw.TS,
				Sig:    raw.Sig,
			},
		}, nil

	case raw.Type != "":
		if raw.ID != nil {
			return nil, fmt.Errorf("%w: push carries an id", ErrMalformed)
		}
		return &Envelope{
			Kind: KindPush,
			Push: &Push{Type: raw.Type, Payload: raw.Payload},
		}, nil

	case raw.ID != nil:
		if raw.Result == nil && raw.Err == nil {
			return nil, fmt.Errorf("%w: response without result or error", ErrMalformed)
		}
		if raw.Result != nil && raw.Err != nil {
			return nil, fmt.Errorf("%w: response with both result and error", ErrMalformed)
		}
		return &Envelope{
			Kind:     KindResponse,
			Response: &Response{ID: *raw.ID, Result: raw.Result, Err: raw.Err},
		}, nil

	default:
		return nil, fmt.Errorf("%w: no discriminating field", ErrMalformed)
	}
}

// Encode serializes any of the three variant types.
func Encode(v any) ([]byte, error) {
	switch v.(type) {
	case *Request, *Response, *Push, Request, Response, Push:
	default:
		return nil, fmt.Errorf("wire: cannot encode %T", v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return data, nil
}

// signedTuple is the exact tuple a Request signature covers.
type signedTuple struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	TS     uint64          `json:"ts"`
}

// SigningBytes returns the canonical byte form of the {id, method,
// params, ts} tuple of a Request. The signature field itself is never
// part of the signed material.
func SigningBytes(r *Request) ([]byte, error) {
	return signer.Canonical(signedTuple{
		ID:     r.ID,
		Method: r.Method,
		Params: r.Params,
		TS:     r.TS,
	})
}

// SignRequest computes and attaches the hex signature for r using key.
func SignRequest(r *Request, key *signer.Key) error {
	material, err := SigningBytes(r)
	if err != nil {
		return err
	}
	sig, err := key.SignDigest(signer.Keccak256(material))
	if err != nil {
		return err
	}
	r.Sig = "0x" + hex.EncodeToString(sig)
	return nil
}

// VerifyRequest recovers the address that signed r. Callers compare it
// against the claimed holder; an envelope whose signature does not
// recover to the expected address must not be trusted.
func VerifyRequest(r *Request) (string, error) {
	trimmed := strings.TrimPrefix(r.Sig, "0x")
	sig, err := hex.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("wire: signature must be hex: %w", err)
	}
	return signer.RecoverAddress(signedTuple{
		ID:     r.ID,
		Method: r.Method,
		Params: r.Params,
		TS:     r.TS,
	}, sig)
}
