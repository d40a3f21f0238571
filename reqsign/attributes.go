package reqsign

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
)

// Wire header names carrying authentication attributes alongside the
// request body.
const (
	HeaderWorkerID  = "Worker-Id"
	HeaderTimestamp = "Timestamp"
	HeaderNonce     = "Nonce"
	HeaderSignature = "Signature"
	HeaderSignAlgo  = "Sign-Algo"
)

// Attributes is the per-request authentication bundle produced by the
// signer and consumed by the verifier. It has no persistence beyond a
// single verification call.
type Attributes struct {
	// WorkerID identifies the calling worker. It is an informational
	// label: the signature does not bind it, but the verifier uses it
	// to select the verification key.
	WorkerID string

	// Timestamp is the signing time in milliseconds since the Unix epoch.
	Timestamp int64

	// Nonce is a random value unique per signed request.
	Nonce string

	// Signature is the base64-encoded RSA signature over the canonical
	// message.
	Signature string

	// Algorithm is the signature scheme tag. Empty is treated as the
	// default scheme for compatibility.
	Algorithm Algorithm
}

// SetHeader writes the attributes into h using the wire header names.
func (a Attributes) SetHeader(h http.Header) {
	h.Set(HeaderWorkerID, a.WorkerID)
	h.Set(HeaderTimestamp, strconv.FormatInt(a.Timestamp, 10))
	h.Set(HeaderNonce, a.Nonce)
	h.Set(HeaderSignature, a.Signature)
	h.Set(HeaderSignAlgo, a.Algorithm.String())
}

// AttributesFromHeader builds Attributes from raw request headers in a
// single fail-closed parsing step. Any absent or unparsable required
// field yields ErrMissingAttributes; later verification stages never
// touch raw headers.
func AttributesFromHeader(h http.Header) (Attributes, error) {
	var attrs Attributes

	attrs.WorkerID = h.Get(HeaderWorkerID)
	if attrs.WorkerID == "" {
		return Attributes{}, fmt.Errorf("%w: %s", ErrMissingAttributes, HeaderWorkerID)
	}

	rawTimestamp := h.Get(HeaderTimestamp)
	if rawTimestamp == "" {
		return Attributes{}, fmt.Errorf("%w: %s", ErrMissingAttributes, HeaderTimestamp)
	}

	timestamp, err := strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil || timestamp <= 0 {
		return Attributes{}, fmt.Errorf("%w: %s is not a positive integer", ErrMissingAttributes, HeaderTimestamp)
	}
	attrs.Timestamp = timestamp

	attrs.Nonce = h.Get(HeaderNonce)
	if attrs.Nonce == "" {
		return Attributes{}, fmt.Errorf("%w: %s", ErrMissingAttributes, HeaderNonce)
	}

	attrs.Signature = h.Get(HeaderSignature)
	if attrs.Signature == "" {
		return Attributes{}, fmt.Errorf("%w: %s", ErrMissingAttributes, HeaderSignature)
	}

	if _, err := base64.StdEncoding.DecodeString(attrs.Signature); err != nil {
		return Attributes{}, fmt.Errorf("%w: %s is not valid base64", ErrMissingAttributes, HeaderSignature)
	}

	attrs.Algorithm = Algorithm(h.Get(HeaderSignAlgo))

	return attrs, nil
}
