package reqsign

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GenerateNonce returns a fresh random nonce suitable for a single signed
// request. It is a UUID v4 string, carrying 122 bits of randomness, which
// makes collision within a freshness window negligible.
func GenerateNonce() string {
	return uuid.New().String()
}

// SignConfig configures request signing.
type SignConfig struct {
	// Signer produces signatures and carries the worker identity.
	// Required.
	Signer Signer

	// Nonce overrides the generated nonce. Intended for tests; leave
	// empty in production so every request gets a fresh value.
	Nonce string

	// Now overrides the clock used for the timestamp. When nil,
	// time.Now is used.
	Now func() time.Time
}

// Sign produces authentication attributes for the given payload bytes.
// The payload is not modified; it must be transmitted byte-for-byte as
// the request body or verification will fail.
func Sign(payload []byte, cfg SignConfig) (Attributes, error) {
	if cfg.Signer == nil {
		return Attributes{}, ErrNoSigner
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	nonce := cfg.Nonce
	if nonce == "" {
		nonce = GenerateNonce()
	}

	timestamp := now().UnixMilli()

	sig, err := cfg.Signer.Sign(canonicalMessage(timestamp, nonce, payload))
	if err != nil {
		return Attributes{}, err
	}

	return Attributes{
		WorkerID:  cfg.Signer.WorkerID(),
		Timestamp: timestamp,
		Nonce:     nonce,
		Signature: base64.StdEncoding.EncodeToString(sig),
		Algorithm: cfg.Signer.Algorithm(),
	}, nil
}

// SignRequest signs an HTTP request in-place by adding the authentication
// headers. The request body is read to obtain the payload bytes and then
// restored, so the request remains sendable.
func SignRequest(r *http.Request, cfg SignConfig) error {
	payload, err := requestPayload(r)
	if err != nil {
		return err
	}

	attrs, err := Sign(payload, cfg)
	if err != nil {
		return err
	}

	attrs.SetHeader(r.Header)

	return nil
}

// requestPayload returns the request body bytes without consuming them.
// GetBody is preferred when available; otherwise the body is read fully
// and replaced with an equivalent reader.
func requestPayload(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	if r.GetBody != nil {
		body, err := r.GetBody()
		if err != nil {
			return nil, err
		}
		defer body.Close()

		return io.ReadAll(body)
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(payload))

	return payload, nil
}
