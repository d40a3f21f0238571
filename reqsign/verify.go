package reqsign

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// DefaultMaxSkew is the freshness window applied when VerifyConfig.MaxSkew
// is zero.
const DefaultMaxSkew = 5 * time.Minute

// KeyResolver returns a Verifier holding the verification key for the
// given worker ID. It is called once per verification. Returning an error
// means the key is not available, which is treated as a server-side
// misconfiguration rather than a client fault.
type KeyResolver func(workerID string) (Verifier, error)

// StaticResolver returns a KeyResolver that always yields the given
// Verifier regardless of the claimed worker ID. Suitable for single-worker
// deployments.
func StaticResolver(v Verifier) KeyResolver {
	return func(string) (Verifier, error) {
		return v, nil
	}
}

// Identity is the authenticated-identity marker attached to accepted
// requests. The worker ID is an unverified label: the signature proves
// possession of the resolved key, not the literal header value.
type Identity struct {
	WorkerID string
}

// VerifyConfig configures request verification.
type VerifyConfig struct {
	// Resolver looks up the verification key for a worker ID. Required.
	Resolver KeyResolver

	// MaxSkew is the freshness window: requests whose timestamp differs
	// from the current time by more than this are rejected. Zero means
	// DefaultMaxSkew. The boundary is inclusive.
	MaxSkew time.Duration

	// Nonces, when non-nil, rejects duplicate (workerID, nonce) pairs
	// inside the freshness window. Nil disables replay detection, which
	// narrows the threat model to transport-level capture only.
	Nonces *NonceCache

	// Now overrides the clock used for the freshness check. When nil,
	// time.Now is used.
	Now func() time.Time
}

// Verify decides accept or reject for a request body plus its parsed
// authentication attributes. Checks run in a fixed order and short-circuit
// on the first failure: completeness, freshness, key availability,
// signature, replay. It is a pure function of (body, attrs, key, now);
// no state is shared between calls except the optional nonce cache.
//
// On success the returned Identity is non-nil and the error is nil. On
// failure the error is one of the sentinel verification errors; callers
// serving HTTP must collapse all of them into a single generic 401.
func Verify(body []byte, attrs Attributes, cfg VerifyConfig) (*Identity, error) {
	if cfg.Resolver == nil {
		return nil, ErrNoResolver
	}

	// Completeness. VerifyRequest already parses fail-closed, but Verify
	// is callable with a hand-built Attributes value.
	sig, err := checkAttributes(attrs)
	if err != nil {
		return nil, err
	}

	// Freshness.
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	maxSkew := cfg.MaxSkew
	if maxSkew == 0 {
		maxSkew = DefaultMaxSkew
	}

	skew := now().UnixMilli() - attrs.Timestamp
	if skew < 0 {
		skew = -skew
	}

	if skew > maxSkew.Milliseconds() {
		return nil, ErrRequestExpired
	}

	// Key availability.
	verifier, err := cfg.Resolver(attrs.WorkerID)
	if err != nil || verifier == nil {
		return nil, fmt.Errorf("%w: no key for worker %q", ErrKeyUnavailable, attrs.WorkerID)
	}

	// Canonical reconstruction and signature check. The body is used
	// exactly as received: any re-serialization would change the bytes
	// and invalidate every request.
	msg := canonicalMessage(attrs.Timestamp, attrs.Nonce, body)

	if err := verifier.Verify(msg, sig); err != nil {
		return nil, err
	}

	// Replay. Recorded only after the signature validates so that
	// unauthenticated traffic cannot poison the cache.
	if cfg.Nonces != nil {
		if seen := cfg.Nonces.Seen(attrs.WorkerID, attrs.Nonce); seen {
			return nil, ErrReplayedNonce
		}
	}

	return &Identity{WorkerID: attrs.WorkerID}, nil
}

// VerifyRequest verifies an incoming HTTP request given its already-read
// body bytes. Attributes are extracted from the headers in a single
// fail-closed step and then passed to Verify.
func VerifyRequest(r *http.Request, body []byte, cfg VerifyConfig) (*Identity, error) {
	attrs, err := AttributesFromHeader(r.Header)
	if err != nil {
		return nil, err
	}

	return Verify(body, attrs, cfg)
}

// checkAttributes validates attribute completeness and well-formedness,
// returning the decoded signature bytes.
func checkAttributes(attrs Attributes) ([]byte, error) {
	if attrs.WorkerID == "" || attrs.Nonce == "" || attrs.Signature == "" || attrs.Timestamp <= 0 {
		return nil, ErrMissingAttributes
	}

	if attrs.Algorithm != "" && attrs.Algorithm != AlgorithmRSASHA256 {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMissingAttributes, attrs.Algorithm)
	}

	sig, err := base64.StdEncoding.DecodeString(attrs.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not valid base64", ErrMissingAttributes)
	}

	return sig, nil
}
