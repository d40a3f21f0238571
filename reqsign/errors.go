package reqsign

import "errors"

// Signing errors.
var (
	// ErrNoSigner is returned when SignConfig has no Signer configured.
	ErrNoSigner = errors.New("reqsign: signer must not be nil")

	// ErrEncoding is returned when a payload cannot be serialized into
	// its canonical byte form.
	ErrEncoding = errors.New("reqsign: payload not serializable")
)

// Verification errors. Handlers must collapse all of them into a single
// generic response on the wire; the distinct values exist for internal
// logging and tests only.
var (
	// ErrNoResolver is returned when VerifyConfig has no KeyResolver
	// configured.
	ErrNoResolver = errors.New("reqsign: key resolver must not be nil")

	// ErrMissingAttributes is returned when required authentication
	// attributes are absent or cannot be parsed.
	ErrMissingAttributes = errors.New("reqsign: missing or malformed authentication attributes")

	// ErrRequestExpired is returned when the request timestamp falls
	// outside the freshness window.
	ErrRequestExpired = errors.New("reqsign: request timestamp outside freshness window")

	// ErrKeyUnavailable is returned when no verification key can be
	// resolved for the claimed worker. This is a server-side fault, not
	// a client one.
	ErrKeyUnavailable = errors.New("reqsign: verification key unavailable")

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("reqsign: signature verification failed")

	// ErrReplayedNonce is returned when a (worker, nonce) pair has
	// already been accepted inside the current freshness window.
	ErrReplayedNonce = errors.New("reqsign: nonce already seen")
)

// Key material errors.
var (
	// ErrInvalidKey is returned when key material is invalid (nil, not
	// PEM, wrong type, insufficient size).
	ErrInvalidKey = errors.New("reqsign: invalid key material")
)
