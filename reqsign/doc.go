// Package reqsign implements request-origin authentication for
// worker-to-server HTTP traffic using RSA digital signatures.
//
// A worker signs every outgoing request over a canonical message built
// from the signing timestamp, a random nonce and the exact request body
// bytes. The server reconstructs the same message from the received body
// and the attached headers and verifies the signature against the
// worker's public key. No shared session state is involved: every
// request is authenticated on its own.
//
// # Wire Format
//
// Five headers travel alongside the unmodified request body:
//
//   - Worker-Id: the caller's identity
//   - Timestamp: signing time, milliseconds since epoch, decimal
//   - Nonce: random value unique per request
//   - Signature: base64 RSA signature (PKCS#1 v1.5, SHA-256)
//   - Sign-Algo: fixed scheme tag "RSA-SHA256"
//
// The signature covers exactly timestamp + "." + nonce + "." + body.
// Both sides must see identical body bytes; any re-serialization in
// between breaks verification.
//
// # Signing Requests
//
// Wrap an HTTP client with a signing Transport:
//
//	key, err := reqsign.ParsePrivateKeyPEM(pemData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	signer, err := reqsign.NewRSASigner("billing-worker", key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := &http.Client{
//	    Transport: reqsign.NewTransport(nil, reqsign.SignConfig{Signer: signer}),
//	}
//
// Or sign a single request with SignRequest, or produce bare attributes
// with Sign when the transport is handled elsewhere.
//
// # Verifying Requests
//
// Install the middleware in front of the business handlers:
//
//	verifier, err := reqsign.NewRSAVerifier("billing-worker", pubKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mw, err := reqsign.Middleware(reqsign.MiddlewareConfig{
//	    Verify: reqsign.VerifyConfig{
//	        Resolver: reqsign.StaticResolver(verifier),
//	        MaxSkew:  5 * time.Minute,
//	        Nonces:   reqsign.NewNonceCache(0, 5*time.Minute),
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handler := mw(businessHandler)
//
// Accepted requests carry their identity in the request context:
//
//	id := reqsign.IdentityFromContext(r.Context())
//
// Every rejection is answered with the same generic 401 so callers
// cannot distinguish why authentication failed; pass a logrus logger in
// MiddlewareConfig.Logger to record the internal reason.
//
// # Freshness and Replay
//
// A request is fresh when its timestamp is within MaxSkew of the
// server's clock (default 5 minutes, boundary inclusive). Freshness
// alone bounds but does not prevent replay: a captured request stays
// valid byte-for-byte until the window closes. The optional NonceCache
// closes that gap by rejecting duplicate (worker, nonce) pairs for the
// lifetime of the window.
//
// # Configuration
//
// Both sides can be built from a YAML file:
//
//	worker_id: billing-worker
//	private_key_file: /etc/keys/billing-worker.pem
//
//	workers:
//	  - worker_id: billing-worker
//	    public_key_file: /etc/keys/billing-worker.pub.pem
//	max_skew_ms: 300000
//
// See Config, LoadConfig and Config.VerifyConfig.
package reqsign
