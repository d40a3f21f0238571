package reqsign

// Algorithm identifies the signature scheme carried in the Sign-Algo
// header. The tag exists so the header shape survives a future algorithm
// migration.
type Algorithm string

const (
	// AlgorithmRSASHA256 is RSASSA-PKCS1-v1_5 using SHA-256, the only
	// scheme currently registered.
	AlgorithmRSASHA256 Algorithm = "RSA-SHA256"
)

// String returns the wire representation of the algorithm tag.
func (a Algorithm) String() string {
	return string(a)
}

// Signer creates signatures over canonical request messages. It is held
// by the worker process and wraps the private key, which never leaves it.
type Signer interface {
	// Sign produces a signature over the given message bytes.
	Sign(message []byte) ([]byte, error)

	// Algorithm returns the algorithm tag for this signer.
	Algorithm() Algorithm

	// WorkerID returns the worker identity attached to signed requests.
	WorkerID() string
}

// Verifier validates signatures over canonical request messages. It is
// held by the server process and wraps a single worker's public key.
type Verifier interface {
	// Verify checks that signature is valid for the given message bytes.
	// Returns nil on success, non-nil on failure.
	Verify(message, signature []byte) error

	// Algorithm returns the algorithm tag for this verifier.
	Algorithm() Algorithm

	// WorkerID returns the worker identity this verifier's key belongs to.
	WorkerID() string
}
