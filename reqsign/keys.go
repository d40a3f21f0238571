package reqsign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Minimum RSA key size in bits.
const minRSAKeyBits = 2048

type rsaSigner struct {
	key      *rsa.PrivateKey
	workerID string
}

// NewRSASigner creates a Signer using RSASSA-PKCS1-v1_5 with SHA-256.
// The key must be at least 2048 bits.
func NewRSASigner(workerID string, key *rsa.PrivateKey) (Signer, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: rsa private key must not be nil", ErrInvalidKey)
	}

	if key.N.BitLen() < minRSAKeyBits {
		return nil, fmt.Errorf("%w: rsa key must be at least %d bits", ErrInvalidKey, minRSAKeyBits)
	}

	return &rsaSigner{key: key, workerID: workerID}, nil
}

func (s *rsaSigner) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)

	return rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
}

func (s *rsaSigner) Algorithm() Algorithm { return AlgorithmRSASHA256 }
func (s *rsaSigner) WorkerID() string     { return s.workerID }

type rsaVerifier struct {
	key      *rsa.PublicKey
	workerID string
}

// NewRSAVerifier creates a Verifier using RSASSA-PKCS1-v1_5 with SHA-256.
// The key must be at least 2048 bits.
func NewRSAVerifier(workerID string, key *rsa.PublicKey) (Verifier, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: rsa public key must not be nil", ErrInvalidKey)
	}

	if key.N.BitLen() < minRSAKeyBits {
		return nil, fmt.Errorf("%w: rsa key must be at least %d bits", ErrInvalidKey, minRSAKeyBits)
	}

	return &rsaVerifier{key: key, workerID: workerID}, nil
}

func (v *rsaVerifier) Verify(message, signature []byte) error {
	digest := sha256.Sum256(message)

	if err := rsa.VerifyPKCS1v15(v.key, crypto.SHA256, digest[:], signature); err != nil {
		return ErrSignatureInvalid
	}

	return nil
}

func (v *rsaVerifier) Algorithm() Algorithm { return AlgorithmRSASHA256 }
func (v *rsaVerifier) WorkerID() string     { return v.workerID }

// ParsePrivateKeyPEM parses a PEM-encoded RSA private key. PKCS#8 is the
// expected form; PKCS#1 ("RSA PRIVATE KEY") blocks are accepted too.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKey)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: private key is %T, want *rsa.PrivateKey", ErrInvalidKey, key)
		}

		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return key, nil
}

// ParsePublicKeyPEM parses a PEM-encoded RSA public key in
// SubjectPublicKeyInfo form.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKey)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, want *rsa.PublicKey", ErrInvalidKey, key)
	}

	return rsaKey, nil
}

// MarshalPrivateKeyPEM encodes an RSA private key as a PKCS#8 PEM block.
func MarshalPrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// MarshalPublicKeyPEM encodes an RSA public key as a SubjectPublicKeyInfo
// PEM block.
func MarshalPublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
