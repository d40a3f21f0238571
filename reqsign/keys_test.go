package reqsign

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeyOnce sync.Once
	testKeyRSA  *rsa.PrivateKey
)

// testKey returns a shared 2048-bit RSA key so each test does not pay
// for key generation.
func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}

		testKeyRSA = key
	})

	return testKeyRSA
}

func TestRSASignerVerifier(t *testing.T) {
	key := testKey(t)

	t.Run("sign and verify round trip", func(t *testing.T) {
		signer, err := NewRSASigner("billing-worker", key)
		require.NoError(t, err)

		verifier, err := NewRSAVerifier("billing-worker", &key.PublicKey)
		require.NoError(t, err)

		message := []byte("rsa test message")
		sig, err := signer.Sign(message)
		require.NoError(t, err)

		assert.NoError(t, verifier.Verify(message, sig))
		assert.Equal(t, AlgorithmRSASHA256, signer.Algorithm())
		assert.Equal(t, AlgorithmRSASHA256, verifier.Algorithm())
		assert.Equal(t, "billing-worker", signer.WorkerID())
		assert.Equal(t, "billing-worker", verifier.WorkerID())
	})

	t.Run("wrong message fails verification", func(t *testing.T) {
		signer, err := NewRSASigner("w", key)
		require.NoError(t, err)

		verifier, err := NewRSAVerifier("w", &key.PublicKey)
		require.NoError(t, err)

		sig, err := signer.Sign([]byte("original"))
		require.NoError(t, err)

		assert.ErrorIs(t, verifier.Verify([]byte("tampered"), sig), ErrSignatureInvalid)
	})

	t.Run("nil key rejected", func(t *testing.T) {
		_, err := NewRSASigner("w", nil)
		assert.ErrorIs(t, err, ErrInvalidKey)

		_, err = NewRSAVerifier("w", nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("small key rejected", func(t *testing.T) {
		smallKey, err := rsa.GenerateKey(rand.Reader, 1024)
		require.NoError(t, err)

		_, err = NewRSASigner("w", smallKey)
		assert.ErrorIs(t, err, ErrInvalidKey)

		_, err = NewRSAVerifier("w", &smallKey.PublicKey)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestParsePrivateKeyPEM(t *testing.T) {
	key := testKey(t)

	t.Run("pkcs8 round trip", func(t *testing.T) {
		pemData, err := MarshalPrivateKeyPEM(key)
		require.NoError(t, err)

		parsed, err := ParsePrivateKeyPEM(pemData)
		require.NoError(t, err)
		assert.True(t, key.Equal(parsed))
	})

	t.Run("pkcs1 accepted", func(t *testing.T) {
		pemData := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})

		parsed, err := ParsePrivateKeyPEM(pemData)
		require.NoError(t, err)
		assert.True(t, key.Equal(parsed))
	})

	t.Run("not pem", func(t *testing.T) {
		_, err := ParsePrivateKeyPEM([]byte("not a key"))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("wrong key type", func(t *testing.T) {
		_, edKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		der, err := x509.MarshalPKCS8PrivateKey(edKey)
		require.NoError(t, err)

		pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

		_, err = ParsePrivateKeyPEM(pemData)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestParsePublicKeyPEM(t *testing.T) {
	key := testKey(t)

	t.Run("spki round trip", func(t *testing.T) {
		pemData, err := MarshalPublicKeyPEM(&key.PublicKey)
		require.NoError(t, err)

		parsed, err := ParsePublicKeyPEM(pemData)
		require.NoError(t, err)
		assert.True(t, key.PublicKey.Equal(parsed))
	})

	t.Run("not pem", func(t *testing.T) {
		_, err := ParsePublicKeyPEM([]byte("garbage"))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("wrong key type", func(t *testing.T) {
		edPub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		der, err := x509.MarshalPKIXPublicKey(edPub)
		require.NoError(t, err)

		pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

		_, err = ParsePublicKeyPEM(pemData)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}
