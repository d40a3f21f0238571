package reqsign

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxSkewMS is the freshness window in milliseconds applied when
// the configuration leaves max_skew_ms unset.
const DefaultMaxSkewMS = 300000

// WorkerKey names one worker identity and its verification key on the
// server side.
type WorkerKey struct {
	// WorkerID is the identity the key belongs to.
	WorkerID string `yaml:"worker_id"`

	// PublicKey is an inline PEM-encoded public key. Takes precedence
	// over PublicKeyFile.
	PublicKey string `yaml:"public_key,omitempty"`

	// PublicKeyFile is a path to a PEM-encoded public key.
	PublicKeyFile string `yaml:"public_key_file,omitempty"`
}

// Config is the YAML configuration surface for both sides of the
// protocol. A worker process fills WorkerID and the private key fields;
// a server process fills Workers. Either side may set MaxSkewMS.
type Config struct {
	// WorkerID is this process's identity when signing.
	WorkerID string `yaml:"worker_id,omitempty"`

	// PrivateKey is an inline PEM-encoded private key (PKCS#8). Takes
	// precedence over PrivateKeyFile.
	PrivateKey string `yaml:"private_key,omitempty"`

	// PrivateKeyFile is a path to a PEM-encoded private key.
	PrivateKeyFile string `yaml:"private_key_file,omitempty"`

	// Workers lists the verification keys known to a server.
	Workers []WorkerKey `yaml:"workers,omitempty"`

	// MaxSkewMS is the freshness window in milliseconds. Zero means
	// DefaultMaxSkewMS.
	MaxSkewMS int64 `yaml:"max_skew_ms,omitempty"`

	// NonceCacheSize bounds the replay cache. Zero means
	// DefaultNonceCacheSize; negative disables replay detection.
	NonceCacheSize int `yaml:"nonce_cache_size,omitempty"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reqsign: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("reqsign: parse config: %w", err)
	}

	return &cfg, nil
}

// MaxSkew returns the configured freshness window as a duration.
func (c *Config) MaxSkew() time.Duration {
	if c.MaxSkewMS <= 0 {
		return DefaultMaxSkewMS * time.Millisecond
	}

	return time.Duration(c.MaxSkewMS) * time.Millisecond
}

// Signer builds the worker-side Signer from the configured private key.
func (c *Config) Signer() (Signer, error) {
	pemData, err := keyMaterial(c.PrivateKey, c.PrivateKeyFile)
	if err != nil {
		return nil, err
	}

	key, err := ParsePrivateKeyPEM(pemData)
	if err != nil {
		return nil, err
	}

	return NewRSASigner(c.WorkerID, key)
}

// Resolver builds the server-side KeyResolver from the configured worker
// keys. All keys are parsed up front so a bad key fails at startup, not
// on the first request.
func (c *Config) Resolver() (KeyResolver, error) {
	verifiers := make(map[string]Verifier, len(c.Workers))

	for _, w := range c.Workers {
		pemData, err := keyMaterial(w.PublicKey, w.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("worker %q: %w", w.WorkerID, err)
		}

		key, err := ParsePublicKeyPEM(pemData)
		if err != nil {
			return nil, fmt.Errorf("worker %q: %w", w.WorkerID, err)
		}

		verifier, err := NewRSAVerifier(w.WorkerID, key)
		if err != nil {
			return nil, fmt.Errorf("worker %q: %w", w.WorkerID, err)
		}

		verifiers[w.WorkerID] = verifier
	}

	return func(workerID string) (Verifier, error) {
		verifier, ok := verifiers[workerID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown worker %q", ErrKeyUnavailable, workerID)
		}

		return verifier, nil
	}, nil
}

// VerifyConfig builds a complete server-side verification configuration:
// resolver, freshness window and replay cache sized to the window.
func (c *Config) VerifyConfig() (VerifyConfig, error) {
	resolver, err := c.Resolver()
	if err != nil {
		return VerifyConfig{}, err
	}

	cfg := VerifyConfig{
		Resolver: resolver,
		MaxSkew:  c.MaxSkew(),
	}

	if c.NonceCacheSize >= 0 {
		cfg.Nonces = NewNonceCache(c.NonceCacheSize, c.MaxSkew())
	}

	return cfg, nil
}

// keyMaterial returns inline PEM data when set, otherwise the contents
// of the given file.
func keyMaterial(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}

	if file == "" {
		return nil, fmt.Errorf("%w: no key configured", ErrInvalidKey)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return data, nil
}
