package sign

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"
)

// Signer is the injected signing capability. A nil Signer means "unsigned":
// call sites carry that state explicitly instead of discovering at runtime
// that key material was missing.
type Signer interface {
	Sign(data []byte) (Signature, error)
}

// KeySigner signs with a local ed25519 private key.
type KeySigner struct {
	priv ed25519.PrivateKey
}

func NewKeySigner(priv ed25519.PrivateKey) (*KeySigner, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(priv))
	}
	return &KeySigner{priv: priv}, nil
}

func (s *KeySigner) Sign(data []byte) (Signature, error) {
	return SignBytes(s.priv, data), nil
}

func (s *KeySigner) Public() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

// KeySource names where signing key material comes from: a base64 key file
// or an environment variable holding the base64 key. At most one may be set.
type KeySource struct {
	Path string
	Env  string
}

func (src KeySource) empty() bool {
	return src.Path == "" && src.Env == ""
}

// LoadSigner resolves a KeySigner from src. Returns (nil, nil) when src is
// empty: the caller proceeds unsigned on purpose, never by accident.
func LoadSigner(src KeySource) (*KeySigner, error) {
	if src.empty() {
		return nil, nil
	}
	priv, err := loadPrivateKey(src)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(priv)
}

// LoadVerifyKey resolves a public key from src, accepting either a public
// key directly or deriving one from a private key source.
func LoadVerifyKey(public, private KeySource) (ed25519.PublicKey, error) {
	if !public.empty() {
		return loadPublicKey(public)
	}
	if !private.empty() {
		priv, err := loadPrivateKey(private)
		if err != nil {
			return nil, err
		}
		return priv.Public().(ed25519.PublicKey), nil
	}
	return nil, fmt.Errorf("public key not configured")
}

func loadPrivateKey(src KeySource) (ed25519.PrivateKey, error) {
	if src.Path != "" && src.Env != "" {
		return nil, fmt.Errorf("private key source: set either path or env")
	}
	if src.Path != "" {
		return LoadPrivateKeyBase64(src.Path)
	}
	encoded := strings.TrimSpace(os.Getenv(src.Env))
	if encoded == "" {
		return nil, fmt.Errorf("private key env %s is empty", src.Env)
	}
	return ParsePrivateKeyBase64(encoded)
}

func loadPublicKey(src KeySource) (ed25519.PublicKey, error) {
	if src.Path != "" && src.Env != "" {
		return nil, fmt.Errorf("public key source: set either path or env")
	}
	if src.Path != "" {
		return LoadPublicKeyBase64(src.Path)
	}
	encoded := strings.TrimSpace(os.Getenv(src.Env))
	if encoded == "" {
		return nil, fmt.Errorf("public key env %s is empty", src.Env)
	}
	return ParsePublicKeyBase64(encoded)
}
