package pointer

import (
	"crypto/ed25519"

	"github.com/crovia/wedge/core/jcs"
	"github.com/crovia/wedge/core/sign"
)

// Verify checks a pointer against a public key. It is a query, not an
// assertion: every failure mode, including an unusable key or encoding
// failure, reports false rather than an error. An unsigned pointer never
// verifies.
func Verify(p SignedPointer, pub ed25519.PublicKey) bool {
	if p.Signature == nil || *p.Signature == "" {
		return false
	}
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	canonical, err := p.observationFields().CanonicalBytes()
	if err != nil {
		return false
	}
	// Stored hash and declared fields must be mutually consistent before
	// the signature is even considered.
	if jcs.Sum256Hex(canonical) != p.ObservationHash {
		return false
	}

	keyID := ""
	if p.SignerKeyID != nil {
		keyID = *p.SignerKeyID
	}
	sig := sign.Signature{
		Alg:   sign.AlgEd25519,
		KeyID: keyID,
		Sig:   *p.Signature,
	}
	ok, err := sign.VerifyBytes(pub, sig, canonical)
	if err != nil {
		return false
	}
	return ok
}
