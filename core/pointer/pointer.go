// Package pointer derives signed observation pointers: canonical, hashed,
// optionally ed25519-signed records of an evidence observation that can be
// verified offline and submitted to a registry.
package pointer

import (
	"fmt"
	"strings"
	"time"

	coreerrors "github.com/crovia/wedge/core/errors"
	"github.com/crovia/wedge/core/jcs"
	"github.com/crovia/wedge/core/observation"
	"github.com/crovia/wedge/core/sign"
)

const (
	SchemaID = "crovia.pointer.v1"
	Version  = "1.0.0"
)

// idHashChars is how much of the observation hash enters the pointer ID.
// Twelve hex chars is not collision-resistant; the ID is a best-effort
// identifier, not a uniqueness guarantee.
const idHashChars = 12

// SignedPointer is the persisted record. Every key is always present on the
// wire; optional fields are explicit nulls, never omitted.
type SignedPointer struct {
	PointerID string `json:"pointer_id"`
	Schema    string `json:"schema"`
	Version   string `json:"version"`

	ObservedAt string  `json:"observed_at"`
	Repository string  `json:"repository"`
	CommitSHA  *string `json:"commit_sha"`
	Branch     *string `json:"branch"`

	Status            observation.Status `json:"status"`
	Reason            observation.Reason `json:"reason"`
	EvidenceFound     []string           `json:"evidence_found"`
	CriticalOmissions int                `json:"critical_omissions"`

	ObservationHash string  `json:"observation_hash"`
	Signature       *string `json:"signature"`
	SignerKeyID     *string `json:"signer_key_id"`

	RegistryEligible bool `json:"registry_eligible"`
}

// Generate derives the pointer for obs. When signer is non-nil its failure
// propagates as a signing_failed error; it never silently downgrades to an
// unsigned pointer. RegistryEligible holds exactly when a signature was
// produced.
func Generate(obs observation.Observation, signer sign.Signer) (SignedPointer, error) {
	canonical, err := obs.CanonicalBytes()
	if err != nil {
		return SignedPointer{}, err
	}
	hash := jcs.Sum256Hex(canonical)

	capturedAt, err := time.Parse(time.RFC3339, obs.Timestamp)
	if err != nil {
		return SignedPointer{}, fmt.Errorf("parse observation timestamp: %w", err)
	}
	pointerID := fmt.Sprintf("PTR-%s-%s",
		capturedAt.UTC().Format("20060102"),
		strings.ToUpper(hash[:idHashChars]))

	var signature *string
	var signerKeyID *string
	if signer != nil {
		sig, err := signer.Sign(canonical)
		if err != nil {
			return SignedPointer{}, coreerrors.Wrap(
				fmt.Errorf("sign observation: %w", err),
				coreerrors.CategorySigning, coreerrors.CodeSigningFailed,
				"check signing key material or drop the signer to emit an unsigned pointer", false)
		}
		signature = &sig.Sig
		signerKeyID = &sig.KeyID
	}

	evidence := obs.Evidence
	if evidence == nil {
		evidence = []string{}
	}

	return SignedPointer{
		PointerID:         pointerID,
		Schema:            SchemaID,
		Version:           Version,
		ObservedAt:        obs.Timestamp,
		Repository:        obs.Repository,
		CommitSHA:         obs.Commit,
		Branch:            obs.Branch,
		Status:            obs.Status,
		Reason:            obs.Reason,
		EvidenceFound:     evidence,
		CriticalOmissions: obs.Omissions,
		ObservationHash:   hash,
		Signature:         signature,
		SignerKeyID:       signerKeyID,
		RegistryEligible:  signature != nil,
	}, nil
}

// observationFields rebuilds the hashed observation from the pointer's own
// declared fields. Verification is self-contained: it never consults live
// scan state.
func (p SignedPointer) observationFields() observation.Observation {
	return observation.Observation{
		Timestamp:  p.ObservedAt,
		Repository: p.Repository,
		Commit:     p.CommitSHA,
		Status:     p.Status,
		Reason:     p.Reason,
		Evidence:   p.EvidenceFound,
		Omissions:  p.CriticalOmissions,
	}
}
