// Package observation turns a scan result plus identity context into the
// evidence observation record that gets hashed, signed, and pointed at.
package observation

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/crovia/wedge/core/identity"
	"github.com/crovia/wedge/core/jcs"
	"github.com/crovia/wedge/core/scan"
)

type Status string

const (
	StatusGreen Status = "GREEN"
	StatusRed   Status = "RED"
)

type Reason string

const (
	ReasonRecorded    Reason = "evidence_recorded"
	ReasonAbsent      Reason = "evidence_absent"
	ReasonCompromised Reason = "evidence_compromised"
	ReasonCertified   Reason = "cfic_certified"
)

// Observation is one captured evidence verdict. Evidence is always sorted;
// Commit and Branch are nil when unknown and render as explicit nulls.
type Observation struct {
	Timestamp  string
	Repository string
	Commit     *string
	Branch     *string
	Status     Status
	Reason     Reason
	Evidence   []string
	Omissions  int
}

// Build derives the verdict for a scan result. Precedence is strict: no
// evidence beats critical omissions beats certification beats plain
// recording. Critical omissions force RED even when artifacts were found.
func Build(result scan.Result, id identity.Context, now time.Time) Observation {
	evidence := make([]string, len(result.FoundPrimary))
	copy(evidence, result.FoundPrimary)
	sort.Strings(evidence)

	status := StatusGreen
	reason := ReasonRecorded
	switch {
	case len(evidence) == 0:
		status = StatusRed
		reason = ReasonAbsent
	case result.CriticalOmissions > 0:
		status = StatusRed
		reason = ReasonCompromised
	case result.CFICCertified:
		reason = ReasonCertified
	}

	repository := id.Repository
	if repository == "" {
		repository = identity.Sentinel
	}

	return Observation{
		Timestamp:  now.UTC().Format(time.RFC3339),
		Repository: repository,
		Commit:     id.Commit,
		Branch:     id.Branch,
		Status:     status,
		Reason:     reason,
		Evidence:   evidence,
		Omissions:  result.CriticalOmissions,
	}
}

// canonicalFields is the fixed hashed field set. Branch is identity
// metadata on the pointer, not part of the hash input.
type canonicalFields struct {
	Timestamp  string   `json:"timestamp"`
	Repository string   `json:"repository"`
	Commit     *string  `json:"commit"`
	Status     Status   `json:"status"`
	Reason     Reason   `json:"reason"`
	Evidence   []string `json:"evidence"`
	Omissions  int      `json:"omissions"`
}

// CanonicalBytes returns the RFC 8785 canonical encoding of the hashed
// field set. This is the sole input to both hashing and signing: producer
// and verifier must derive byte-identical output from equal field values.
func (o Observation) CanonicalBytes() ([]byte, error) {
	evidence := o.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	encoded, err := json.Marshal(canonicalFields{
		Timestamp:  o.Timestamp,
		Repository: o.Repository,
		Commit:     o.Commit,
		Status:     o.Status,
		Reason:     o.Reason,
		Evidence:   evidence,
		Omissions:  o.Omissions,
	})
	if err != nil {
		return nil, fmt.Errorf("encode observation: %w", err)
	}
	canonical, err := jcs.CanonicalizeJSON(encoded)
	if err != nil {
		return nil, fmt.Errorf("canonicalize observation: %w", err)
	}
	return canonical, nil
}

// Digest returns the lowercase hex sha256 of the canonical encoding.
func (o Observation) Digest() (string, error) {
	canonical, err := o.CanonicalBytes()
	if err != nil {
		return "", err
	}
	return jcs.Sum256Hex(canonical), nil
}
