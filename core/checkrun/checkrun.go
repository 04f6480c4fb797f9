// Package checkrun runs the evidence pipeline end to end: scan, build the
// observation, render the badge, generate and persist the signed pointer,
// and record the verdict. One invocation is one sequential pass; the run
// either completes or fails outright.
package checkrun

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/crovia/wedge/core/badge"
	"github.com/crovia/wedge/core/identity"
	"github.com/crovia/wedge/core/observation"
	"github.com/crovia/wedge/core/pointer"
	"github.com/crovia/wedge/core/scan"
	"github.com/crovia/wedge/core/sign"
	"github.com/crovia/wedge/core/verdict"
)

type Options struct {
	Root      string
	OutputDir string
	Identity  identity.Context
	// Signer is nil for an unsigned run. A signer that fails aborts the
	// run instead of silently downgrading the pointer.
	Signer          sign.Signer
	GenerateBadge   bool
	GeneratePointer bool
	Logger          hclog.Logger
	Now             time.Time
}

// Summary is the explicit result threaded through the pipeline; no state
// crosses steps through the process environment.
type Summary struct {
	Observation observation.Observation
	Scan        scan.Result
	Badge       *badge.Metadata
	Pointer     *pointer.SignedPointer
	PointerPath string
	Verdict     verdict.Verdict
	VerdictPath string
}

func Run(opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = ".crovia"
	}

	logger.Debug("scanning repository", "root", root)
	scanResult, err := scan.Run(root)
	if err != nil {
		return Summary{}, fmt.Errorf("scan evidence: %w", err)
	}
	if scanResult.MalformedGapEntries > 0 {
		logger.Warn("skipped malformed gap index lines", "count", scanResult.MalformedGapEntries)
	}

	id := identity.Resolve(root, opts.Identity)
	obs := observation.Build(scanResult, id, now)
	logger.Info("observation built",
		"status", string(obs.Status),
		"reason", string(obs.Reason),
		"evidence", len(obs.Evidence),
		"critical_omissions", obs.Omissions)

	summary := Summary{Observation: obs, Scan: scanResult}

	if opts.GenerateBadge {
		meta, err := badge.Generate(obs.Status, obs.Reason, scanResult.CFICCertified, outputDir, now)
		if err != nil {
			return Summary{}, fmt.Errorf("generate badge: %w", err)
		}
		logger.Debug("badge written", "path", meta.BadgeSVG)
		summary.Badge = &meta
	}

	if opts.GeneratePointer {
		ptr, err := pointer.Generate(obs, opts.Signer)
		if err != nil {
			return Summary{}, err
		}
		path, err := pointer.Save(ptr, outputDir)
		if err != nil {
			return Summary{}, err
		}
		logger.Info("pointer recorded",
			"pointer_id", ptr.PointerID,
			"registry_eligible", ptr.RegistryEligible,
			"path", path)
		summary.Pointer = &ptr
		summary.PointerPath = path
	}

	v := verdict.Build(obs, scanResult.Checked, now)
	verdictPath, err := verdict.Write(v, outputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("record verdict: %w", err)
	}
	if err := verdict.WriteGitHubOutput(v, verdictPath); err != nil {
		return Summary{}, err
	}
	logger.Debug("verdict recorded", "path", verdictPath, "run_id", v.RunID)
	summary.Verdict = v
	summary.VerdictPath = verdictPath
	return summary, nil
}
