// Package verdict records the GREEN/RED decision of a check run for CI
// consumers: a latest snapshot, an append-only index, and GitHub Actions
// step outputs.
package verdict

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crovia/wedge/core/fsx"
	"github.com/crovia/wedge/core/observation"
)

const SchemaID = "crovia.verdict.v1"

type Verdict struct {
	Schema            string             `json:"schema"`
	Timestamp         string             `json:"timestamp"`
	Context           string             `json:"context"`
	Status            observation.Status `json:"status"`
	Reason            observation.Reason `json:"reason"`
	PrimaryFound      []string           `json:"primary_found"`
	CriticalOmissions int                `json:"critical_omissions"`
	ArtifactsChecked  []string           `json:"artifacts_checked"`
	Host              string             `json:"host"`
	RunID             string             `json:"run_id"`
}

// Build assembles the verdict record for an observation. The run ID comes
// from GITHUB_RUN_ID when present so verdicts correlate with CI runs, and a
// fresh UUID otherwise.
func Build(obs observation.Observation, checked []string, now time.Time) Verdict {
	runID := strings.TrimSpace(os.Getenv("GITHUB_RUN_ID"))
	if runID == "" {
		runID = uuid.NewString()
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	primary := obs.Evidence
	if primary == nil {
		primary = []string{}
	}
	if checked == nil {
		checked = []string{}
	}
	return Verdict{
		Schema:            SchemaID,
		Timestamp:         now.UTC().Format(time.RFC3339),
		Context:           "ci",
		Status:            obs.Status,
		Reason:            obs.Reason,
		PrimaryFound:      primary,
		CriticalOmissions: obs.Omissions,
		ArtifactsChecked:  checked,
		Host:              host,
		RunID:             runID,
	}
}

// Write persists v under <dir>/verdicts: an atomically replaced
// verdict_latest.json plus one compact line appended to verdict_index.jsonl.
// Returns the latest-snapshot path.
func Write(v Verdict, dir string) (string, error) {
	base := filepath.Join(dir, "verdicts")
	if err := os.MkdirAll(base, 0o750); err != nil {
		return "", fmt.Errorf("create verdict directory: %w", err)
	}

	indented, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode verdict: %w", err)
	}
	indented = append(indented, '\n')
	latestPath := filepath.Join(base, "verdict_latest.json")
	if err := fsx.WriteFileAtomic(latestPath, indented, 0o600); err != nil {
		return "", fmt.Errorf("write latest verdict: %w", err)
	}

	compact, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode verdict line: %w", err)
	}
	indexPath := filepath.Join(base, "verdict_index.jsonl")
	if err := fsx.AppendLine(indexPath, compact, 0o600); err != nil {
		return "", fmt.Errorf("append verdict index: %w", err)
	}
	return latestPath, nil
}

// WriteGitHubOutput appends the machine-readable verdict summary to the
// GITHUB_OUTPUT file when the environment provides one. Outside GitHub
// Actions this is a no-op.
func WriteGitHubOutput(v Verdict, latestPath string) error {
	outputPath := strings.TrimSpace(os.Getenv("GITHUB_OUTPUT"))
	if outputPath == "" {
		return nil
	}
	lines := []string{
		"verdict=" + string(v.Status),
		"reason=" + string(v.Reason),
		"primary=" + strings.Join(v.PrimaryFound, ","),
		fmt.Sprintf("critical_omissions=%d", v.CriticalOmissions),
		"verdict_path=" + latestPath,
	}
	if err := fsx.AppendLine(outputPath, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return fmt.Errorf("write github output: %w", err)
	}
	return nil
}
