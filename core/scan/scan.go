// Package scan enumerates training-provenance evidence artifacts in a
// repository tree and summarizes the gap index.
package scan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CriticalSeverity is the gap-index severity threshold at or above which a
// recorded gap counts as a critical omission.
const CriticalSeverity = 0.8

// PrimaryArtifacts are the evidence files checked at the repository root.
var PrimaryArtifacts = []string{
	"EVIDENCE.json",
	"trust_bundle.v1.json",
	"cep_capsule.v1.json",
	"crovia_manifest.json",
}

// CFICMarkers elevate a GREEN verdict to certified status when present.
var CFICMarkers = []string{
	".crovia/cfic_certificate.json",
	"CFIC.json",
}

const (
	receiptsLabel = "receipts*.ndjson"
	gapIndexPath  = "gaps/gap_index.jsonl"
)

// Result is the scanner's output contract: found and checked artifact
// labels (sorted, deduplicated), the critical omission count, and the CFIC
// certification flag. MalformedGapEntries counts gap-index lines that were
// skipped because they did not parse.
type Result struct {
	FoundPrimary        []string
	Checked             []string
	CriticalOmissions   int
	CFICCertified       bool
	MalformedGapEntries int
}

// Run scans the tree rooted at root. Missing files are ordinary findings,
// not errors; only the severity summary of an existing gap index can fail.
func Run(root string) (Result, error) {
	var result Result
	found := map[string]bool{}
	checked := map[string]bool{}

	for _, artifact := range PrimaryArtifacts {
		checked[artifact] = true
		if fileExists(filepath.Join(root, artifact)) {
			found[artifact] = true
		}
	}

	if hasReceiptsLog(root) {
		found[receiptsLabel] = true
		checked[receiptsLabel] = true
	}

	for _, marker := range CFICMarkers {
		if fileExists(filepath.Join(root, marker)) {
			result.CFICCertified = true
			found["[CFIC] "+marker] = true
			break
		}
	}

	checked[gapIndexPath] = true
	critical, malformed, err := countCriticalGaps(filepath.Join(root, gapIndexPath))
	if err != nil {
		return Result{}, err
	}
	result.CriticalOmissions = critical
	result.MalformedGapEntries = malformed

	result.FoundPrimary = sortedKeys(found)
	result.Checked = sortedKeys(checked)
	return result, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// hasReceiptsLog reports whether any receipts*.ndjson file exists anywhere
// under root.
func hasReceiptsLog(root string) bool {
	foundReceipts := false
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if strings.HasPrefix(name, "receipts") && strings.HasSuffix(name, ".ndjson") {
			foundReceipts = true
			return filepath.SkipAll
		}
		return nil
	})
	return foundReceipts
}

type gapEntry struct {
	Severity float64 `json:"severity"`
}

// countCriticalGaps tallies gap-index lines with severity at or above the
// critical threshold. Unparseable lines are skipped and counted, never
// fatal: a single corrupt entry must not abort the scan.
func countCriticalGaps(path string) (critical, malformed int, err error) {
	// #nosec G304 -- gap index path is derived from the scanned root.
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("open gap index: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry gapEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			malformed++
			continue
		}
		if entry.Severity >= CriticalSeverity {
			critical++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("read gap index: %w", err)
	}
	return critical, malformed, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
