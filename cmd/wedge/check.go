package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/crovia/wedge/core/checkrun"
	"github.com/crovia/wedge/core/identity"
	"github.com/crovia/wedge/core/observation"
	"github.com/crovia/wedge/core/projectconfig"
	"github.com/crovia/wedge/core/sign"
)

type checkOutput struct {
	OK                bool     `json:"ok"`
	Status            string   `json:"status,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	EvidenceFound     []string `json:"evidence_found,omitempty"`
	CriticalOmissions int      `json:"critical_omissions"`
	CFICCertified     bool     `json:"cfic_certified"`
	PointerID         string   `json:"pointer_id,omitempty"`
	RegistryEligible  bool     `json:"registry_eligible"`
	PointerPath       string   `json:"pointer_path,omitempty"`
	BadgeSVG          string   `json:"badge_svg,omitempty"`
	VerdictPath       string   `json:"verdict_path,omitempty"`
	Error             string   `json:"error,omitempty"`
}

func runCheck(arguments []string) int {
	flagSet := flag.NewFlagSet("check", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var root string
	var configPath string
	var outputDir string
	var mode string
	var jsonOutput bool
	var noBadge bool
	var noPointer bool
	var privateKeyPath string
	var privateKeyEnv string
	var repository string
	var commitSHA string
	var branch string
	var verbose bool
	var helpFlag bool

	flagSet.StringVar(&root, "root", ".", "repository root to scan")
	flagSet.StringVar(&configPath, "config", "", "project config path (default <root>/.crovia/config.yaml)")
	flagSet.StringVar(&outputDir, "output", "", "output directory for badge, pointer, and verdict")
	flagSet.StringVar(&mode, "mode", "", "verdict mode: warn|fail")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&noBadge, "no-badge", false, "skip badge generation")
	flagSet.BoolVar(&noPointer, "no-pointer", false, "skip pointer generation")
	flagSet.StringVar(&privateKeyPath, "private-key", "", "path to base64 signing key")
	flagSet.StringVar(&privateKeyEnv, "private-key-env", "", "env var containing base64 signing key")
	flagSet.StringVar(&repository, "repository", "", "repository slug override")
	flagSet.StringVar(&commitSHA, "commit", "", "commit sha override")
	flagSet.StringVar(&branch, "branch", "", "branch override")
	flagSet.BoolVar(&verbose, "verbose", false, "debug logging")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeCheckFailure(jsonOutput, err, exitInvalidInput)
	}
	if helpFlag {
		fmt.Println("Usage: wedge check [--root dir] [--mode warn|fail] [--private-key path] [--json]")
		return exitOK
	}

	allowMissing := configPath == ""
	if allowMissing {
		configPath = filepath.Join(root, projectconfig.DefaultPath)
	}
	cfg, err := projectconfig.Load(configPath, allowMissing)
	if err != nil {
		return writeCheckFailure(jsonOutput, err, exitInvalidInput)
	}

	resolvedMode := cfg.ResolvedMode()
	if mode != "" {
		resolvedMode = strings.ToLower(strings.TrimSpace(mode))
		if resolvedMode != projectconfig.ModeWarn && resolvedMode != projectconfig.ModeFail {
			return writeCheckFailure(jsonOutput, fmt.Errorf("mode must be warn or fail, got %q", mode), exitInvalidInput)
		}
	}
	if outputDir == "" {
		outputDir = filepath.Join(root, cfg.ResolvedOutputDir())
	}

	keySource := sign.KeySource{Path: privateKeyPath, Env: privateKeyEnv}
	if keySource.Path == "" && keySource.Env == "" {
		keySource = sign.KeySource{Path: cfg.Pointer.PrivateKey, Env: cfg.Pointer.PrivateKeyEnv}
	}
	keySigner, err := sign.LoadSigner(keySource)
	if err != nil {
		return writeCheckFailure(jsonOutput, err, exitInvalidInput)
	}

	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "wedge",
		Level:  level,
		Output: os.Stderr,
	})

	opts := checkrun.Options{
		Root:            root,
		OutputDir:       outputDir,
		Identity:        identityFromFlags(repository, commitSHA, branch),
		GenerateBadge:   cfg.BadgeEnabled() && !noBadge,
		GeneratePointer: cfg.PointerEnabled() && !noPointer,
		Logger:          logger,
	}
	// sign.Signer is an interface; assign only a non-nil concrete signer.
	if keySigner != nil {
		opts.Signer = keySigner
	}

	summary, err := checkrun.Run(opts)
	if err != nil {
		return writeCheckFailure(jsonOutput, err, exitInternalFailure)
	}

	exitCode := exitOK
	if summary.Observation.Status == observation.StatusRed && resolvedMode == projectconfig.ModeFail {
		exitCode = exitRedVerdict
	}

	if jsonOutput {
		output := checkOutput{
			OK:                summary.Observation.Status == observation.StatusGreen,
			Status:            string(summary.Observation.Status),
			Reason:            string(summary.Observation.Reason),
			EvidenceFound:     summary.Observation.Evidence,
			CriticalOmissions: summary.Observation.Omissions,
			CFICCertified:     summary.Scan.CFICCertified,
			VerdictPath:       summary.VerdictPath,
		}
		if summary.Pointer != nil {
			output.PointerID = summary.Pointer.PointerID
			output.RegistryEligible = summary.Pointer.RegistryEligible
			output.PointerPath = summary.PointerPath
		}
		if summary.Badge != nil {
			output.BadgeSVG = summary.Badge.BadgeSVG
		}
		return writeJSONOutput(output, exitCode)
	}

	printCheckSummary(summary)
	return exitCode
}

func identityFromFlags(repository, commitSHA, branch string) identity.Context {
	ctx := identity.Context{Repository: strings.TrimSpace(repository)}
	if trimmed := strings.TrimSpace(commitSHA); trimmed != "" {
		ctx.Commit = &trimmed
	}
	if trimmed := strings.TrimSpace(branch); trimmed != "" {
		ctx.Branch = &trimmed
	}
	return ctx
}

func writeCheckFailure(jsonOutput bool, err error, fallbackExit int) int {
	exitCode := exitCodeForError(err, fallbackExit)
	if jsonOutput {
		return writeJSONOutput(checkOutput{OK: false, Error: err.Error()}, exitCode)
	}
	fmt.Fprintf(os.Stderr, "wedge check: %v\n", err)
	return exitCode
}

func printCheckSummary(summary checkrun.Summary) {
	obs := summary.Observation

	fmt.Println("\n────────────────────────────────────────")
	if obs.Reason == observation.ReasonCertified {
		fmt.Printf("CROVIA · EVIDENCE %s (CERTIFIED)\n", obs.Status)
	} else {
		fmt.Printf("CROVIA · EVIDENCE %s\n", obs.Status)
	}
	fmt.Println("────────────────────────────────────────")

	switch obs.Reason {
	case observation.ReasonCertified:
		fmt.Println("Repository has CFIC-certified evidence.")
	case observation.ReasonRecorded:
		fmt.Println("Auditable training evidence detected.")
	case observation.ReasonAbsent:
		fmt.Println("No auditable training evidence detected.")
	case observation.ReasonCompromised:
		fmt.Println("Critical omissions detected.")
	}

	fmt.Printf("\nEvidence found: %d\n", len(obs.Evidence))
	fmt.Printf("Critical omissions: %d\n", obs.Omissions)
	if summary.Badge != nil {
		fmt.Printf("Badge: %s\n", summary.Badge.BadgeSVG)
	}
	if summary.Pointer != nil {
		fmt.Printf("Pointer: %s\n", summary.Pointer.PointerID)
		fmt.Printf("Hash: %s...\n", summary.Pointer.ObservationHash[:16])
		fmt.Printf("Registry eligible: %t\n", summary.Pointer.RegistryEligible)
	}
	fmt.Printf("Verdict: %s\n", summary.VerdictPath)
	fmt.Println("\nVerdict recorded.")
}
