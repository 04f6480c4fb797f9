package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/crovia/wedge/core/pointer"
	"github.com/crovia/wedge/core/sign"
)

type verifyOutput struct {
	OK              bool   `json:"ok"`
	Path            string `json:"path,omitempty"`
	PointerID       string `json:"pointer_id,omitempty"`
	ObservationHash string `json:"observation_hash,omitempty"`
	SignerKeyID     string `json:"signer_key_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

func runVerify(arguments []string) int {
	flagSet := flag.NewFlagSet("verify", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var jsonOutput bool
	var publicKeyPath string
	var publicKeyEnv string
	var privateKeyPath string
	var privateKeyEnv string
	var helpFlag bool

	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.StringVar(&publicKeyPath, "public-key", "", "path to base64 public key")
	flagSet.StringVar(&publicKeyEnv, "public-key-env", "", "env var containing base64 public key")
	flagSet.StringVar(&privateKeyPath, "private-key", "", "path to base64 private key (derive public)")
	flagSet.StringVar(&privateKeyEnv, "private-key-env", "", "env var containing base64 private key (derive public)")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments); err != nil {
		return writeVerifyFailure(jsonOutput, "", err, exitInvalidInput)
	}
	if helpFlag {
		fmt.Println("Usage: wedge verify <pointer.json> --public-key path [--json]")
		return exitOK
	}
	if flagSet.NArg() != 1 {
		return writeVerifyFailure(jsonOutput, "", fmt.Errorf("expected exactly one pointer path"), exitInvalidInput)
	}
	path := flagSet.Arg(0)

	ptr, err := pointer.Load(path)
	if err != nil {
		return writeVerifyFailure(jsonOutput, path, err, exitInvalidInput)
	}
	publicKey, err := sign.LoadVerifyKey(
		sign.KeySource{Path: publicKeyPath, Env: publicKeyEnv},
		sign.KeySource{Path: privateKeyPath, Env: privateKeyEnv},
	)
	if err != nil {
		return writeVerifyFailure(jsonOutput, path, err, exitInvalidInput)
	}

	ok := pointer.Verify(ptr, publicKey)
	output := verifyOutput{
		OK:              ok,
		Path:            path,
		PointerID:       ptr.PointerID,
		ObservationHash: ptr.ObservationHash,
	}
	if ptr.SignerKeyID != nil {
		output.SignerKeyID = *ptr.SignerKeyID
	}
	exitCode := exitOK
	if !ok {
		exitCode = exitVerifyFailed
		output.Error = "pointer did not verify"
	}
	if jsonOutput {
		return writeJSONOutput(output, exitCode)
	}
	if ok {
		fmt.Printf("verified: %s\n", ptr.PointerID)
	} else {
		fmt.Printf("verification failed: %s\n", ptr.PointerID)
	}
	return exitCode
}

func writeVerifyFailure(jsonOutput bool, path string, err error, fallbackExit int) int {
	exitCode := exitCodeForError(err, fallbackExit)
	if jsonOutput {
		return writeJSONOutput(verifyOutput{OK: false, Path: path, Error: err.Error()}, exitCode)
	}
	fmt.Fprintf(os.Stderr, "wedge verify: %v\n", err)
	return exitCode
}
