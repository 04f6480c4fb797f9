package main

import (
	"fmt"
	"os"

	coreerrors "github.com/crovia/wedge/core/errors"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

const (
	exitOK              = 0
	exitRedVerdict      = 1
	exitInvalidInput    = 2
	exitVerifyFailed    = 3
	exitSigningFailed   = 4
	exitInternalFailure = 5
)

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	if len(arguments) < 2 {
		printUsage()
		return exitOK
	}
	switch arguments[1] {
	case "check":
		return runCheck(arguments[2:])
	case "verify":
		return runVerify(arguments[2:])
	case "keys":
		return runKeys(arguments[2:])
	case "version", "--version", "-v":
		fmt.Println("wedge", version)
		return exitOK
	default:
		printUsage()
		return exitInvalidInput
	}
}

func printUsage() {
	fmt.Println(`wedge - training evidence verdicts and signed observation pointers

Usage:
  wedge check [flags]          scan a repository and record badge, pointer, and verdict
  wedge verify <pointer> [flags]  verify a signed pointer offline
  wedge keys generate [flags]  generate an ed25519 signing keypair
  wedge version                print the CLI version

Run a command with -help for its flags.`)
}

func exitCodeForError(err error, fallbackExit int) int {
	if err == nil {
		return exitOK
	}
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		return exitInvalidInput
	case coreerrors.CategoryVerification:
		return exitVerifyFailed
	case coreerrors.CategorySigning:
		return exitSigningFailed
	case coreerrors.CategoryIOFailure, coreerrors.CategoryDependencyMissing, coreerrors.CategoryInternalFailure:
		return exitInternalFailure
	}
	return fallbackExit
}
