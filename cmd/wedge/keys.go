package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crovia/wedge/core/fsx"
	"github.com/crovia/wedge/core/sign"
)

type keysOutput struct {
	OK             bool   `json:"ok"`
	KeyID          string `json:"key_id,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	PublicKeyPath  string `json:"public_key_path,omitempty"`
	Error          string `json:"error,omitempty"`
}

func runKeys(arguments []string) int {
	if len(arguments) == 0 || arguments[0] != "generate" {
		fmt.Println("Usage: wedge keys generate [--out-dir dir] [--json]")
		if len(arguments) == 0 {
			return exitOK
		}
		return exitInvalidInput
	}

	flagSet := flag.NewFlagSet("keys generate", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var outDir string
	var jsonOutput bool
	var helpFlag bool

	flagSet.StringVar(&outDir, "out-dir", ".crovia/keys", "directory for generated keys")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit JSON output")
	flagSet.BoolVar(&helpFlag, "help", false, "show help")

	if err := flagSet.Parse(arguments[1:]); err != nil {
		return writeKeysFailure(jsonOutput, err)
	}
	if helpFlag {
		fmt.Println("Usage: wedge keys generate [--out-dir dir] [--json]")
		return exitOK
	}

	kp, err := sign.GenerateKeyPair()
	if err != nil {
		return writeKeysFailure(jsonOutput, fmt.Errorf("generate keypair: %w", err))
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return writeKeysFailure(jsonOutput, fmt.Errorf("create key directory: %w", err))
	}

	privatePath := filepath.Join(outDir, "wedge.key")
	publicPath := filepath.Join(outDir, "wedge.pub")
	privateEncoded := base64.StdEncoding.EncodeToString(kp.Private) + "\n"
	publicEncoded := base64.StdEncoding.EncodeToString(kp.Public) + "\n"
	if err := fsx.WriteFileAtomic(privatePath, []byte(privateEncoded), 0o600); err != nil {
		return writeKeysFailure(jsonOutput, fmt.Errorf("write private key: %w", err))
	}
	if err := fsx.WriteFileAtomic(publicPath, []byte(publicEncoded), 0o600); err != nil {
		return writeKeysFailure(jsonOutput, fmt.Errorf("write public key: %w", err))
	}

	output := keysOutput{
		OK:             true,
		KeyID:          sign.KeyID(kp.Public),
		PrivateKeyPath: privatePath,
		PublicKeyPath:  publicPath,
	}
	if jsonOutput {
		return writeJSONOutput(output, exitOK)
	}
	fmt.Printf("key id: %s\n", output.KeyID)
	fmt.Printf("private key: %s\n", privatePath)
	fmt.Printf("public key: %s\n", publicPath)
	return exitOK
}

func writeKeysFailure(jsonOutput bool, err error) int {
	if jsonOutput {
		return writeJSONOutput(keysOutput{OK: false, Error: err.Error()}, exitInternalFailure)
	}
	fmt.Fprintf(os.Stderr, "wedge keys: %v\n", err)
	return exitInternalFailure
}
