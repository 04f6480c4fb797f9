package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crovia/wedge/core/sign"
)

func TestRunKeysGenerate(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "keys")
	if code := runKeys([]string{"generate", "--out-dir", outDir}); code != exitOK {
		t.Fatalf("unexpected exit code")
	}

	priv, err := sign.LoadPrivateKeyBase64(filepath.Join(outDir, "wedge.key"))
	if err != nil {
		t.Fatalf("load private key: %v", err)
	}
	pub, err := sign.LoadPublicKeyBase64(filepath.Join(outDir, "wedge.pub"))
	if err != nil {
		t.Fatalf("load public key: %v", err)
	}
	signer, err := sign.NewKeySigner(priv)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if !signer.Public().Equal(pub) {
		t.Fatalf("generated keys do not pair")
	}

	info, err := os.Stat(filepath.Join(outDir, "wedge.key"))
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("private key must be 0600, got: %v", info.Mode().Perm())
	}
}

func TestRunKeysUsage(t *testing.T) {
	if code := runKeys([]string{}); code != exitOK {
		t.Fatalf("bare keys should print usage and exit OK")
	}
	if code := runKeys([]string{"rotate"}); code != exitInvalidInput {
		t.Fatalf("unknown subcommand should be invalid input")
	}
}

func TestRunKeysGenerateKeyIDFormat(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "keys")
	if code := runKeys([]string{"generate", "--out-dir", outDir}); code != exitOK {
		t.Fatalf("unexpected exit code")
	}
	pub, err := sign.LoadPublicKeyBase64(filepath.Join(outDir, "wedge.pub"))
	if err != nil {
		t.Fatalf("load public key: %v", err)
	}
	id := sign.KeyID(pub)
	if len(id) != 64 || strings.ToLower(id) != id {
		t.Fatalf("unexpected key id: %s", id)
	}
}
