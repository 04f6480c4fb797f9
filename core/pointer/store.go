package pointer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	coreerrors "github.com/crovia/wedge/core/errors"
	"github.com/crovia/wedge/core/fsx"
	"github.com/crovia/wedge/core/schema"
	"github.com/crovia/wedge/core/schema/validate"
)

// Save persists p as indented JSON at <dir>/<pointer_id>.json and returns
// the path. The write goes through a temp file and rename, so a concurrent
// writer of the same content-derived ID is a harmless last-writer-wins race
// and a failed write never leaves a partial file visible. The store is
// append-only: there is no update or delete.
func Save(p SignedPointer, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", coreerrors.Wrap(
			fmt.Errorf("create pointer directory: %w", err),
			coreerrors.CategoryIOFailure, coreerrors.CodeStoreWriteFailed, "", true)
	}
	encoded, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode pointer: %w", err)
	}
	encoded = append(encoded, '\n')
	path := filepath.Join(dir, p.PointerID+".json")
	if err := fsx.WriteFileAtomic(path, encoded, 0o600); err != nil {
		return "", coreerrors.Wrap(
			fmt.Errorf("persist pointer %s: %w", p.PointerID, err),
			coreerrors.CategoryIOFailure, coreerrors.CodeStoreWriteFailed, "", true)
	}
	return path, nil
}

// Load reads and parses a pointer file, rejecting records that do not
// satisfy the crovia.pointer.v1 schema or carry unknown keys.
func Load(path string) (SignedPointer, error) {
	// #nosec G304 -- pointer path is explicit local user input.
	payload, err := os.ReadFile(path)
	if err != nil {
		return SignedPointer{}, fmt.Errorf("read pointer: %w", err)
	}
	return Parse(payload)
}

// Parse decodes a pointer record after validating it against the embedded
// schema.
func Parse(payload []byte) (SignedPointer, error) {
	if err := validate.ValidateJSON(schema.PointerV1, payload); err != nil {
		return SignedPointer{}, fmt.Errorf("validate pointer: %w", err)
	}
	var p SignedPointer
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return SignedPointer{}, fmt.Errorf("parse pointer: %w", err)
	}
	return p, nil
}
