package pointer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	signer, kp := testSigner(t)
	ptr, err := Generate(testObservation(t), signer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	dir := filepath.Join(t.TempDir(), ".crovia")
	path, err := Save(ptr, dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != ptr.PointerID+".json" {
		t.Fatalf("unexpected path: %s", path)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.PointerID != ptr.PointerID || loaded.ObservationHash != ptr.ObservationHash {
		t.Fatalf("loaded pointer differs from saved")
	}
	if !Verify(loaded, kp.Public) {
		t.Fatalf("expected persisted pointer to verify")
	}
}

func TestSaveWritesAllKeysWithExplicitNulls(t *testing.T) {
	ptr, err := Generate(testObservation(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	ptr.Branch = nil
	path, err := Save(ptr, t.TempDir())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, key := range []string{
		`"pointer_id"`, `"schema"`, `"version"`, `"observed_at"`, `"repository"`,
		`"commit_sha"`, `"branch"`, `"status"`, `"reason"`, `"evidence_found"`,
		`"critical_omissions"`, `"observation_hash"`, `"signature"`,
		`"signer_key_id"`, `"registry_eligible"`,
	} {
		if !strings.Contains(string(content), key) {
			t.Fatalf("persisted pointer missing key %s", key)
		}
	}
	if !strings.Contains(string(content), `"branch": null`) {
		t.Fatalf("expected explicit null branch:\n%s", string(content))
	}
	if !strings.Contains(string(content), `"signature": null`) {
		t.Fatalf("expected explicit null signature:\n%s", string(content))
	}
}

func TestSaveIdenticalPointerTwice(t *testing.T) {
	ptr, err := Generate(testObservation(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	dir := t.TempDir()
	first, err := Save(ptr, dir)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := Save(ptr, dir)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first != second {
		t.Fatalf("content-derived id must map to one path")
	}
}

func TestLoadRejectsTamperedSchema(t *testing.T) {
	ptr, err := Generate(testObservation(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path, err := Save(ptr, t.TempDir())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	mangled := strings.Replace(string(content), `"GREEN"`, `"PURPLE"`, 1)
	if err := os.WriteFile(path, []byte(mangled), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected schema validation to reject mangled status")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	ptr, err := Generate(testObservation(t), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	encoded, err := json.Marshal(ptr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	withExtra := strings.TrimSuffix(string(encoded), "}") + `,"extra":true}`
	if _, err := Parse([]byte(withExtra)); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}
