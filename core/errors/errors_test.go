package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(nil, CategorySigning, CodeSigningFailed, "", false); err != nil {
		t.Fatalf("expected nil, got: %v", err)
	}
}

func TestClassificationAccessors(t *testing.T) {
	cause := fmt.Errorf("signer rejected payload")
	err := Wrap(cause, CategorySigning, CodeSigningFailed, "check private key material", false)
	if err.Error() != "signer rejected payload" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if CategoryOf(err) != CategorySigning {
		t.Fatalf("unexpected category: %s", CategoryOf(err))
	}
	if CodeOf(err) != CodeSigningFailed {
		t.Fatalf("unexpected code: %s", CodeOf(err))
	}
	if HintOf(err) != "check private key material" {
		t.Fatalf("unexpected hint: %s", HintOf(err))
	}
	if RetryableOf(err) {
		t.Fatalf("expected not retryable")
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CategoryIOFailure, CodeStoreWriteFailed, "", true)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if !RetryableOf(err) {
		t.Fatalf("expected retryable io failure")
	}
}

func TestAccessorsOnUnclassified(t *testing.T) {
	plain := fmt.Errorf("plain")
	if CategoryOf(plain) != "" {
		t.Fatalf("expected empty category")
	}
	if CodeOf(plain) != "" {
		t.Fatalf("expected empty code")
	}
	if RetryableOf(plain) {
		t.Fatalf("expected not retryable")
	}
}
