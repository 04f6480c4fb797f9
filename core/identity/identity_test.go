package identity

import "testing"

func TestResolveExplicitWins(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "env/repo")
	t.Setenv("GITHUB_SHA", "envsha")
	t.Setenv("GITHUB_REF_NAME", "envbranch")
	commit := "abc123"
	branch := "main"
	ctx := Resolve(t.TempDir(), Context{Repository: "explicit/repo", Commit: &commit, Branch: &branch})
	if ctx.Repository != "explicit/repo" {
		t.Fatalf("unexpected repository: %s", ctx.Repository)
	}
	if ctx.Commit == nil || *ctx.Commit != "abc123" {
		t.Fatalf("unexpected commit: %v", ctx.Commit)
	}
	if ctx.Branch == nil || *ctx.Branch != "main" {
		t.Fatalf("unexpected branch: %v", ctx.Branch)
	}
}

func TestResolveFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "acme/training-models")
	t.Setenv("GITHUB_SHA", "deadbeef")
	t.Setenv("GITHUB_REF_NAME", "release")
	ctx := Resolve(t.TempDir(), Context{})
	if ctx.Repository != "acme/training-models" {
		t.Fatalf("unexpected repository: %s", ctx.Repository)
	}
	if ctx.Commit == nil || *ctx.Commit != "deadbeef" {
		t.Fatalf("unexpected commit: %v", ctx.Commit)
	}
	if ctx.Branch == nil || *ctx.Branch != "release" {
		t.Fatalf("unexpected branch: %v", ctx.Branch)
	}
}

func TestResolveSentinelWhenUnknown(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_SHA", "")
	t.Setenv("GITHUB_REF_NAME", "")
	ctx := Resolve(t.TempDir(), Context{})
	if ctx.Repository != Sentinel {
		t.Fatalf("expected sentinel repository, got: %s", ctx.Repository)
	}
	if ctx.Commit != nil {
		t.Fatalf("expected nil commit, got: %v", *ctx.Commit)
	}
	if ctx.Branch != nil {
		t.Fatalf("expected nil branch, got: %v", *ctx.Branch)
	}
}

func TestSlugFromRemoteURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/models.git", "acme/models"},
		{"https://github.com/acme/models.git", "acme/models"},
		{"https://github.com/acme/models", "acme/models"},
		{"ssh://git@github.com/acme/models.git", "acme/models"},
		{"", ""},
		{"not-a-remote", ""},
	}
	for _, tc := range cases {
		if got := slugFromRemoteURL(tc.url); got != tc.want {
			t.Fatalf("slug(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
