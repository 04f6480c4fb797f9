// Package identity resolves the repository/commit/branch context an
// observation is recorded against. Explicit values win over CI environment
// variables, which win over local git metadata.
package identity

import (
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Sentinel is recorded when no repository identity can be resolved.
const Sentinel = "unknown/unknown"

// Context identifies where an observation was captured. Commit and Branch
// are nil when unknown; the wire format renders them as explicit nulls.
type Context struct {
	Repository string
	Commit     *string
	Branch     *string
}

// Resolve fills any missing fields of explicit from the CI environment and
// then from the git repository at root, falling back to the sentinel
// repository name. It never fails: a non-repository root simply resolves to
// whatever the environment provides.
func Resolve(root string, explicit Context) Context {
	resolved := Context{
		Repository: explicit.Repository,
		Commit:     explicit.Commit,
		Branch:     explicit.Branch,
	}
	if resolved.Repository == "" {
		resolved.Repository = strings.TrimSpace(os.Getenv("GITHUB_REPOSITORY"))
	}
	if resolved.Commit == nil {
		if sha := strings.TrimSpace(os.Getenv("GITHUB_SHA")); sha != "" {
			resolved.Commit = &sha
		}
	}
	if resolved.Branch == nil {
		if ref := strings.TrimSpace(os.Getenv("GITHUB_REF_NAME")); ref != "" {
			resolved.Branch = &ref
		}
	}
	if resolved.Repository == "" || resolved.Commit == nil || resolved.Branch == nil {
		fillFromGit(root, &resolved)
	}
	if resolved.Repository == "" {
		resolved.Repository = Sentinel
	}
	return resolved
}

func fillFromGit(root string, ctx *Context) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return
	}
	if head, err := repo.Head(); err == nil {
		if ctx.Commit == nil {
			sha := head.Hash().String()
			ctx.Commit = &sha
		}
		if ctx.Branch == nil && head.Name().IsBranch() {
			branch := head.Name().Short()
			ctx.Branch = &branch
		}
	}
	if ctx.Repository == "" {
		if remote, err := repo.Remote("origin"); err == nil {
			urls := remote.Config().URLs
			if len(urls) > 0 {
				if slug := slugFromRemoteURL(urls[0]); slug != "" {
					ctx.Repository = slug
				}
			}
		}
	}
}

// slugFromRemoteURL reduces a git remote URL to an owner/name slug. Both
// scp-like (git@host:owner/name.git) and URL forms are accepted.
func slugFromRemoteURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if trimmed == "" {
		return ""
	}
	if at := strings.Index(trimmed, "@"); at >= 0 && !strings.Contains(trimmed, "://") {
		if colon := strings.Index(trimmed[at:], ":"); colon >= 0 {
			trimmed = trimmed[at+colon+1:]
		}
	}
	if scheme := strings.Index(trimmed, "://"); scheme >= 0 {
		trimmed = trimmed[scheme+3:]
		if slash := strings.Index(trimmed, "/"); slash >= 0 {
			trimmed = trimmed[slash+1:]
		}
	}
	trimmed = strings.Trim(trimmed, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
