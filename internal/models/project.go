package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoBranchesAvailable is returned when a project's stable branch cannot be determined
var ErrNoBranchesAvailable = errors.New("no branches available")

// Platform identifies the code hosting platform of a repository
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// ParsePlatform validates a platform name, defaulting to GitHub when empty
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case "":
		return PlatformGitHub, nil
	case PlatformGitHub, PlatformGitLab:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Repository identifies a remote repository
type Repository struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// ParseRepository parses "owner/name". Everything before the last slash is the
// owner, so GitLab sub-groups ("group/sub/name") are accepted.
func ParseRepository(s string) (Repository, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	owner, name := s[:i], s[i+1:]
	if strings.HasPrefix(owner, "/") || strings.HasSuffix(owner, "/") || strings.Contains(owner, "//") {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

// FullName returns owner/name
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r Repository) String() string {
	return r.FullName()
}

// Branch is a named ref inside a repository
type Branch struct {
	Name    string `json:"name" yaml:"name"`
	HeadSHA string `json:"head_sha" yaml:"head_sha"`
}

// BranchRule decides how a project's stable branch is found
type BranchRule string

const (
	// BranchRuleExplicit uses the configured branch name as is
	BranchRuleExplicit BranchRule = "explicit"
	// BranchRuleDefault uses the repository's default branch
	BranchRuleDefault BranchRule = "default"
	// BranchRuleNewest picks the highest release branch such as "2.x" or "1.4.x"
	BranchRuleNewest BranchRule = "newest"
)

// ParseBranchRule validates a rule name. An empty rule means explicit when a
// branch name is given and default otherwise.
func ParseBranchRule(s, branch string) (BranchRule, error) {
	switch r := BranchRule(strings.ToLower(s)); r {
	case "":
		if branch != "" {
			return BranchRuleExplicit, nil
		}
		return BranchRuleDefault, nil
	case BranchRuleExplicit, BranchRuleDefault, BranchRuleNewest:
		return r, nil
	default:
		return "", fmt.Errorf("unknown branch rule %q", s)
	}
}

// BranchLookup is what a project needs to discover its stable branch
type BranchLookup interface {
	Default(ctx context.Context, repo Repository) (string, error)
	List(ctx context.Context, repo Repository) ([]string, error)
}

// Project is a repository plus the rule that designates its stable branch
type Project struct {
	Repository   Repository `json:"repository" yaml:"repository"`
	StableBranch string     `json:"stable_branch,omitempty" yaml:"stable_branch,omitempty"`
	BranchRule   BranchRule `json:"branch_rule" yaml:"branch_rule"`
	Platform     Platform   `json:"platform" yaml:"platform"`
}

// Branch resolves the stable branch name. Every failure wraps ErrNoBranchesAvailable.
func (p Project) Branch(ctx context.Context, lookup BranchLookup) (string, error) {
	switch p.BranchRule {
	case BranchRuleExplicit, "":
		if p.StableBranch == "" {
			return "", fmt.Errorf("%w: no stable branch configured for %s", ErrNoBranchesAvailable, p.Repository)
		}
		return p.StableBranch, nil
	case BranchRuleDefault:
		name, err := lookup.Default(ctx, p.Repository)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoBranchesAvailable, err)
		}
		if name == "" {
			return "", fmt.Errorf("%w: %s has no default branch", ErrNoBranchesAvailable, p.Repository)
		}
		return name, nil
	case BranchRuleNewest:
		names, err := lookup.List(ctx, p.Repository)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoBranchesAvailable, err)
		}
		name, ok := NewestReleaseBranch(names)
		if !ok {
			return "", fmt.Errorf("%w: %s has no release branches", ErrNoBranchesAvailable, p.Repository)
		}
		return name, nil
	default:
		return "", fmt.Errorf("%w: unknown branch rule %q", ErrNoBranchesAvailable, p.BranchRule)
	}
}

var releaseBranchPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?\.x$`)

type releaseBranchVersion struct {
	major, minor int
	// "2.x" tracks every future 2.M line, so it sorts above any "2.M.x"
	open bool
}

func (v releaseBranchVersion) less(o releaseBranchVersion) bool {
	if v.major != o.major {
		return v.major < o.major
	}
	if v.open != o.open {
		return o.open
	}
	return v.minor < o.minor
}

func parseReleaseBranch(name string) (releaseBranchVersion, bool) {
	m := releaseBranchPattern.FindStringSubmatch(name)
	if m == nil {
		return releaseBranchVersion{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return releaseBranchVersion{}, false
	}
	if m[2] == "" {
		return releaseBranchVersion{major: major, open: true}, true
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return releaseBranchVersion{}, false
	}
	return releaseBranchVersion{major: major, minor: minor}, true
}

// NewestReleaseBranch returns the highest versioned release branch among names
func NewestReleaseBranch(names []string) (string, bool) {
	var (
		best    string
		bestVer releaseBranchVersion
		found   bool
	)
	for _, name := range names {
		v, ok := parseReleaseBranch(name)
		if !ok {
			continue
		}
		if !found || bestVer.less(v) {
			best, bestVer, found = name, v, true
		}
	}
	return best, found
}
