package branch

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Resolver supplies the raw branch identifier of the current checkout.
// An empty string means there is no committed branch to attach a record to.
type Resolver interface {
	ResolveBranch() (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func() (string, error)

// ResolveBranch calls f.
func (f ResolverFunc) ResolveBranch() (string, error) {
	return f()
}

// Static always resolves to the same identifier. Useful in tests and when
// the identifier is supplied by the caller (e.g. a CI variable).
type Static string

// ResolveBranch returns the static identifier.
func (s Static) ResolveBranch() (string, error) {
	return string(s), nil
}

// Mode selects what GitResolver reports as the branch identity.
type Mode string

const (
	// ModeCommit reports the hash of the commit HEAD points to.
	ModeCommit Mode = "commit"
	// ModeName reports the short branch name; detached HEAD resolves to "".
	ModeName Mode = "name"
)

// ParseMode parses a branch mode, defaulting to ModeCommit for "".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCommit:
		return ModeCommit, nil
	case ModeName:
		return ModeName, nil
	default:
		return "", fmt.Errorf("invalid branch mode %q (expected: commit or name)", s)
	}
}

// GitResolver resolves the branch identity with go-git, without requiring
// the git CLI.
type GitResolver struct {
	// Path is any directory inside the repository; empty means the working directory.
	Path   string
	Mode   Mode
	Logger *zap.Logger
}

// NewGitResolver creates a resolver for the repository containing path.
func NewGitResolver(path string, mode Mode, logger *zap.Logger) *GitResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitResolver{Path: path, Mode: mode, Logger: logger}
}

// ResolveBranch returns the branch identity of HEAD. A repository with no
// commits, or no repository at all, resolves to "".
func (g *GitResolver) ResolveBranch() (string, error) {
	repo, err := g.openRepo()
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			g.logger().Debug("not a git repository, no branch identity")
			return "", nil
		}
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			g.logger().Debug("HEAD is unborn, no commits yet")
			return "", nil
		}
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if g.Mode == ModeName {
		if !head.Name().IsBranch() {
			g.logger().Debug("detached HEAD, no branch name")
			return "", nil
		}
		name := head.Name().Short()
		g.logger().Debug("resolved branch name", zap.String("branch", name))
		return name, nil
	}

	hash := head.Hash().String()
	g.logger().Debug("resolved branch commit",
		zap.String("ref", head.Name().Short()),
		zap.String("hash", hash))
	return hash, nil
}

// openRepo opens the repository at Path (or the working directory),
// walking up to find the .git directory.
func (g *GitResolver) openRepo() (*git.Repository, error) {
	path := g.Path
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	g.logger().Debug("opening repository", zap.String("path", path))

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

func (g *GitResolver) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}
