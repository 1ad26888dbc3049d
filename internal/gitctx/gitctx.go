// Package gitctx answers the few source-control questions the CLI asks:
// the short hash of HEAD, the current branch and worktree state, and
// tagging a release.
package gitctx

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// ShortHashLen is the number of hex digits kept for record.commit.
const ShortHashLen = 7

var (
	// ErrNoRepository means dir is not inside a git repository or the
	// repository has no commits yet.
	ErrNoRepository = errors.New("no git repository found")
	// ErrTagExists is returned by AddTag when the tag name is taken.
	ErrTagExists = errors.New("tag already exists")
)

// Info is a minimal view of the repository state.
type Info struct {
	Head          string `json:"head"`
	Branch        string `json:"branch,omitempty"`
	ModifiedFiles int    `json:"modified_files"`
}

// Dirty reports whether the worktree has uncommitted changes.
func (i *Info) Dirty() bool {
	return i.ModifiedFiles > 0
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ErrNoRepository
	}
	return repo, nil
}

// ShortHead returns the first ShortHashLen characters of the HEAD commit hash.
func ShortHead(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", ErrNoRepository
	}
	return head.Hash().String()[:ShortHashLen], nil
}

// Describe returns the HEAD hash, branch and number of modified files.
func Describe(dir string) (*Info, error) {
	repo, err := open(dir)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, ErrNoRepository
	}

	info := &Info{Head: head.Hash().String()[:ShortHashLen]}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return info, nil
	}
	st, err := wt.Status()
	if err != nil {
		return info, nil
	}
	for _, s := range st {
		// Consider both staged and unstaged changes; untracked files count too
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			info.ModifiedFiles++
		}
	}
	return info, nil
}

// AddTag creates a lightweight tag name at HEAD.
func AddTag(dir, name string) error {
	repo, err := open(dir)
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return ErrNoRepository
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return fmt.Errorf("%w: %s", ErrTagExists, name)
		}
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// TagName renders the release tag for a version string.
func TagName(version string) string {
	return "v" + version
}
