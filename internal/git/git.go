// Package git resolves branch heads on remote repositories without cloning
// them, so source builds can fail fast on a branch that does not exist.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

// Lister returns the references advertised by the repository at url.
type Lister func(ctx context.Context, url string) ([]*plumbing.Reference, error)

// Resolver looks up branch heads.
type Resolver struct {
	list Lister
}

// NewResolver returns a resolver. A nil lister advertises refs over the
// network with go-git.
func NewResolver(list Lister) *Resolver {
	if list == nil {
		list = listRemote
	}
	return &Resolver{list: list}
}

// BranchHead returns the commit hash branch points at in the repository at
// url. A missing branch is an apperr not-found error.
func (r *Resolver) BranchHead(ctx context.Context, url, branch string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("operation cancelled: %w", err)
	}

	refs, err := r.list(ctx, url)
	if err != nil && !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperr.Network(url, err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return ref.Hash().String(), nil
		}
	}
	return "", apperr.NotFound(
		fmt.Sprintf("Branch %s not found in %s", branch, url),
		"Check the branch name passed to --nightly",
	)
}

// ValidateBranch checks name against the git ref-name rules for a branch.
// Names that pass are safe to use as a single path segment below the
// nightly install directory: they have no "..", no leading "." or "-", no
// backslash and no empty component.
func ValidateBranch(name string) error {
	if strings.HasPrefix(name, "/") {
		return apperr.UserInput("Invalid branch name %q", name)
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return &apperr.Error{
			Kind:    apperr.KindUserInput,
			Message: fmt.Sprintf("Invalid branch name %q", name),
			Hint:    "Pass an existing branch of the upstream repository, such as main",
			Err:     err,
		}
	}
	return nil
}

func listRemote(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	return remote.ListContext(ctx, &gogit.ListOptions{})
}
