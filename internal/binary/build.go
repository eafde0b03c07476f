package binary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/config"
)

const rustupHint = "Install the Rust toolchain from https://rustup.rs and try again"

// Builder compiles a binary from a source branch and returns the path of
// the resulting executable.
type Builder interface {
	Build(ctx context.Context, req BuildRequest) (string, error)
}

// CommandRunner runs an external command and returns its captured stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stderr []byte, err error)

// BranchResolver resolves a branch of a remote repository to its head commit.
type BranchResolver interface {
	BranchHead(ctx context.Context, url, branch string) (string, error)
}

// CargoBuilder builds branches with "cargo install --git".
type CargoBuilder struct {
	lookPath func(string) (string, error)
	run      CommandRunner
	heads    BranchResolver
	logger   config.Logger
}

// NewCargoBuilder returns a builder that shells out to cargo. Nil arguments
// select exec.LookPath and a real process runner.
func NewCargoBuilder(lookPath func(string) (string, error), run CommandRunner, logger config.Logger) *CargoBuilder {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if run == nil {
		run = execRunner
	}
	return &CargoBuilder{lookPath: lookPath, run: run, logger: config.OrNop(logger)}
}

// WithBranchResolver makes Build check that the branch exists before
// compiling, and pins the build to the commit it resolved.
func (b *CargoBuilder) WithBranchResolver(r BranchResolver) *CargoBuilder {
	b.heads = r
	return b
}

// Build implements Builder.
func (b *CargoBuilder) Build(ctx context.Context, req BuildRequest) (string, error) {
	for _, tool := range []string{"rustc", "cargo"} {
		if _, err := b.lookPath(tool); err != nil {
			return "", apperr.ToolchainMissing(tool, rustupHint)
		}
	}

	// Resolve before touching disk so a missing branch leaves no directory.
	if b.heads != nil {
		commit, err := b.heads.BranchHead(ctx, req.RepoURL, req.Branch)
		if err != nil {
			return "", err
		}
		req.Commit = commit
	}

	if err := os.MkdirAll(req.Root, 0o755); err != nil {
		return "", fmt.Errorf("create build root: %w", err)
	}

	args := CargoArgs(req)
	b.logger.Info("building from source", "binary", req.Name, "branch", req.Branch, "commit", req.Commit, "debug", req.Debug)
	stderr, err := b.run(ctx, "cargo", args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", &apperr.Error{Message: msg}
		}
		return "", fmt.Errorf("build %s from %s: %w", req.Name, req.Branch, err)
	}

	built := filepath.Join(req.Root, "bin", req.Name+req.ExeSuffix)
	target := filepath.Join(req.Root, "bin", req.NightlyName())
	if err := os.Rename(built, target); err != nil {
		return "", fmt.Errorf("rename %s to %s: %w", filepath.Base(built), filepath.Base(target), err)
	}
	return target, nil
}

// CargoArgs returns the cargo arguments used for req. A resolved commit
// replaces the branch so the build matches what was checked.
func CargoArgs(req BuildRequest) []string {
	args := []string{"install", "--locked", "--force", "--git", req.RepoURL}
	if req.Commit != "" {
		args = append(args, "--rev", req.Commit)
	} else {
		args = append(args, "--branch", req.Branch)
	}
	args = append(args, req.Name, "--root", req.Root)
	if req.Debug {
		args = append(args, "--debug")
	}
	return args
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stderr.Bytes(), fmt.Errorf("cargo exited with status %d", exitErr.ExitCode())
	}
	return stderr.Bytes(), err
}
