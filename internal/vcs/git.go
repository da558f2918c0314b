// Package vcs runs the few git commands the pipeline needs.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git runs git in Dir (the current directory when empty).
type Git struct {
	Dir    string
	Binary string
}

func (g Git) binary() string {
	if g.Binary == "" {
		return "git"
	}
	return g.Binary
}

func (g Git) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.binary(), args...)
	cmd.Dir = g.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("git %s: %s: %w", args[0], msg, err)
	}
	return out, nil
}

// Show returns the content of path at rev, e.g. Show(ctx, "HEAD", "data.json").
// path may be absolute or relative to Dir; it must lie inside the work tree.
func (g Git) Show(ctx context.Context, rev, path string) ([]byte, error) {
	rel, err := g.RepoPath(ctx, path)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, "show", rev+":"+rel)
}

// RepoPath converts path into the slash-separated form git expects in
// rev:path arguments, relative to the top of the work tree.
func (g Git) RepoPath(ctx context.Context, path string) (string, error) {
	abs, err := g.absolute(path)
	if err != nil {
		return "", err
	}

	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	top := resolveLinks(strings.TrimSpace(string(out)))

	rel, err := filepath.Rel(top, resolveLinks(abs))
	if err != nil {
		return "", fmt.Errorf("failed to locate %s in %s: %w", path, top, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository at %s", path, top)
	}
	return filepath.ToSlash(rel), nil
}

func (g Git) absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := g.Dir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	return filepath.Abs(filepath.Join(base, path))
}

// resolveLinks resolves symlinks in the directory part of path so it compares
// equal to git's toplevel. The file itself need not exist.
func resolveLinks(path string) string {
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return path
	}
	return filepath.Join(dir, filepath.Base(path))
}

// Add stages path.
func (g Git) Add(ctx context.Context, path string) error {
	_, err := g.run(ctx, "add", "--", path)
	return err
}
