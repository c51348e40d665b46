// Package git drives the git command-line tool.
package git

import (
	"context"

	"github.com/sanyoog/retro-cam/internal/runner"
)

// Client issues git commands through an Exec.
type Client struct {
	exec runner.Exec
}

// New returns a Client that runs git through ex.
func New(ex runner.Exec) *Client {
	return &Client{exec: ex}
}

func (c *Client) run(ctx context.Context, cmd runner.Command) (string, error) {
	return c.exec.Run(ctx, cmd)
}

// Status returns the short-format working tree status. Empty means clean.
func (c *Client) Status(ctx context.Context) (string, error) {
	return c.run(ctx, runner.Cmd("git", "status", "--short"))
}

// LastCommit returns the one-line summary of HEAD.
func (c *Client) LastCommit(ctx context.Context) (string, error) {
	return c.run(ctx, runner.Cmd("git", "log", "--oneline", "-1"))
}

// Add stages path. A missing or ignored path is not an error.
func (c *Client) Add(ctx context.Context, path string) (string, error) {
	return c.run(ctx, runner.Cmd("git", "add", path).Unchecked())
}

// Commit records staged changes. Nothing to commit is not an error; the
// returned text is whatever git printed.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	return c.run(ctx, runner.Cmd("git", "commit", "-m", message).Unchecked())
}

// Push pushes ref to remote.
func (c *Client) Push(ctx context.Context, remote, ref string) (string, error) {
	return c.run(ctx, runner.Cmd("git", "push", remote, ref))
}

// DeleteTag removes a local tag, ignoring a tag that does not exist.
func (c *Client) DeleteTag(ctx context.Context, tag string) (string, error) {
	return c.run(ctx, runner.Cmd("git", "tag", "-d", tag).Unchecked())
}

// Tag creates a lightweight tag at HEAD.
func (c *Client) Tag(ctx context.Context, tag string) (string, error) {
	return c.run(ctx, runner.Cmd("git", "tag", tag))
}

// PushTag pushes tag to remote, overwriting the remote tag when force
// is set.
func (c *Client) PushTag(ctx context.Context, remote, tag string, force bool) (string, error) {
	args := []string{"push", remote, tag}
	if force {
		args = append(args, "--force")
	}
	return c.run(ctx, runner.Cmd("git", args...))
}

// Retag moves tag to HEAD: the local tag is deleted if present and
// created again.
func (c *Client) Retag(ctx context.Context, tag string) error {
	if _, err := c.DeleteTag(ctx, tag); err != nil {
		return err
	}
	_, err := c.Tag(ctx, tag)
	return err
}
