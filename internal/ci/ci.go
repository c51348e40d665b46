// Package ci queries GitHub Actions through the gh command-line tool.
package ci

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sanyoog/retro-cam/internal/runner"
)

// ErrIncompleteStatus is returned when gh prints fewer than the two
// expected lines (status and conclusion) for a run.
var ErrIncompleteStatus = errors.New("incomplete run status")

// RunFields are the JSON fields requested from gh run list.
var RunFields = []string{
	"conclusion", "name", "headBranch", "workflowName",
	"createdAt", "displayTitle", "databaseId", "status",
}

// Status values reported by GitHub for a workflow run.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusQueued     = "queued"
	StatusWaiting    = "waiting"
	StatusPending    = "pending"
	StatusRequested  = "requested"

	ConclusionSuccess = "success"
)

// Run is one workflow run as listed by gh.
type Run struct {
	Conclusion   string    `json:"conclusion"`
	Name         string    `json:"name"`
	HeadBranch   string    `json:"headBranch"`
	WorkflowName string    `json:"workflowName"`
	CreatedAt    time.Time `json:"createdAt"`
	DisplayTitle string    `json:"displayTitle"`
	DatabaseID   int64     `json:"databaseId"`
	Status       string    `json:"status"`
}

// State summarizes a run for display.
type State int

const (
	StateActive State = iota
	StateSucceeded
	StateFailed
)

// Active reports whether status is a non-terminal run status.
func Active(status string) bool {
	switch status {
	case StatusInProgress, StatusQueued, StatusWaiting, StatusPending, StatusRequested:
		return true
	}
	return false
}

// State classifies the run: active while not finished, then succeeded
// or failed by conclusion.
func (r Run) State() State {
	switch {
	case Active(r.Status):
		return StateActive
	case r.Conclusion == ConclusionSuccess:
		return StateSucceeded
	default:
		return StateFailed
	}
}

// withDefaults fills the placeholders used when gh omits a field.
func (r Run) withDefaults() Run {
	if r.Status == "" {
		r.Status = "unknown"
	}
	if r.Conclusion == "" {
		r.Conclusion = StatusInProgress
	}
	if r.HeadBranch == "" {
		r.HeadBranch = "unknown"
	}
	if r.DisplayTitle == "" {
		r.DisplayTitle = "unknown"
	}
	return r
}

// ParseRuns decodes the JSON array printed by gh run list.
func ParseRuns(data string) ([]Run, error) {
	var runs []Run
	if err := json.Unmarshal([]byte(data), &runs); err != nil {
		return nil, fmt.Errorf("parsing run list: %w", err)
	}
	for i := range runs {
		runs[i] = runs[i].withDefaults()
	}
	return runs, nil
}

// ParseStatus splits the "status\nconclusion" output of the run status
// query.
func ParseStatus(out string) (status, conclusion string, err error) {
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return "", "", ErrIncompleteStatus
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}

// Client issues gh commands through an Exec.
type Client struct {
	exec runner.Exec
	repo string
}

// New returns a Client for the owner/name repository.
func New(ex runner.Exec, repo string) *Client {
	return &Client{exec: ex, repo: repo}
}

// Repo returns the owner/name repository the client queries.
func (c *Client) Repo() string { return c.repo }

// ListRuns returns the most recent limit workflow runs.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	out, err := c.exec.Run(ctx, runner.Cmd("gh", "run", "list",
		"--limit", strconv.Itoa(limit),
		"--json", strings.Join(RunFields, ",")))
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return ParseRuns(out)
}

// RunStatus returns the current status and conclusion of run id. The
// conclusion is empty while the run is in progress.
func (c *Client) RunStatus(ctx context.Context, id int64) (status, conclusion string, err error) {
	out, err := c.exec.Run(ctx, runner.Cmd("gh", "api",
		fmt.Sprintf("repos/%s/actions/runs/%d", c.repo, id),
		"--jq", ".status,.conclusion"))
	if err != nil {
		return "", "", err
	}
	return ParseStatus(out)
}

// FailedLogs returns the log output of the failed steps of run id.
func (c *Client) FailedLogs(ctx context.Context, id int64) (string, error) {
	return c.exec.Run(ctx, runner.Cmd("gh", "run", "view",
		strconv.FormatInt(id, 10), "--log-failed").Unchecked())
}

// RunURL is the web page of run id.
func RunURL(repo string, id int64) string {
	return fmt.Sprintf("https://github.com/%s/actions/runs/%d", repo, id)
}

// ActionsURL is the Actions overview page of repo.
func ActionsURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s/actions", repo)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
