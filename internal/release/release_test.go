package release

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sanyoog/retro-cam/internal/ci"
	"github.com/sanyoog/retro-cam/internal/config"
	"github.com/sanyoog/retro-cam/internal/git"
	"github.com/sanyoog/retro-cam/internal/runner/runnertest"
)

const (
	keyStatus  = "git status --short"
	keyLog     = "git log --oneline -1"
	keyCommit  = "git commit -m fix: Remove hardcoded Java path for CI compatibility"
	keyPush    = "git push origin main"
	keyTagPush = "git push origin v1.5.0-translucency-fixed --force"
	keyList    = "gh run list --limit 5 --json conclusion,name,headBranch,workflowName,createdAt,displayTitle,databaseId,status"
	keyRun77   = "gh api repos/sanyoog/retro-cam/actions/runs/77 --jq .status,.conclusion"
	keyLogs77  = "gh run view 77 --log-failed"
)

const runsJSON = `[
 {"conclusion":"success","headBranch":"main","displayTitle":"feat: presets","databaseId":70,"status":"completed"},
 {"conclusion":"","headBranch":"v1.5.0-translucency-fixed","displayTitle":"fix: java path","databaseId":77,"status":"in_progress"},
 {"conclusion":"","headBranch":"main","displayTitle":"never printed","databaseId":78,"status":"queued"}
]`

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newRelease(fake *runnertest.Fake, emoji bool) (*Release, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := config.Default()
	return &Release{
		Git:     git.New(fake),
		CI:      ci.New(fake, cfg.Repo),
		Config:  cfg,
		Console: NewConsole(&buf, emoji),
		Sleep:   noSleep,
	}, &buf
}

func TestRunSuccess(t *testing.T) {
	fake := runnertest.New().
		On(keyStatus, runnertest.Reply{Out: " M gradle.properties"}).
		On(keyLog, runnertest.Reply{Out: "abc123 fix: thing"}).
		On(keyCommit, runnertest.Reply{Out: "[main abc124] fix"}).
		On(keyList, runnertest.Reply{Out: runsJSON}).
		On(keyRun77,
			runnertest.Reply{Out: "in_progress"},
			runnertest.Reply{Out: "completed\nsuccess"})

	r, buf := newRelease(fake, true)
	rep, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := `🔍 Checking git status...
 M gradle.properties

📝 Last commit:
abc123 fix: thing

➕ Staging changes...

💾 Committing changes...
[main abc124] fix

🚀 Pushing to main...
Pushed successfully

🏷️  Creating tag...

📤 Pushing tag...
Tag pushed successfully

⏳ Waiting for GitHub Actions to start...
   Waiting... 3s
   Waiting... 6s
   Waiting... 9s

📊 Checking recent workflow runs...
✅ feat: presets [main] - completed
⏳ fix: java path [v1.5.0-translucency-fixed] - in_progress

🔍 Monitoring build 77...
============================================================
[20s] Status: completed | Conclusion: success

✅ BUILD SUCCESSFUL!
`
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}

	if rep.Outcome != OutcomeSuccess || rep.ExitCode != 0 || rep.RunID != 77 {
		t.Errorf("report = %+v", rep)
	}
	if rep.URL != "https://github.com/sanyoog/retro-cam/actions/runs/77" {
		t.Errorf("URL = %q", rep.URL)
	}
	if rep.Elapsed != 20*time.Second {
		t.Errorf("Elapsed = %v", rep.Elapsed)
	}

	wantCalls := []string{
		keyStatus,
		keyLog,
		"git add gradle.properties",
		"git add local.properties",
		keyCommit,
		keyPush,
		"git tag -d v1.5.0-translucency-fixed",
		"git tag v1.5.0-translucency-fixed",
		keyTagPush,
		keyList,
		keyRun77,
		keyRun77,
	}
	if got := fake.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Errorf("calls =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(wantCalls, "\n"))
	}
}

func TestRunFailureFetchesLogs(t *testing.T) {
	longLog := strings.Repeat("x", 2500)
	fake := runnertest.New().
		On(keyList, runnertest.Reply{Out: runsJSON}).
		On(keyRun77, runnertest.Reply{Out: "completed\nfailure"}).
		On(keyLogs77, runnertest.Reply{Out: longLog})

	r, buf := newRelease(fake, true)
	rep, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Outcome != OutcomeFailure || rep.ExitCode != 1 || rep.Conclusion != "failure" {
		t.Errorf("report = %+v", rep)
	}
	out := buf.String()
	if !strings.Contains(out, "❌ BUILD FAILED with conclusion: failure") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "📋 Fetching error logs...\n"+strings.Repeat("x", 2000)+"\n") {
		t.Error("logs not truncated to 2000 characters")
	}
	if strings.Contains(out, strings.Repeat("x", 2001)) {
		t.Error("logs longer than the limit were printed")
	}
	if strings.Contains(out, "Done!") {
		t.Error("failure should end the sequence before the final line")
	}
}

func TestRunTimeout(t *testing.T) {
	fake := runnertest.New().
		On(keyList, runnertest.Reply{Out: runsJSON}).
		On(keyRun77, runnertest.Reply{Out: "in_progress\nnull"})

	r, buf := newRelease(fake, true)
	r.Config.Poll.MaxChecks = 3
	rep, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Outcome != OutcomeTimeout || rep.ExitCode != 0 {
		t.Errorf("report = %+v", rep)
	}
	out := buf.String()
	for _, want := range []string{
		"[10s] Status: in_progress | Conclusion: null\n",
		"[30s] Status: in_progress | Conclusion: null\n",
		"⏰ Timeout reached. Check manually at:\n   https://github.com/sanyoog/retro-cam/actions/runs/77\n",
		"✅ Done! Check status at: https://github.com/sanyoog/retro-cam/actions\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Scanning stops after the watched run.
	if strings.Contains(out, "never printed") {
		t.Error("runs after the watched one were listed")
	}
}

func TestRunNoMatchingRun(t *testing.T) {
	fake := runnertest.New().On(keyList, runnertest.Reply{Out: `[
		{"conclusion":"success","headBranch":"v1.5.0-translucency-fixed","displayTitle":"old","databaseId":1,"status":"completed"}
	]`})
	r, buf := newRelease(fake, true)
	rep, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Outcome != OutcomeNone || rep.RunID != 0 {
		t.Errorf("report = %+v", rep)
	}
	if rep.URL != "https://github.com/sanyoog/retro-cam/actions" {
		t.Errorf("URL = %q", rep.URL)
	}
	if !strings.HasSuffix(buf.String(), "✅ Done! Check status at: https://github.com/sanyoog/retro-cam/actions\n") {
		t.Errorf("output:\n%s", buf.String())
	}
	for _, c := range fake.Calls() {
		if strings.HasPrefix(c, "gh api") {
			t.Errorf("completed run should not be watched: %s", c)
		}
	}
}

func TestRunCleanTreeAndNothingToCommit(t *testing.T) {
	fake := runnertest.New()
	r, buf := newRelease(fake, true)
	if _, err := r.Run(context.Background(), Options{NoWatch: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"🔍 Checking git status...\nWorking tree clean\n",
		"💾 Committing changes...\nNo changes to commit\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunPushFailureSkipsSuccessMessage(t *testing.T) {
	fake := runnertest.New().
		On(keyPush, runnertest.Reply{Err: errors.New("rejected")}).
		On(keyTagPush, runnertest.Reply{Err: errors.New("rejected")})
	r, buf := newRelease(fake, true)
	if _, err := r.Run(context.Background(), Options{NoWatch: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "Pushed successfully") || strings.Contains(out, "Tag pushed successfully") {
		t.Errorf("failed push reported as success:\n%s", out)
	}
	// The sequence still continues to the tag steps.
	if !strings.Contains(out, "Pushing tag...") {
		t.Errorf("sequence stopped after failed push:\n%s", out)
	}
}

func TestRunListFailure(t *testing.T) {
	fake := runnertest.New().On(keyList, runnertest.Reply{Err: errors.New("gh: not logged in")})
	r, buf := newRelease(fake, true)
	rep, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Outcome != OutcomeNone {
		t.Errorf("outcome = %q", rep.Outcome)
	}
	if !strings.Contains(buf.String(), "Done! Check status at:") {
		t.Error("missing final line")
	}
}

func TestRunSkipOptions(t *testing.T) {
	fake := runnertest.New()
	r, _ := newRelease(fake, true)
	if _, err := r.Run(context.Background(), Options{SkipCommit: true, SkipPush: true, NoWatch: true}); err != nil {
		t.Fatal(err)
	}
	want := []string{keyStatus, keyLog}
	if got := fake.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestRunCustomConfig(t *testing.T) {
	fake := runnertest.New()
	r, buf := newRelease(fake, true)
	r.Config.Branch = "develop"
	r.Config.Remote = "upstream"
	r.Config.Tag = "v2"
	r.Config.ForceTag = false
	r.Config.Stage = []string{"a.txt"}
	if _, err := r.Run(context.Background(), Options{NoWatch: true}); err != nil {
		t.Fatal(err)
	}
	calls := strings.Join(fake.Calls(), "\n")
	for _, want := range []string{"git add a.txt", "git push upstream develop", "git tag v2", "git push upstream v2"} {
		if !strings.Contains(calls, want) {
			t.Errorf("calls missing %q:\n%s", want, calls)
		}
	}
	if strings.Contains(calls, "--force") {
		t.Error("tag pushed with --force despite force_tag=false")
	}
	if !strings.Contains(buf.String(), "Pushing to develop...") {
		t.Error("branch not shown in push message")
	}
}

func TestRunPlainOutput(t *testing.T) {
	fake := runnertest.New().On(keyList, runnertest.Reply{Out: runsJSON}).
		On(keyRun77, runnertest.Reply{Out: "completed\nsuccess"})
	r, buf := newRelease(fake, false)
	if _, err := r.Run(context.Background(), Options{SkipCommit: true, SkipPush: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Checking git status...\n") {
		t.Errorf("plain output starts with %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{"[ok] feat: presets [main] - completed", "[..] fix: java path", "\nBUILD SUCCESSFUL!\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, emoji := range []string{"✅", "⏳", "🔍"} {
		if strings.Contains(out, emoji) {
			t.Errorf("plain output contains %s", emoji)
		}
	}
}

func TestRunCancelledDuringWarmup(t *testing.T) {
	fake := runnertest.New()
	r, _ := newRelease(fake, true)
	ctx, cancel := context.WithCancel(context.Background())
	r.Sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	_, err := r.Run(ctx, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	for _, c := range fake.Calls() {
		if strings.HasPrefix(c, "gh ") {
			t.Errorf("gh called after cancel: %s", c)
		}
	}
}
