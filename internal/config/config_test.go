package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestUnmarshalEmptyUsesDefaults(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(`{}`), &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Tag != "v1.5.0-translucency-fixed" {
		t.Errorf("Tag = %q", cfg.Tag)
	}
	if cfg.Poll.MaxChecks != 30 || cfg.Poll.Interval.Std() != 10*time.Second {
		t.Errorf("Poll = %+v", cfg.Poll)
	}
	if cfg.Warmup.Rounds != 3 || cfg.Warmup.Interval.Std() != 3*time.Second {
		t.Errorf("Warmup = %+v", cfg.Warmup)
	}
	if !reflect.DeepEqual(cfg.Stage, []string{"gradle.properties", "local.properties"}) {
		t.Errorf("Stage = %v", cfg.Stage)
	}
	if !cfg.ForceTag || !cfg.History {
		t.Errorf("ForceTag = %v History = %v, want true", cfg.ForceTag, cfg.History)
	}
}

func TestDefaultStageNotShared(t *testing.T) {
	cfg := Default()
	cfg.Stage[0] = "changed"
	if DefaultStage[0] != "gradle.properties" {
		t.Error("Default() aliases DefaultStage")
	}
}

func TestUnmarshalOverrides(t *testing.T) {
	data := []byte(`{
		"tag": "v2.0.0",
		"branch": "release",
		"stage": ["app/build.gradle.kts"],
		"poll": { "max_checks": 5, "interval": "2s" },
		"history": false,
		"notify": {
			"mqtt": { "broker": "tcp://localhost:1883", "qos": 1 },
			"webhook": { "url": "https://example.com/hook", "headers": {"Authorization": "Bearer $TOKEN"} },
			"slack": { "webhook_url": "$SLACK_WEBHOOK" },
			"telegram": { "token": "$TG_TOKEN", "chat_id": "1234" },
			"sound": true
		}
	}`)
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Tag != "v2.0.0" || cfg.Branch != "release" {
		t.Errorf("tag/branch = %q/%q", cfg.Tag, cfg.Branch)
	}
	if cfg.Remote != DefaultRemote {
		t.Errorf("Remote = %q, want default", cfg.Remote)
	}
	if !reflect.DeepEqual(cfg.Stage, []string{"app/build.gradle.kts"}) {
		t.Errorf("Stage = %v", cfg.Stage)
	}
	if cfg.Poll.MaxChecks != 5 || cfg.Poll.Interval.Std() != 2*time.Second {
		t.Errorf("Poll = %+v", cfg.Poll)
	}
	if cfg.Warmup.Rounds != 3 {
		t.Errorf("Warmup.Rounds = %d, want default 3", cfg.Warmup.Rounds)
	}
	if cfg.History {
		t.Error("History = true, want false")
	}
	if cfg.Notify.MQTT.Broker != "tcp://localhost:1883" || cfg.Notify.MQTT.QoS != 1 {
		t.Errorf("MQTT = %+v", cfg.Notify.MQTT)
	}
	if cfg.Notify.Webhook.Headers["Authorization"] != "Bearer $TOKEN" {
		t.Errorf("Webhook = %+v", cfg.Notify.Webhook)
	}
	if cfg.Notify.Slack.WebhookURL != "$SLACK_WEBHOOK" || cfg.Notify.Discord.WebhookURL != "" {
		t.Errorf("Slack = %+v Discord = %+v", cfg.Notify.Slack, cfg.Notify.Discord)
	}
	if cfg.Notify.Telegram.Token != "$TG_TOKEN" || cfg.Notify.Telegram.ChatID != "1234" {
		t.Errorf("Telegram = %+v", cfg.Notify.Telegram)
	}
	if cfg.Notify.Message != DefaultMessage {
		t.Errorf("Message = %q, want default", cfg.Notify.Message)
	}
	if !cfg.Notify.Sound || cfg.Notify.Volume != DefaultVolume {
		t.Errorf("Sound = %v Volume = %d", cfg.Notify.Sound, cfg.Notify.Volume)
	}
}

func TestUnmarshalBadDuration(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(`{"poll": {"interval": "soon"}}`), &cfg); err == nil {
		t.Error("expected error for bad duration")
	}
	if err := json.Unmarshal([]byte(`{"poll": {"interval": 10}}`), &cfg); err == nil {
		t.Error("expected error for numeric duration")
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
tag: v3.0.0
warmup:
  rounds: 1
poll:
  interval: 15s
notify:
  sound: true
  volume: 40
`)
	cfg, err := Parse(data, ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Tag != "v3.0.0" {
		t.Errorf("Tag = %q", cfg.Tag)
	}
	if cfg.Warmup.Rounds != 1 || cfg.Warmup.Interval.Std() != 3*time.Second {
		t.Errorf("Warmup = %+v", cfg.Warmup)
	}
	if cfg.Poll.Interval.Std() != 15*time.Second || cfg.Poll.MaxChecks != 30 {
		t.Errorf("Poll = %+v", cfg.Poll)
	}
	if !cfg.Notify.Sound || cfg.Notify.Volume != 40 {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.Repo != DefaultRepo {
		t.Errorf("Repo = %q, want default", cfg.Repo)
	}
}

func TestParseYAMLBadDuration(t *testing.T) {
	if _, err := Parse([]byte("poll:\n  interval: never\n"), ".yml"); err == nil {
		t.Error("expected error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"empty_tag", func(c *Config) { c.Tag = "" }, "tag must not be empty"},
		{"blank_remote", func(c *Config) { c.Remote = "  " }, "remote must not be empty"},
		{"bad_repo", func(c *Config) { c.Repo = "retro-cam" }, "owner/name"},
		{"zero_run_limit", func(c *Config) { c.RunLimit = 0 }, "run_limit"},
		{"negative_log_limit", func(c *Config) { c.LogLimit = -1 }, "log_limit"},
		{"zero_checks", func(c *Config) { c.Poll.MaxChecks = 0 }, "poll.max_checks"},
		{"zero_poll_interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"warmup_no_interval", func(c *Config) { c.Warmup.Interval = 0 }, "warmup.interval"},
		{"negative_rounds", func(c *Config) { c.Warmup.Rounds = -1 }, "warmup.rounds"},
		{"volume_high", func(c *Config) { c.Notify.Volume = 101 }, "notify.volume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidateNoWarmup(t *testing.T) {
	cfg := Default()
	cfg.Warmup = Warmup{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero warmup should be valid: %v", err)
	}
}

func TestLoadExplicit(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(p, []byte(`{"tag": "v9"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, src, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if src != p || cfg.Tag != "v9" {
		t.Errorf("src = %q tag = %q", src, cfg.Tag)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadExplicitInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(p, []byte(`{"tag": `), 0644)
	_, _, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v, want parsing error", err)
	}
}

func TestLoadFromDataDir(t *testing.T) {
	appdata := t.TempDir()
	t.Setenv("APPDATA", appdata)
	dir := filepath.Join(appdata, "retro-cam")
	os.MkdirAll(dir, 0755)
	p := filepath.Join(dir, "shipit.yaml")
	os.WriteFile(p, []byte("tag: from-yaml\n"), 0644)

	cfg, src, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if src != p || cfg.Tag != "from-yaml" {
		t.Errorf("src = %q tag = %q", src, cfg.Tag)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())
	cfg, src, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if src != "" {
		t.Errorf("src = %q, want empty", src)
	}
	if cfg.Tag != DefaultTag {
		t.Errorf("Tag = %q", cfg.Tag)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".env"), []byte("SHIPIT_TEST_TOKEN=abc\nSHIPIT_TEST_KEEP=fromfile\n"), 0644)
	t.Setenv("SHIPIT_TEST_KEEP", "fromenv")
	t.Setenv("SHIPIT_TEST_TOKEN", "")
	os.Unsetenv("SHIPIT_TEST_TOKEN")

	if err := LoadEnv(dir); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SHIPIT_TEST_TOKEN"); got != "abc" {
		t.Errorf("SHIPIT_TEST_TOKEN = %q, want abc", got)
	}
	if got := os.Getenv("SHIPIT_TEST_KEEP"); got != "fromenv" {
		t.Errorf("SHIPIT_TEST_KEEP = %q, existing value should win", got)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	if err := LoadEnv(t.TempDir()); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestDurationJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"1m30s"` {
		t.Errorf("marshal = %s", b)
	}
}
