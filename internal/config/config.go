package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sanyoog/retro-cam/internal/paths"
)

// Defaults reproduce the release this tool was first written for.
const (
	DefaultRepo          = "sanyoog/retro-cam"
	DefaultRemote        = "origin"
	DefaultBranch        = "main"
	DefaultTag           = "v1.5.0-translucency-fixed"
	DefaultCommitMessage = "fix: Remove hardcoded Java path for CI compatibility"
	DefaultRunLimit      = 5
	DefaultLogLimit      = 2000
	DefaultVolume        = 100
	DefaultMQTTTopic     = "retro-cam/ci"
	DefaultNATSSubject   = "retro-cam.ci"
	DefaultMessage       = "{repo} {tag}: {Outcome} {url}"
)

// DefaultStage lists the files staged before committing.
var DefaultStage = []string{"gradle.properties", "local.properties"}

// Duration is a time.Duration written as a Go duration string ("10s")
// in config files.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Warmup controls the wait before the first run listing.
type Warmup struct {
	Rounds   int      `json:"rounds" yaml:"rounds"`
	Interval Duration `json:"interval" yaml:"interval"`
}

// Poll controls how a CI run is watched.
type Poll struct {
	MaxChecks int      `json:"max_checks" yaml:"max_checks"`
	Interval  Duration `json:"interval" yaml:"interval"`
}

// MQTT describes where to publish the outcome. An empty Broker disables
// it. Username and Password are expanded with os.ExpandEnv.
type MQTT struct {
	Broker   string `json:"broker,omitempty" yaml:"broker,omitempty"`
	Topic    string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	QoS      byte   `json:"qos,omitempty" yaml:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty" yaml:"retain,omitempty"`
}

// NATS describes a NATS server receiving the outcome. An empty URL
// disables it. The URL is expanded with os.ExpandEnv so credentials
// can come from the environment.
type NATS struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// Webhook describes an HTTP endpoint receiving the outcome. An empty URL
// disables it. Header values are expanded with os.ExpandEnv.
type Webhook struct {
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Chat is an incoming-webhook chat channel (Slack, Discord). An empty
// WebhookURL disables it. The URL is expanded with os.ExpandEnv.
type Chat struct {
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
}

// Telegram is a bot chat. Both fields are expanded with os.ExpandEnv;
// either one empty disables it.
type Telegram struct {
	Token  string `json:"token,omitempty" yaml:"token,omitempty"`
	ChatID string `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
}

// Notify groups the outcome notifications. Message is the text template
// sent to chat channels; see package tmpl for its placeholders.
type Notify struct {
	MQTT     MQTT     `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	NATS     NATS     `json:"nats,omitempty" yaml:"nats,omitempty"`
	Webhook  Webhook  `json:"webhook,omitempty" yaml:"webhook,omitempty"`
	Slack    Chat     `json:"slack,omitempty" yaml:"slack,omitempty"`
	Discord  Chat     `json:"discord,omitempty" yaml:"discord,omitempty"`
	Telegram Telegram `json:"telegram,omitempty" yaml:"telegram,omitempty"`
	Message  string   `json:"message,omitempty" yaml:"message,omitempty"`
	Desktop  bool     `json:"desktop,omitempty" yaml:"desktop,omitempty"`
	Sound    bool     `json:"sound,omitempty" yaml:"sound,omitempty"`
	Volume   int      `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// Config holds every setting of the push-and-watch sequence.
type Config struct {
	Workdir       string   `json:"workdir,omitempty" yaml:"workdir,omitempty"`
	Repo          string   `json:"repo" yaml:"repo"`
	Remote        string   `json:"remote" yaml:"remote"`
	Branch        string   `json:"branch" yaml:"branch"`
	Tag           string   `json:"tag" yaml:"tag"`
	ForceTag      bool     `json:"force_tag" yaml:"force_tag"`
	CommitMessage string   `json:"commit_message" yaml:"commit_message"`
	Stage         []string `json:"stage" yaml:"stage"`
	RunLimit      int      `json:"run_limit" yaml:"run_limit"`
	LogLimit      int      `json:"log_limit" yaml:"log_limit"`
	Warmup        Warmup   `json:"warmup" yaml:"warmup"`
	Poll          Poll     `json:"poll" yaml:"poll"`
	Notify        Notify   `json:"notify,omitempty" yaml:"notify,omitempty"`
	History       bool     `json:"history" yaml:"history"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Repo:          DefaultRepo,
		Remote:        DefaultRemote,
		Branch:        DefaultBranch,
		Tag:           DefaultTag,
		ForceTag:      true,
		CommitMessage: DefaultCommitMessage,
		Stage:         append([]string(nil), DefaultStage...),
		RunLimit:      DefaultRunLimit,
		LogLimit:      DefaultLogLimit,
		Warmup:        Warmup{Rounds: 3, Interval: Duration(3 * time.Second)},
		Poll:          Poll{MaxChecks: 30, Interval: Duration(10 * time.Second)},
		Notify:        Notify{Volume: DefaultVolume, Message: DefaultMessage},
		History:       true,
	}
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	*c = Default()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Validate reports settings the sequence cannot run with.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct{ name, val string }{
		{"repo", c.Repo}, {"remote", c.Remote}, {"branch", c.Branch}, {"tag", c.Tag},
	} {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
	}
	if c.Repo != "" && strings.Count(c.Repo, "/") != 1 {
		errs = append(errs, fmt.Errorf("repo %q must be owner/name", c.Repo))
	}
	if c.RunLimit <= 0 {
		errs = append(errs, fmt.Errorf("run_limit must be positive, got %d", c.RunLimit))
	}
	if c.LogLimit < 0 {
		errs = append(errs, fmt.Errorf("log_limit must not be negative, got %d", c.LogLimit))
	}
	if c.Warmup.Rounds < 0 {
		errs = append(errs, fmt.Errorf("warmup.rounds must not be negative, got %d", c.Warmup.Rounds))
	}
	if c.Warmup.Rounds > 0 && c.Warmup.Interval <= 0 {
		errs = append(errs, fmt.Errorf("warmup.interval must be positive"))
	}
	if c.Poll.MaxChecks <= 0 {
		errs = append(errs, fmt.Errorf("poll.max_checks must be positive, got %d", c.Poll.MaxChecks))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive"))
	}
	if c.Notify.Volume < 0 || c.Notify.Volume > 100 {
		errs = append(errs, fmt.Errorf("notify.volume must be between 0 and 100, got %d", c.Notify.Volume))
	}
	return errors.Join(errs...)
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. shipit.json / shipit.yaml / shipit.yml next to the running binary
//  3. the same names in ~/.config/retro-cam
//
// Without an explicit path and no file found, the defaults are returned
// with an empty source.
func Load(explicitPath string) (cfg Config, source string, err error) {
	if explicitPath != "" {
		cfg, err = readConfig(explicitPath)
		return cfg, explicitPath, err
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, paths.DataDir())

	for _, dir := range dirs {
		for _, name := range paths.ConfigCandidates {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				cfg, err = readConfig(p)
				return cfg, p, err
			}
		}
	}
	return Default(), "", nil
}

// LoadEnv loads KEY=VALUE pairs from a .env file in dir into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnv(dir string) error {
	p := filepath.Join(dir, paths.DotEnvFileName)
	if _, err := os.Stat(p); err != nil {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("loading %s: %w", p, err)
	}
	return nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data as YAML when ext is ".yaml" or ".yml" and as JSON
// otherwise.
func Parse(data []byte, ext string) (Config, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		cfg := Default()
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	default:
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
}
