// Package notifier announces the result of a watched CI run over MQTT,
// NATS, a webhook, chat channels (Slack, Discord, Telegram), a desktop
// toast and a local chime. Delivery is best-effort: the caller prints
// failures as warnings.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanyoog/retro-cam/internal/audio"
	"github.com/sanyoog/retro-cam/internal/config"
	"github.com/sanyoog/retro-cam/internal/discord"
	"github.com/sanyoog/retro-cam/internal/mqtt"
	"github.com/sanyoog/retro-cam/internal/natspub"
	"github.com/sanyoog/retro-cam/internal/runner"
	"github.com/sanyoog/retro-cam/internal/slack"
	"github.com/sanyoog/retro-cam/internal/telegram"
	"github.com/sanyoog/retro-cam/internal/tmpl"
	"github.com/sanyoog/retro-cam/internal/toast"
	"github.com/sanyoog/retro-cam/internal/webhook"
)

// Event is the payload sent to every channel.
type Event struct {
	Time       time.Time `json:"time"`
	Repo       string    `json:"repo"`
	Branch     string    `json:"branch"`
	Tag        string    `json:"tag"`
	RunID      int64     `json:"run_id,omitempty"`
	Outcome    string    `json:"outcome"` // success | failure | timeout | none
	Conclusion string    `json:"conclusion,omitempty"`
	URL        string    `json:"url"`
	Elapsed    string    `json:"elapsed,omitempty"`
}

// soundFor maps an outcome to its chime. Outcomes without a chime
// return "".
func soundFor(outcome string) string {
	switch outcome {
	case "success":
		return audio.SoundSuccess
	case "failure":
		return audio.SoundError
	case "timeout":
		return audio.SoundTimeout
	}
	return ""
}

// Notifier fans an Event out to the configured channels.
type Notifier struct {
	cfg config.Notify

	publish func(mqtt.Message) error
	nats    func(ctx context.Context, url, subject string, payload []byte) error
	post    func(ctx context.Context, url, body string, headers map[string]string) error
	slack   func(ctx context.Context, url, message string) error
	discord func(ctx context.Context, url, message string) error
	tg      func(ctx context.Context, token, chatID, message string) error
	toast   func(ctx context.Context, title, message string) error
	play    func(name string, volume float64) error
	newID   func() string
}

// New returns a Notifier for cfg.
func New(cfg config.Notify) *Notifier {
	quiet := &runner.Runner{Report: io.Discard}
	return &Notifier{
		cfg:     cfg,
		publish: mqtt.Publish,
		nats:    natspub.Publish,
		post:    webhook.Send,
		slack:   slack.Send,
		discord: discord.Send,
		tg:      telegram.Send,
		toast: func(ctx context.Context, title, message string) error {
			return toast.Show(ctx, quiet, title, message)
		},
		play:  audio.Play,
		newID: func() string { return uuid.NewString() },
	}
}

// Enabled reports whether any channel is configured.
func (n *Notifier) Enabled() bool {
	c := n.cfg
	return c.MQTT.Broker != "" || c.NATS.URL != "" || c.Webhook.URL != "" ||
		c.Slack.WebhookURL != "" || c.Discord.WebhookURL != "" ||
		c.Sound || c.Desktop ||
		(c.Telegram.Token != "" && c.Telegram.ChatID != "")
}

// Text renders the chat message for ev from the configured template.
func (n *Notifier) Text(ev Event) string {
	msg := n.cfg.Message
	if msg == "" {
		msg = config.DefaultMessage
	}
	return tmpl.Expand(msg, tmpl.Vars{
		Repo:       ev.Repo,
		Branch:     ev.Branch,
		Tag:        ev.Tag,
		Outcome:    ev.Outcome,
		Conclusion: ev.Conclusion,
		URL:        ev.URL,
		Elapsed:    ev.Elapsed,
	})
}

// Send delivers ev. Network channels run in parallel; the chime plays
// while they are in flight. All failures are joined into one error.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	spawn := func(send func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := send(); err != nil {
				fail(err)
			}
		}()
	}

	if m := n.cfg.MQTT; m.Broker != "" {
		topic := m.Topic
		if topic == "" {
			topic = config.DefaultMQTTTopic
		}
		msg := mqtt.Message{
			Broker:   m.Broker,
			ClientID: "shipit-" + n.newID(),
			Topic:    topic,
			Payload:  string(payload),
			QoS:      m.QoS,
			Retain:   m.Retain,
			Username: os.ExpandEnv(m.Username),
			Password: os.ExpandEnv(m.Password),
		}
		spawn(func() error { return n.publish(msg) })
	}

	if u := os.ExpandEnv(n.cfg.NATS.URL); u != "" {
		subject := n.cfg.NATS.Subject
		if subject == "" {
			subject = config.DefaultNATSSubject
		}
		spawn(func() error { return n.nats(ctx, u, subject, payload) })
	}

	if w := n.cfg.Webhook; w.URL != "" {
		spawn(func() error { return n.post(ctx, w.URL, string(payload), w.Headers) })
	}

	text := n.Text(ev)
	if u := os.ExpandEnv(n.cfg.Slack.WebhookURL); u != "" {
		spawn(func() error { return n.slack(ctx, u, text) })
	}
	if u := os.ExpandEnv(n.cfg.Discord.WebhookURL); u != "" {
		spawn(func() error { return n.discord(ctx, u, text) })
	}
	token := os.ExpandEnv(n.cfg.Telegram.Token)
	chatID := os.ExpandEnv(n.cfg.Telegram.ChatID)
	if token != "" && chatID != "" {
		spawn(func() error { return n.tg(ctx, token, chatID, text) })
	}
	if n.cfg.Desktop {
		title := "shipit: " + tmpl.TitleCase(ev.Outcome)
		spawn(func() error { return n.toast(ctx, title, text) })
	}

	if n.cfg.Sound {
		if name := soundFor(ev.Outcome); name != "" {
			if err := n.play(name, float64(n.cfg.Volume)/100.0); err != nil {
				fail(fmt.Errorf("sound: %w", err))
			}
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}
