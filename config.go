package action

import (
	"time"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// Config is the deployable configuration for the framework's collaborators:
// the task queue, the local cache store, retry behavior for queue publishes,
// and cron schedules for recurring actions.
type Config struct {
	Queue     QueueConfig     `json:"queue" yaml:"queue"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Retry     RetryConfig     `json:"retry" yaml:"retry"`
	Schedules []ScheduleEntry `json:"schedules" yaml:"schedules"`
}

// QueueConfig points the queue task handler at its broker destination.
type QueueConfig struct {
	URL     string `json:"url" yaml:"url"`
	Subject string `json:"subject" yaml:"subject"`
}

// StoreConfig locates the embedded cache store file.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// RetryConfig tunes publish retries for the queue task handler.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	Base       time.Duration `json:"base" yaml:"base"`
	Factor     float64       `json:"factor" yaml:"factor"`
	Max        time.Duration `json:"max" yaml:"max"`
}

// UnmarshalYAML accepts human-readable durations ("100ms", "5s") for the
// backoff fields.
func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxRetries int     `yaml:"max_retries"`
		Base       string  `yaml:"base"`
		Factor     float64 `yaml:"factor"`
		Max        string  `yaml:"max"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.MaxRetries = raw.MaxRetries
	r.Factor = raw.Factor

	var err error
	if raw.Base != "" {
		if r.Base, err = time.ParseDuration(raw.Base); err != nil {
			return err
		}
	}
	if raw.Max != "" {
		if r.Max, err = time.ParseDuration(raw.Max); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleEntry binds a cron expression to a queued action.
type ScheduleEntry struct {
	Expression string `json:"expression" yaml:"expression"`
	ActionKey  string `json:"action_key" yaml:"action_key"`
	Params     any    `json:"params" yaml:"params"`
}

// ParseConfig parses JSON or YAML into a Config and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		// yaml handles JSON too, so a single attempt is fine
		return cfg, errors.Wrap(err, errors.CategoryBadInput, "config parse failed").
			WithTextCode("CONFIG_PARSE_FAILED")
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field consistency. A queue subject without a URL (or
// the reverse) is a misconfiguration the queue handler would otherwise only
// notice at publish time.
func (c Config) Validate() error {
	var errs error

	if (c.Queue.URL == "") != (c.Queue.Subject == "") {
		errs = errors.Join(errs, errors.New("queue url and subject must be set together", errors.CategoryBadInput).
			WithTextCode("CONFIG_QUEUE_INCOMPLETE"))
	}

	if c.Retry.MaxRetries < 0 {
		errs = errors.Join(errs, errors.New("retry max_retries cannot be negative", errors.CategoryBadInput).
			WithTextCode("CONFIG_RETRY_INVALID"))
	}

	for i, entry := range c.Schedules {
		if entry.Expression == "" || entry.ActionKey == "" {
			errs = errors.Join(errs, errors.New("schedule entries require expression and action_key", errors.CategoryBadInput).
				WithTextCode("CONFIG_SCHEDULE_INVALID").
				WithMetadata(map[string]any{
					"index": i,
				}))
		}
	}

	return errs
}
