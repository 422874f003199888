package action

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-errors"
)

// ScheduleConfig configures recurring dispatch of an action.
type ScheduleConfig struct {
	Expression string        `json:"expression" yaml:"expression"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	RunOnce    bool          `json:"run_once" yaml:"run_once"`
}

// CLIConfig describes how an action surfaces as an ops CLI command.
type CLIConfig struct {
	Name        string
	Description string
	Group       string
	Aliases     []string
	Hidden      bool
}

// BuildTags renders kong struct tags derived from the config.
func (opts CLIConfig) BuildTags() []string {
	var tags []string
	if len(opts.Aliases) > 0 {
		tags = append(tags, "aliases:"+strings.Join(opts.Aliases, ","))
	}
	if opts.Hidden {
		tags = append(tags, `hidden:""`)
	}
	return tags
}

// CLIAction is implemented by actions that want a CLI entry point.
type CLIAction interface {
	CLIHandler() any
	CLIOptions() CLIConfig
}

// ScheduledAction is implemented by actions that run on a cron expression.
type ScheduledAction interface {
	ScheduleHandler() func() error
	ScheduleOptions() ScheduleConfig
}

// NilCronRegister is a cron registration hook that ignores schedules.
func NilCronRegister(opts ScheduleConfig, handler func() error) error {
	return nil
}

// Registry is the explicit actionKey → async action mapping consumed by the
// in-process executing task handler, replacing ambient container lookups.
// It also collects CLI and cron registrations for actions exposing them,
// resolved when Initialize runs.
type Registry struct {
	mu             sync.RWMutex
	plain          map[string]AsyncAction
	task           map[string]TaskHandlerAsyncAction
	pending        []any
	initialized    bool
	cronRegisterFn func(opts ScheduleConfig, handler func() error) error
	cliOptions     []kong.Option
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plain:      make(map[string]AsyncAction),
		task:       make(map[string]TaskHandlerAsyncAction),
		cliOptions: make([]kong.Option, 0),
	}
}

// SetCronRegister installs the scheduler hook invoked during Initialize for
// every registered ScheduledAction.
func (r *Registry) SetCronRegister(fn func(opts ScheduleConfig, handler func() error) error) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cronRegisterFn = fn
	return r
}

// RegisterAsync adds a plain async action under its name.
func (r *Registry) RegisterAsync(act AsyncAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkKey(act.Name); err != nil {
		return err
	}
	r.plain[act.Name] = act
	return nil
}

// RegisterTaskAsync adds a task-handler async action under its name.
func (r *Registry) RegisterTaskAsync(act TaskHandlerAsyncAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkKey(act.Name); err != nil {
		return err
	}
	r.task[act.Name] = act
	return nil
}

func (r *Registry) checkKey(name string) error {
	if name == "" {
		return errors.New("action name cannot be empty", errors.CategoryBadInput).
			WithTextCode("EMPTY_ACTION_KEY")
	}
	if _, dup := r.plain[name]; dup {
		return r.duplicateErr(name)
	}
	if _, dup := r.task[name]; dup {
		return r.duplicateErr(name)
	}
	return nil
}

func (r *Registry) duplicateErr(name string) error {
	return errors.New("action already registered", errors.CategoryConflict).
		WithTextCode("DUPLICATE_ACTION_KEY").
		WithMetadata(map[string]any{
			"action": name,
		})
}

// RegisterCommand collects a value exposing a CLI or cron surface, resolved
// when Initialize runs. The value usually also registers its async action
// through RegisterAsync or RegisterTaskAsync.
func (r *Registry) RegisterCommand(cmd any) error {
	if cmd == nil {
		return errors.New("command cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_COMMAND")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return errors.New("cannot register commands after registry has been initialized", errors.CategoryConflict).
			WithTextCode("REGISTRY_ALREADY_INITIALIZED")
	}
	r.pending = append(r.pending, cmd)

	return nil
}

// Resolve returns the plain async action registered under key.
func (r *Registry) Resolve(key string) (AsyncAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	act, ok := r.plain[key]
	return act, ok
}

// ResolveTask returns the task-handler async action registered under key.
func (r *Registry) ResolveTask(key string) (TaskHandlerAsyncAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	act, ok := r.task[key]
	return act, ok
}

// Keys returns all registered action keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.plain)+len(r.task))
	for k := range r.plain {
		keys = append(keys, k)
	}
	for k := range r.task {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Initialize resolves deferred CLI and cron registrations. Further
// registrations are rejected afterwards.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return errors.New("registry already initialized", errors.CategoryConflict).
			WithTextCode("REGISTRY_ALREADY_INITIALIZED")
	}

	var errs error
	for _, act := range r.pending {
		if cliAct, ok := act.(CLIAction); ok {
			r.registerWithCLI(cliAct)
		}

		if schedAct, ok := act.(ScheduledAction); ok {
			if err := r.registerWithCron(schedAct); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}

	r.initialized = true

	return errs
}

func (r *Registry) registerWithCron(act ScheduledAction) error {
	if r.cronRegisterFn == nil {
		return errors.New("cron scheduler not provided during initialization", errors.CategoryBadInput).
			WithTextCode("CRON_SCHEDULER_NOT_SET")
	}

	handler := act.ScheduleHandler()
	config := act.ScheduleOptions()

	if err := r.cronRegisterFn(config, handler); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "cron scheduler registration failed").
			WithTextCode("CRON_REGISTRATION_FAILED").
			WithMetadata(map[string]any{
				"config": config,
			})
	}

	return nil
}

func (r *Registry) registerWithCLI(act CLIAction) {
	opts := act.CLIOptions()
	handler := act.CLIHandler()

	tags := opts.BuildTags()

	option := kong.DynamicCommand(
		opts.Name,
		opts.Description,
		opts.Group,
		handler,
		tags...,
	)

	r.cliOptions = append(r.cliOptions, option)
}

// GetCLIOptions returns kong options for every registered CLIAction. Only
// valid after Initialize.
func (r *Registry) GetCLIOptions() ([]kong.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil, errors.New("registry not initialized", errors.CategoryConflict).
			WithTextCode("REGISTRY_NOT_INITIALIZED")
	}

	options := make([]kong.Option, len(r.cliOptions))
	copy(options, r.cliOptions)
	return options, nil
}
