package action

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopAsync(name string) AsyncAction {
	return AsyncAction{
		Name: name,
		Execute: ExecutionFunc[any, any](func(context.Context, *ActionContext[any]) (any, error) {
			return nil, nil
		}),
	}
}

func TestRegistryResolution(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterAsync(noopAsync("feed.refresh")))
	require.NoError(t, r.RegisterTaskAsync(TaskHandlerAsyncAction{
		Name: "notify.followers",
		Execute: TaskHandlerExecutionFunc[any, any](func(context.Context, *TaskHandlerContext[any]) (any, error) {
			return nil, nil
		}),
	}))

	_, ok := r.Resolve("feed.refresh")
	assert.True(t, ok)

	_, ok = r.ResolveTask("notify.followers")
	assert.True(t, ok)

	_, ok = r.Resolve("notify.followers")
	assert.False(t, ok, "task action must not resolve as plain")

	assert.Equal(t, []string{"feed.refresh", "notify.followers"}, r.Keys())
}

func TestRegistryRejectsBadKeys(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterAsync(noopAsync(""))
	assert.Error(t, err)

	require.NoError(t, r.RegisterAsync(noopAsync("feed.refresh")))
	err = r.RegisterAsync(noopAsync("feed.refresh"))
	assert.Error(t, err, "duplicate key must be rejected")

	err = r.RegisterTaskAsync(TaskHandlerAsyncAction{Name: "feed.refresh"})
	assert.Error(t, err, "duplicate across kinds must be rejected")
}

type scheduledRefresh struct {
	runs *int
}

func (a scheduledRefresh) ScheduleHandler() func() error {
	return func() error {
		*a.runs++
		return nil
	}
}

func (a scheduledRefresh) ScheduleOptions() ScheduleConfig {
	return ScheduleConfig{
		Expression: "0 3 * * *",
		MaxRetries: 3,
		Timeout:    time.Hour,
	}
}

type cliRefresh struct{}

type cliRefreshFlags struct{}

func (cliRefresh) CLIHandler() any { return &cliRefreshFlags{} }

func (cliRefresh) CLIOptions() CLIConfig {
	return CLIConfig{
		Name:        "feed-refresh",
		Description: "Refresh external feeds",
		Group:       "maintenance",
	}
}

func TestRegistryInitialize(t *testing.T) {
	t.Run("cron hook receives scheduled commands", func(t *testing.T) {
		runs := 0
		var registered []ScheduleConfig

		r := NewRegistry().SetCronRegister(func(opts ScheduleConfig, handler func() error) error {
			registered = append(registered, opts)
			return handler()
		})

		require.NoError(t, r.RegisterAsync(noopAsync("feed.refresh")))
		require.NoError(t, r.RegisterCommand(scheduledRefresh{runs: &runs}))

		require.NoError(t, r.Initialize())
		require.Len(t, registered, 1)
		assert.Equal(t, "0 3 * * *", registered[0].Expression)
		assert.Equal(t, 1, runs)
	})

	t.Run("missing cron hook fails scheduled registration", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterCommand(scheduledRefresh{runs: new(int)}))

		assert.Error(t, r.Initialize())
	})

	t.Run("cli options require initialization", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.RegisterCommand(cliRefresh{}))

		_, err := r.GetCLIOptions()
		assert.Error(t, err)

		require.NoError(t, r.SetCronRegister(NilCronRegister).Initialize())

		opts, err := r.GetCLIOptions()
		require.NoError(t, err)
		assert.Len(t, opts, 1)
	})

	t.Run("registration closes after initialize", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Initialize())
		assert.Error(t, r.Initialize())
		assert.Error(t, r.RegisterCommand(cliRefresh{}))
	})

	t.Run("nil command is rejected", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.RegisterCommand(nil))
	})
}

func TestCLIConfigBuildTags(t *testing.T) {
	tags := CLIConfig{Aliases: []string{"fr", "refresh"}, Hidden: true}.BuildTags()
	require.Len(t, tags, 2)
	assert.Equal(t, "aliases:fr,refresh", tags[0])
	assert.Equal(t, `hidden:""`, tags[1])

	assert.Empty(t, CLIConfig{}.BuildTags())
}
