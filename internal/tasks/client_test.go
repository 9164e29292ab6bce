package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/frenchmaster/internal/entities"
	"github.com/mrlokans/frenchmaster/internal/flashcards"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := DefaultConfig()
	client, err := NewClient(filepath.Join(t.TempDir(), "content.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "frenchmaster-tasks.db"), DBPath(filepath.Join("data", "frenchmaster.db")))
	assert.Equal(t, "store-tasks", DBPath("store"))
}

func TestNewClient(t *testing.T) {
	dir := t.TempDir()

	client, err := NewClient(filepath.Join(dir, "content.db"), DefaultConfig())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "content-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.False(t, client.Running())
	assert.NoError(t, client.Close())
}

func TestClient_StartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	require.Eventually(t, client.Running, time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx))
	assert.False(t, client.Running())
}

type fakeRefresher struct {
	calls chan string
}

func (f *fakeRefresher) Refresh(ctx context.Context) flashcards.Status {
	f.calls <- "refresh"
	return flashcards.Status{Mode: flashcards.ModeReady, Initialized: true}
}

func TestClient_RunsRefreshContent(t *testing.T) {
	client := newTestClient(t)
	refresher := &fakeRefresher{calls: make(chan string, 1)}
	client.Register(NewRefreshContentQueue(refresher))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(RefreshContentTask{Reason: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-refresher.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh task was not executed within timeout")
	}
}

func TestRefreshContentTask_Config(t *testing.T) {
	cfg := RefreshContentTask{}.Config()

	assert.Equal(t, "refresh_content", cfg.Name)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestRefreshContentProcessor_NoRefresher(t *testing.T) {
	err := RefreshContentProcessor(nil)(context.Background(), RefreshContentTask{})
	assert.Error(t, err)
}

type fakePurger struct {
	report maintenance.Report
	err    error
	got    PurgePredefinedTask
}

func (f *fakePurger) Purge(ctx context.Context, categories []entities.Category, dryRun bool) (maintenance.Report, error) {
	f.got = PurgePredefinedTask{Categories: categories, DryRun: dryRun}
	return f.report, f.err
}

func TestPurgePredefinedProcessor(t *testing.T) {
	purger := &fakePurger{report: maintenance.Report{Categories: []maintenance.CategoryReport{
		{Category: entities.CategoryVerb, Matched: 2, Deleted: 2},
	}}}
	refresher := &fakeRefresher{calls: make(chan string, 1)}

	task := PurgePredefinedTask{Categories: []entities.Category{entities.CategoryVerb}}
	require.NoError(t, PurgePredefinedProcessor(purger, refresher)(context.Background(), task))

	assert.Equal(t, task, purger.got)
	select {
	case <-refresher.calls:
	default:
		t.Fatal("cache was not refreshed after purge")
	}
}

func TestPurgePredefinedProcessor_DryRunDoesNotRefresh(t *testing.T) {
	purger := &fakePurger{report: maintenance.Report{DryRun: true}}
	refresher := &fakeRefresher{calls: make(chan string, 1)}

	require.NoError(t, PurgePredefinedProcessor(purger, refresher)(context.Background(), PurgePredefinedTask{DryRun: true}))
	assert.Empty(t, refresher.calls)
}

func TestPurgePredefinedProcessor_Failure(t *testing.T) {
	purger := &fakePurger{err: errors.New("disk full")}

	err := PurgePredefinedProcessor(purger, nil)(context.Background(), PurgePredefinedTask{})
	assert.ErrorContains(t, err, "disk full")
}

func TestPurgePredefinedTask_Config(t *testing.T) {
	cfg := PurgePredefinedTask{}.Config()

	assert.Equal(t, "purge_predefined", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

var _ backlite.Task = RefreshContentTask{}
var _ backlite.Task = PurgePredefinedTask{}
