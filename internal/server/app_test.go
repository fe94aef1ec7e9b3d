package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageBackend = repomanager.BackendMemory
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	return c
}

func TestNewApp_SeedsCatalog(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.NewNopLogger())
	require.NoError(t, err)

	plans, err := app.orchestrator.Plans(context.Background())
	require.NoError(t, err)
	assert.Len(t, plans, 3)
}

type failingMigrations struct {
	*repomanager.InMemoryRepositoryManager
	closed bool
}

func (f *failingMigrations) RunMigrations(context.Context) error {
	return errors.New("boom")
}

func (f *failingMigrations) Close(context.Context) error {
	f.closed = true
	return nil
}

func TestNewApp_Errors(t *testing.T) {
	orig := openRepositories
	t.Cleanup(func() { openRepositories = orig })

	t.Run("open", func(t *testing.T) {
		openRepositories = func(context.Context, repomanager.Options) (repomanager.RepositoryManager, error) {
			return nil, errors.New("refused")
		}
		_, err := NewApp(context.Background(), memoryConfig(), logging.NewNopLogger())
		assert.ErrorContains(t, err, "db init error")
	})

	t.Run("migrations", func(t *testing.T) {
		rm := &failingMigrations{InMemoryRepositoryManager: repomanager.NewInMemoryRepositoryManager()}
		openRepositories = func(context.Context, repomanager.Options) (repomanager.RepositoryManager, error) {
			return rm, nil
		}
		_, err := NewApp(context.Background(), memoryConfig(), logging.NewNopLogger())
		assert.ErrorContains(t, err, "migrations error")
		assert.True(t, rm.closed)
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
