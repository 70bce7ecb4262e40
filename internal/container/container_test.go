package container

import (
	"context"
	"testing"

	"jmoretti/finledger/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	c, err := New(context.Background(), nil, Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
	assert.Nil(t, c)
}

func TestNewWiresAllDependencies(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)

	c, err := New(context.Background(), cfg, Options{InMemory: true})
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.NotNil(t, c.Logger())
	assert.Equal(t, cfg, c.Config())
	assert.NotNil(t, c.Store())
	assert.NotNil(t, c.Engine())
	assert.NotNil(t, c.Learner())
	assert.NotNil(t, c.Liabilities())
	assert.NotNil(t, c.Ingest())
	assert.NotNil(t, c.Pipeline())

	assert.NoError(t, c.Close())
}

func TestNewOpensSQLiteStore(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Data.Directory = t.TempDir()

	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	require.NotNil(t, c.Store())
	assert.NoError(t, c.Close())
}
