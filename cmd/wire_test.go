package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventara/events-cli/internal/config"
	"github.com/eventara/events-cli/internal/store"
)

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: ":memory:"},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	assert.IsType(t, &store.SQLiteStore{}, st)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "duckdb"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitCache_MatchesBackend(t *testing.T) {
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close()

	cache, err := initCache(st)
	require.NoError(t, err)
	assert.NotNil(t, cache)
}
