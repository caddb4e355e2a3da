package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/labinv/internal/reference"
	"github.com/sells-group/labinv/internal/resilience"
	"github.com/sells-group/labinv/internal/store"
)

// openStore opens the configured store and applies its schema.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		// The database may still be starting; retry refused connections.
		retry := storeRetry()
		retry.OnRetry = resilience.RetryLogger("connect")
		st, err = resilience.DoVal(ctx, retry, func(ctx context.Context) (store.Store, error) {
			return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
				MaxConns: cfg.Store.MaxConns,
				MinConns: cfg.Store.MinConns,
			})
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadMatcher builds a matcher over the configured knowledge base.
func loadMatcher() (*reference.Matcher, error) {
	kb, err := reference.Load(cfg.Reference.Path)
	if err != nil {
		return nil, err
	}
	tb, err := reference.ParseTieBreak(cfg.Reference.TieBreak)
	if err != nil {
		return nil, err
	}
	return reference.NewMatcher(kb, tb)
}

// storeRetry is the retry policy for transient store errors.
func storeRetry() resilience.RetryConfig {
	r := cfg.Store.Retry
	return resilience.FromRetryConfig(r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs)
}
