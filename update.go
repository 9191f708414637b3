package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kennygrant/codash/config"
	"github.com/kennygrant/codash/fetch"
	"github.com/kennygrant/codash/metrics"
	"github.com/kennygrant/codash/overview"
	"github.com/kennygrant/codash/storage"
)

// app holds the components shared by the commands
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	archive *storage.Archive
	cache   *storage.Cache
	fetcher *fetch.Fetcher
	store   *overview.Store
}

// newApp opens the archive and cache and sets up a store and fetcher
func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	archive, err := storage.OpenArchive(cfg.Archive)
	if err != nil {
		return nil, err
	}

	client := storage.OpenRedis(cfg.Redis.Addr(), cfg.Redis.Pass, cfg.Redis.DB)
	if client == nil {
		log.Info("server: redis cache disabled")
	}
	cache := storage.NewCache(client, cfg.CacheTTL)

	fetcher := fetch.New(fetch.Options{
		URL:         cfg.DataURL,
		Timeout:     cfg.FetchTimeout,
		Cache:       cache,
		Archive:     archive,
		ArchiveKeep: cfg.ArchiveKeep,
		Log:         log,
	})

	store := overview.NewStore(overview.NewReducer(cfg.Preselected), log)
	store.Subscribe(func(action overview.Action, state overview.State) {
		if action != nil {
			metrics.DispatchesTotal.WithLabelValues(action.Type()).Inc()
		}
	})

	return &app{
		cfg:     cfg,
		log:     log,
		archive: archive,
		cache:   cache,
		fetcher: fetcher,
		store:   store,
	}, nil
}

// Close releases the archive
func (a *app) Close() {
	if err := a.archive.Close(); err != nil {
		a.log.Warn("server: failed to close archive", zap.Error(err))
	}
}

// loadData restores the archived records so that we can serve at once,
// then fetches fresh data. If nothing is archived it waits for the fetch.
func (a *app) loadData(ctx context.Context) error {
	fetchedAt, err := a.fetcher.Restore(ctx, a.store)
	if err != nil {
		if !errors.Is(err, storage.ErrEmpty) {
			a.log.Warn("server: failed to restore archive", zap.Error(err))
		}
		return a.fetcher.Load(ctx, a.store)
	}

	a.log.Info("server: restored data", zap.Duration("age", time.Since(fetchedAt)))
	go a.refresh(ctx)
	return nil
}

// refresh fetches new data, failures are logged by the fetcher
func (a *app) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()
	_ = a.fetcher.Refresh(ctx, a.store)
}

// scheduleUpdates refreshes data every fetch interval until ctx is done
func (a *app) scheduleUpdates(ctx context.Context) <-chan struct{} {
	next := fetch.NextInterval(time.Now().UTC(), a.cfg.FetchInterval)
	a.log.Info("server: scheduling updates", zap.Time("next", next), zap.Duration("interval", a.cfg.FetchInterval))
	return fetch.ScheduleAt(ctx, func() { a.refresh(ctx) }, next, a.cfg.FetchInterval)
}
