// Package fetch downloads case records and dispatches them to the overview store.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kennygrant/codash/metrics"
	"github.com/kennygrant/codash/overview"
	"github.com/kennygrant/codash/series"
	"github.com/kennygrant/codash/storage"
)

// Dispatcher receives actions, usually an *overview.Store
type Dispatcher interface {
	Dispatch(action overview.Action) overview.State
}

// Options configure a Fetcher, only URL is required
type Options struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client

	// Cache and Archive may be nil
	Cache       *storage.Cache
	Archive     *storage.Archive
	ArchiveKeep int

	Log *zap.Logger
}

// Fetcher gets records from the cache or the network and archives them
type Fetcher struct {
	url         string
	client      *http.Client
	cache       *storage.Cache
	archive     *storage.Archive
	archiveKeep int
	log         *zap.Logger
}

// New returns a fetcher for options
func New(options Options) *Fetcher {
	client := options.Client
	if client == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		url:         options.URL,
		client:      client,
		cache:       options.Cache,
		archive:     options.Archive,
		archiveKeep: options.ArchiveKeep,
		log:         log,
	}
}

// Fetch returns the cached records if fresh, otherwise downloads them,
// then stores them in the cache and the archive
func (f *Fetcher) Fetch(ctx context.Context) ([]series.Record, error) {
	started := time.Now()
	defer func() {
		metrics.FetchDurationMs.Observe(float64(time.Since(started).Milliseconds()))
	}()

	records, ok, err := f.cache.Get(ctx)
	if err != nil {
		f.log.Warn("fetch: cache read failed", zap.Error(err))
	}
	if ok && len(records) > 0 {
		f.log.Debug("fetch: using cached records", zap.Int("records", len(records)))
		metrics.FetchesTotal.WithLabelValues(metrics.FetchCache).Inc()
		return records, nil
	}

	records, err = f.download(ctx)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(metrics.FetchFail).Inc()
		return nil, err
	}
	metrics.FetchesTotal.WithLabelValues(metrics.FetchNetwork).Inc()
	f.log.Info("fetch: downloaded records", zap.String("url", f.url), zap.Int("records", len(records)))

	f.store(ctx, records)
	return records, nil
}

// Import reads records in the api format from r, checks they parse and stores them
// as if they had been fetched
func (f *Fetcher) Import(ctx context.Context, r io.Reader) ([]series.Record, error) {
	records, err := series.DecodeRecords(r)
	if err != nil {
		return nil, fmt.Errorf("fetch: import:%w", err)
	}

	dataset, err := series.Parse(records, series.DefaultParseOptions())
	if err != nil {
		return nil, fmt.Errorf("fetch: import:%w", err)
	}
	f.log.Info("fetch: imported records", zap.Int("records", len(records)), zap.Stringer("dataset", dataset))

	f.store(ctx, records)
	return records, nil
}

// download gets the records from the network
func (f *Fetcher) download(ctx context.Context) ([]series.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: invalid request:%w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed:%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status:%d url:%s", resp.StatusCode, f.url)
	}

	records, err := series.DecodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fetch: %w", series.ErrNoRecords)
	}
	return records, nil
}

// store writes records to the cache and archive, failures are logged only
func (f *Fetcher) store(ctx context.Context, records []series.Record) {
	if err := f.cache.Put(ctx, records); err != nil {
		f.log.Warn("fetch: cache write failed", zap.Error(err))
	}

	if f.archive == nil {
		return
	}
	if err := f.archive.Save(ctx, records); err != nil {
		f.log.Warn("fetch: archive write failed", zap.Error(err))
		return
	}
	if f.archiveKeep > 0 {
		removed, err := f.archive.Prune(ctx, f.archiveKeep)
		if err != nil {
			f.log.Warn("fetch: archive prune failed", zap.Error(err))
		} else if removed > 0 {
			f.log.Debug("fetch: archive pruned", zap.Int64("removed", removed))
		}
	}
}

// Load resets the state, fetches and dispatches the result
func (f *Fetcher) Load(ctx context.Context, store Dispatcher) error {
	store.Dispatch(overview.GetDataStart{})

	records, err := f.Fetch(ctx)
	if err != nil {
		f.log.Error("fetch: load failed", zap.Error(err))
		store.Dispatch(overview.GetDataFail{Error: err.Error()})
		return err
	}

	f.dispatchRecords(store, records)
	return nil
}

// Refresh fetches and dispatches new records without resetting the state first,
// so the current data stays visible while the fetch runs.
// A failure is shown as a notification and the current data kept.
func (f *Fetcher) Refresh(ctx context.Context, store Dispatcher) error {
	records, err := f.Fetch(ctx)
	if err != nil {
		f.log.Warn("fetch: refresh failed", zap.Error(err))
		store.Dispatch(overview.SetNotification{Message: err.Error(), Variant: overview.VariantDanger})
		return err
	}

	f.dispatchRecords(store, records)
	return nil
}

// Restore dispatches the latest archived records and returns when they were fetched
func (f *Fetcher) Restore(ctx context.Context, store Dispatcher) (time.Time, error) {
	if f.archive == nil {
		return time.Time{}, fmt.Errorf("fetch: restore: %w", storage.ErrEmpty)
	}

	records, fetchedAt, err := f.archive.Latest(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrEmpty) {
			f.log.Error("fetch: restore failed", zap.Error(err))
		}
		return time.Time{}, err
	}

	metrics.FetchesTotal.WithLabelValues(metrics.FetchArchive).Inc()
	f.log.Info("fetch: restored archive", zap.Time("fetched", fetchedAt), zap.Int("records", len(records)))
	f.dispatchRecords(store, records)
	return fetchedAt, nil
}

func (f *Fetcher) dispatchRecords(store Dispatcher, records []series.Record) {
	state := store.Dispatch(overview.GetDataSuccess{Records: records})
	if state.LoadingStatus == overview.StatusSuccess {
		metrics.RecordsLoaded.Set(float64(len(records)))
	}
}
