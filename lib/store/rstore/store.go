package rstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gridkv/gridkv/lib/dotpath"
	"github.com/gridkv/gridkv/lib/store"
	"github.com/gridkv/gridkv/lib/store/rstore/internal"
	"github.com/gridkv/gridkv/remote"
	"github.com/gridkv/gridkv/remote/codec"
	"github.com/puzpuzpuz/xsync/v3"
)

// Layout of the mirrored table: row 1 holds the column labels, data rows
// follow. Column A holds the key, column B the encoded value.
const (
	headerRows = 1
	colKey     = 0
	colValue   = 1
)

// rowOf converts an index position to the 1-based remote row number.
func rowOf(pos int) int {
	return pos + headerRows + 1
}

// Config holds the identifying fields of a remote-mirrored store.
type Config struct {
	// Name identifies the store instance in logs and metrics.
	Name string

	// Key is the expected header label of the key column. Hydration logs a
	// warning when the remote header disagrees, it does not fail.
	Key string

	// Codec translates values to and from cell text.
	// Optional, defaults to the JSON codec.
	Codec codec.ICellCodec

	// Logger is the structured logger for lifecycle and replication events.
	// Optional, defaults to slog.Default().
	Logger *slog.Logger
}

// storeImpl is the concrete implementation of the store.IStore interface.
// It keeps the authoritative value cache, the row index tying every key to
// its remote row, and the table client all mutations are replicated to.
type storeImpl struct {
	config  Config
	factory store.TableFactory
	logger  *slog.Logger
	codec   codec.ICellCodec

	openOnce sync.Once
	openErr  error
	ready    atomic.Bool
	report   store.HydrationReport

	table remote.ITableClient
	cache *xsync.MapOf[string, any]
	index *internal.RowIndex

	// layout guards the index and the row numbers derived from it. Writers
	// that change row positions (row append, row delete) hold the write lock
	// across their remote call so the remote row order and the index change
	// in one step; cell updates hold the read lock across their call so a
	// concurrent deletion cannot shift their row away under them.
	layout sync.RWMutex

	// keyLocks serializes all mutations of a single key.
	keyLocks *xsync.MapOf[string, *sync.Mutex]

	mReads        *metrics.Counter
	mWrites       *metrics.Counter
	mDeletes      *metrics.Counter
	mRemoteErrors *metrics.Counter
}

// New creates a store instance that mirrors the remote table produced by
// factory. The instance starts out not ready: call Open to authorize the
// remote connection and hydrate the mirror.
func New(config Config, factory store.TableFactory) (store.IStore, error) {
	if config.Name == "" {
		return nil, store.NewError(store.RetCConfig, "store name must be set")
	}
	if config.Key == "" {
		return nil, store.NewError(store.RetCConfig, "key column label must be set")
	}
	if factory == nil {
		return nil, store.NewError(store.RetCConfig, "table factory must be set")
	}
	if config.Codec == nil {
		config.Codec = codec.NewJSONCodec()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &storeImpl{
		config:        config,
		factory:       factory,
		logger:        config.Logger.With("store", config.Name),
		codec:         config.Codec,
		cache:         xsync.NewMapOf[string, any](),
		index:         internal.NewRowIndex(),
		keyLocks:      xsync.NewMapOf[string, *sync.Mutex](),
		mReads:        metrics.GetOrCreateCounter(fmt.Sprintf(`gridkv_store_reads_total{store=%q}`, config.Name)),
		mWrites:       metrics.GetOrCreateCounter(fmt.Sprintf(`gridkv_store_writes_total{store=%q}`, config.Name)),
		mDeletes:      metrics.GetOrCreateCounter(fmt.Sprintf(`gridkv_store_deletes_total{store=%q}`, config.Name)),
		mRemoteErrors: metrics.GetOrCreateCounter(fmt.Sprintf(`gridkv_store_remote_errors_total{store=%q}`, config.Name)),
	}, nil
}

// --------------------------------------------------------------------------
// Internal methods (used by the interface methods)
// --------------------------------------------------------------------------

// guard returns a RetCNotReady error while the store is not hydrated.
func (s *storeImpl) guard() error {
	if !s.ready.Load() {
		return store.NewError(store.RetCNotReady, "store is not ready, call Open first")
	}
	return nil
}

// lockKey acquires the mutation lock for key and returns its unlock func.
//
// Thread-safety: locks for new keys are created lock-free, the first caller
// wins and every later caller blocks on the same mutex.
func (s *storeImpl) lockKey(key string) func() {
	mu, _ := s.keyLocks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}

// open authorizes the remote connection and hydrates the mirror. Called
// exactly once, from Open.
func (s *storeImpl) open(ctx context.Context) error {
	s.logger.Info("authorizing remote table client")
	table, err := s.factory(ctx)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("authorization failed: %v", err))
	}
	s.table = table

	s.logger.Info("hydrating from remote table")
	rows, err := table.FetchAll(ctx)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("hydration fetch failed: %v", err))
	}
	s.hydrate(rows)

	s.logger.Info("store ready",
		"rows", s.report.Rows,
		"loaded", s.report.Loaded,
		"skipped", len(s.report.Skipped),
	)
	return nil
}

// hydrate populates cache and index from a full table fetch. Runs before the
// store is marked ready, so no locking is needed.
func (s *storeImpl) hydrate(rows [][]string) {
	if len(rows) == 0 {
		// a table without a header row would make appended rows land in
		// row 1 and break the positional addressing
		s.logger.Warn("remote table is empty, expected a header row")
	}

	report := store.HydrationReport{}
	skip := func(rowNum int, reason string) {
		report.Skipped = append(report.Skipped, store.SkippedRow{Row: rowNum, Reason: reason})
		s.logger.Warn("skipping remote row", "row", rowNum, "reason", reason)
	}

	for i, row := range rows {
		rowNum := i + 1

		if rowNum <= headerRows {
			if len(row) <= colKey || row[colKey] != s.config.Key {
				s.logger.Warn("remote header does not match configured key column",
					"row", rowNum, "want", s.config.Key)
			}
			continue
		}
		report.Rows++

		if len(row) == 0 {
			skip(rowNum, "empty row")
			continue
		}
		key := row[colKey]
		if key == "" {
			skip(rowNum, "empty key cell")
			continue
		}
		if _, ok := s.index.PositionOf(key); ok {
			skip(rowNum, fmt.Sprintf("duplicate key %q", key))
			continue
		}

		var cell string
		if len(row) > colValue {
			cell = row[colValue]
		}
		value, err := s.codec.Decode(cell)
		if err != nil {
			// the cell is not valid encoded data, keep it as raw text
			value = cell
		}

		s.index.Append(key)
		s.cache.Store(key, value)
		report.Loaded++
	}

	s.report = report
}

// nextValue computes the value to store for key after writing value at path.
// Must be called with the key lock held so the read-modify-write against the
// current value is atomic per key.
func (s *storeImpl) nextValue(key, path string, value any) (any, error) {
	if path == "" {
		return value, nil
	}

	// deep-set into a clone of the current structure; a prior scalar (or an
	// absent key) starts from an empty structure
	var root any
	if current, ok := s.cache.Load(key); ok && dotpath.IsContainer(current) {
		root = dotpath.Clone(current)
	}
	root, err := dotpath.Set(root, path, value)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("invalid path %q: %v", path, err))
	}
	return root, nil
}

// write stores next as the value of key and replicates it to the remote
// table. Must be called with the key lock held.
//
// The cache is updated before the remote call: a concurrent reader observes
// the new value while replication is still in flight. Whether the write
// replicates as a cell update or a row append is decided by index
// membership, not cache membership - the index only ever tracks rows the
// remote table has confirmed, so an entry whose append failed earlier is
// retried as an append by the next write.
func (s *storeImpl) write(ctx context.Context, key string, next any) error {
	cell, err := s.codec.Encode(next)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("cannot encode value: %v", err))
	}

	s.cache.Store(key, next)

	s.layout.RLock()
	if pos, ok := s.index.PositionOf(key); ok {
		err := s.table.UpdateCell(ctx, rowOf(pos), colValue, cell)
		s.layout.RUnlock()
		if err != nil {
			s.mRemoteErrors.Inc()
			return store.NewError(store.RetCInternalError, fmt.Sprintf("cell update failed: %v", err))
		}
		return nil
	}
	s.layout.RUnlock()

	s.layout.Lock()
	defer s.layout.Unlock()

	if err := s.table.AppendRow(ctx, []string{key, cell}); err != nil {
		s.mRemoteErrors.Inc()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("row append failed: %v", err))
	}
	s.index.Append(key)
	// re-store under the layout lock: a DeleteAll that slipped between the
	// first store and here has wiped the cache entry, the appended row must
	// stay mirrored
	s.cache.Store(key, next)
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Open(ctx context.Context) error {
	s.openOnce.Do(func() {
		s.openErr = s.open(ctx)
		if s.openErr == nil {
			s.ready.Store(true)
		} else {
			s.logger.Error("store failed to open", "error", s.openErr)
		}
	})
	return s.openErr
}

func (s *storeImpl) Ready() bool {
	return s.ready.Load()
}

func (s *storeImpl) Get(key, path string) (any, bool, error) {
	if err := s.guard(); err != nil {
		return nil, false, err
	}
	s.mReads.Inc()

	current, ok := s.cache.Load(key)
	if !ok {
		return nil, false, nil
	}

	// scalars ignore the path
	if path == "" || !dotpath.IsContainer(current) {
		return dotpath.Clone(current), true, nil
	}

	sub, ok := dotpath.Get(current, path)
	if !ok {
		return nil, false, nil
	}
	return dotpath.Clone(sub), true, nil
}

func (s *storeImpl) Ensure(key, path string, def any) (any, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mReads.Inc()

	current, ok := s.cache.Load(key)
	if !ok {
		return def, nil
	}

	if path == "" || !dotpath.IsContainer(current) {
		return dotpath.Clone(current), nil
	}

	sub, ok := dotpath.Get(current, path)
	if !ok {
		return nil, nil
	}
	return dotpath.Clone(sub), nil
}

func (s *storeImpl) Set(ctx context.Context, key, path string, value any) error {
	if err := s.guard(); err != nil {
		return err
	}
	if value == nil {
		return store.NewError(store.RetCInvalidValue, "cannot store nil value")
	}
	s.mWrites.Inc()

	unlock := s.lockKey(key)
	defer unlock()

	next, err := s.nextValue(key, path, value)
	if err != nil {
		return err
	}
	return s.write(ctx, key, next)
}

func (s *storeImpl) Delete(ctx context.Context, key, path string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mDeletes.Inc()

	unlock := s.lockKey(key)
	defer unlock()

	current, ok := s.cache.Load(key)
	if !ok {
		// deleting an absent key is a no-op
		return nil
	}

	// a path delete prunes the sub-field and replicates as a cell update
	if path != "" {
		if !dotpath.IsContainer(current) {
			return store.NewError(store.RetCInvalidOperation,
				fmt.Sprintf("cannot delete path %q from scalar value", path))
		}
		next, removed := dotpath.Unset(dotpath.Clone(current), path)
		if !removed {
			return nil
		}
		return s.write(ctx, key, next)
	}

	// a full delete removes the remote row; the index entry and the cache
	// entry drop only after the remote accepted, so a failed call leaves the
	// mirror consistent with the table
	s.layout.Lock()
	defer s.layout.Unlock()

	pos, ok := s.index.PositionOf(key)
	if !ok {
		// the entry never made it into the remote table (failed append),
		// there is no row to delete
		s.cache.Delete(key)
		return nil
	}

	row := rowOf(pos)
	if err := s.table.DeleteRows(ctx, row, row+1); err != nil {
		s.mRemoteErrors.Inc()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("row deletion failed: %v", err))
	}
	s.index.Remove(key)
	s.cache.Delete(key)
	return nil
}

func (s *storeImpl) DeleteAll(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mDeletes.Inc()

	s.layout.Lock()
	defer s.layout.Unlock()

	n := s.index.Len()
	if n == 0 {
		// nothing ever reached the remote table, only stray cache entries
		// from failed appends can exist
		s.cache.Clear()
		return nil
	}

	// one bulk deletion spanning every data row
	if err := s.table.DeleteRows(ctx, rowOf(0), rowOf(n)); err != nil {
		s.mRemoteErrors.Inc()
		return store.NewError(store.RetCInternalError, fmt.Sprintf("bulk row deletion failed: %v", err))
	}
	s.index.Clear()
	s.cache.Clear()
	return nil
}

func (s *storeImpl) Keys() []string {
	if !s.ready.Load() {
		return nil
	}
	s.layout.RLock()
	defer s.layout.RUnlock()
	return s.index.Keys()
}

func (s *storeImpl) Len() int {
	if !s.ready.Load() {
		return 0
	}
	s.layout.RLock()
	defer s.layout.RUnlock()
	return s.index.Len()
}

func (s *storeImpl) Report() (store.HydrationReport, error) {
	if err := s.guard(); err != nil {
		return store.HydrationReport{}, err
	}

	report := s.report
	report.Skipped = append([]store.SkippedRow(nil), s.report.Skipped...)
	return report, nil
}
