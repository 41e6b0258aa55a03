package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/0xADE/ade-xdgd/internal/category"
	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
	"github.com/0xADE/ade-xdgd/internal/xdg/icon"
)

// ErrSkipped marks an entry rejected by visibility rules or skip patterns.
var ErrSkipped = errors.New("skipped")

// Options control what the indexer resolves and how.
type Options struct {
	Env       basedir.Env
	ExtraDirs []string

	Theme string
	Size  int
	Scale int

	// DesktopEnv filters entries through OnlyShowIn/NotShowIn when set.
	DesktopEnv string
	Lang       string
	// IncludeHidden keeps entries that are not meant for display.
	IncludeHidden bool
	// Skip holds glob patterns matched against desktop IDs.
	Skip    []string
	Workers int

	// Registry maps categories to display names. Optional.
	Registry *category.Registry
}

// Indexer resolves desktop entries and their icons in batches
type Indexer struct {
	opts        Options
	skip        []glob.Glob
	index       *Index
	running     bool
	mu          sync.RWMutex
	runMu       sync.Mutex
	indexCtx    context.Context
	indexCancel context.CancelFunc
	indexWg     sync.WaitGroup
}

// NewIndexer creates a new indexer instance. It fails on a malformed skip
// pattern.
func NewIndexer(opts Options) (*Indexer, error) {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Size < 1 {
		opts.Size = 48
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Theme == "" {
		opts.Theme = icon.FallbackTheme
	}

	idx := &Indexer{
		opts:  opts,
		index: NewIndex(),
	}
	for _, pattern := range opts.Skip {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("skip pattern %q: %w", pattern, err)
		}
		idx.skip = append(idx.skip, g)
	}
	return idx, nil
}

// Start indexes every application found in the data roots
func (idx *Indexer) Start(ctx context.Context) error {
	_, err := idx.Reindex(ctx, nil)
	return err
}

// Reindex resolves the given desktop IDs, or every installed application if
// none are given. A full run replaces the index; a partial run only
// replaces or drops the entries of the given IDs. Per-ID failures are
// aggregated into the returned error and never stop the other IDs.
// Returns the number of entries in the index afterwards.
func (idx *Indexer) Reindex(ctx context.Context, ids []string) (int, error) {
	var base []*Entry
	if len(ids) == 0 {
		ids = desktop.Scan(idx.opts.Env, idx.opts.ExtraDirs, desktop.Applications)
	} else {
		base = idx.GetIndex().GetAll()
	}

	err := idx.runIndexing(ctx, ids, base)

	idx.mu.RLock()
	count := idx.index.Count()
	idx.mu.RUnlock()

	return count, err
}

// runIndexing performs the actual indexing work on top of the base entries.
// The new index replaces the current one only when the run completes.
func (idx *Indexer) runIndexing(ctx context.Context, ids []string, base []*Entry) error {
	// Cancel previous indexing if running
	idx.mu.Lock()
	if idx.running && idx.indexCancel != nil {
		idx.indexCancel()
	}
	idx.mu.Unlock()

	idx.runMu.Lock()
	defer idx.runMu.Unlock()

	indexCtx, cancel := context.WithCancel(ctx)
	idx.mu.Lock()
	idx.indexCtx = indexCtx
	idx.indexCancel = cancel
	idx.running = true
	idx.indexWg.Add(1)
	idx.mu.Unlock()

	defer func() {
		cancel()
		idx.mu.Lock()
		idx.running = false
		idx.mu.Unlock()
		idx.indexWg.Done()
	}()

	index := NewIndex()
	for _, entry := range base {
		index.Add(entry)
	}
	for _, id := range ids {
		index.Remove(id)
	}
	theme, err := icon.LoadTheme(idx.opts.Theme, idx.opts.ExtraDirs, idx.opts.Env)
	if err != nil {
		return fmt.Errorf("loading icon theme %s: %w", idx.opts.Theme, err)
	}
	locator := desktop.NewLocator(desktop.Applications, idx.opts.Env, idx.opts.ExtraDirs)

	var (
		errMu  sync.Mutex
		result *multierror.Error
	)
	g, gctx := errgroup.WithContext(indexCtx)
	g.SetLimit(idx.opts.Workers)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		if idx.skipped(id) {
			slog.Debug("indexer: skipping by pattern", "id", id)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			entry, err := idx.resolve(locator, theme, id)
			if err != nil {
				if !errors.Is(err, ErrSkipped) {
					errMu.Lock()
					result = multierror.Append(result, fmt.Errorf("%s: %w", id, err))
					errMu.Unlock()
				}
				return nil
			}
			index.Add(entry)
			return nil
		})
	}
	_ = g.Wait()

	if err := indexCtx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	idx.index = index
	idx.mu.Unlock()
	slog.Info("indexer: run finished", "entries", index.Count(), "ids", len(ids))
	return result.ErrorOrNil()
}

func (idx *Indexer) skipped(id string) bool {
	for _, g := range idx.skip {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// resolve builds the entry for one desktop ID. Icon failures are not
// errors: the entry is kept with an empty IconPath.
func (idx *Indexer) resolve(locator *desktop.Locator, theme *icon.Theme, id string) (*Entry, error) {
	d, err := locator.Find(id)
	if err != nil {
		return nil, err
	}

	visible := d.Display() && !d.Hidden()
	if idx.opts.DesktopEnv != "" {
		visible = d.Visible(idx.opts.DesktopEnv)
	}
	if !visible && !idx.opts.IncludeHidden {
		slog.Debug("indexer: not meant for display", "id", id)
		return nil, ErrSkipped
	}

	entry := &Entry{
		ID:           id,
		Name:         d.LocalizedValue("Name", idx.opts.Lang),
		Names:        d.Localized("Name"),
		GenericName:  d.LocalizedValue("GenericName", idx.opts.Lang),
		GenericNames: d.Localized("GenericName"),
		DesktopPath:  d.Path(),
		IconName:     d.Icon(),
		Categories:   d.Categories(),
		Visible:      visible,
	}
	if r := idx.opts.Registry; r != nil {
		entry.Categories = r.MainCategories(entry.Categories)
		entry.CategoryNames = r.Names(entry.Categories, idx.opts.Lang)
	}

	if entry.IconName != "" {
		var resolver icon.Resolver
		path, err := resolver.Resolve(entry.IconName, idx.opts.Size, idx.opts.Scale, theme)
		switch {
		case err == nil:
			entry.IconPath = path
		case errors.Is(err, icon.ErrNotFound):
			slog.Debug("indexer: icon not found", "id", id, "icon", entry.IconName)
		default:
			slog.Warn("indexer: resolving icon", "id", id, "icon", entry.IconName, "error", err)
		}
	}

	return entry, nil
}

// GetIndex returns the index instance
func (idx *Indexer) GetIndex() *Index {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.index
}

// IsRunning returns whether indexing is currently running
func (idx *Indexer) IsRunning() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.running
}

// Stop stops the indexing process
func (idx *Indexer) Stop() {
	idx.mu.Lock()
	if idx.running && idx.indexCancel != nil {
		idx.indexCancel()
	}
	idx.mu.Unlock()
	idx.indexWg.Wait()
}
