package reconcile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/textalign/core/align"
	"github.com/FocuswithJustin/textalign/core/cache"
	"github.com/FocuswithJustin/textalign/internal/logging"
)

// Pair holds two renderings of one sentence.
type Pair struct {
	Base      string
	Alternate string
}

// Config configures batch alignment.
type Config struct {
	// Workers bounds the number of concurrent alignments (<= 0 uses
	// GOMAXPROCS).
	Workers int

	// Cache configures the aligner cache owned by a Batch.
	Cache cache.Config

	// Align configures every alignment in the batch.
	Align align.Config
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
		Cache:   cache.DefaultConfig(),
		Align:   align.DefaultConfig(),
	}
}

// Batch aligns sentence pairs concurrently, reusing alignments of pairs
// it has already seen.
type Batch struct {
	workers int
	cache   *cache.AlignerCache
}

// NewBatch creates a Batch with its own aligner cache.
func NewBatch(config Config) (*Batch, error) {
	c, err := cache.NewAlignerCache(config.Cache, config.Align)
	if err != nil {
		return nil, err
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Batch{workers: workers, cache: c}, nil
}

// AlignAll aligns every pair and returns the aligners in input order.
// Cancellation is checked between pairs.
func (b *Batch) AlignAll(ctx context.Context, pairs []Pair) ([]*align.Aligner, error) {
	results := make([]*align.Aligner, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := b.cache.Align(p.Base, p.Alternate)
			results[i] = a
			logging.Alignment(gctx, i, a.Aligns(), a.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CacheStats returns statistics of the batch's aligner cache.
func (b *Batch) CacheStats() cache.Stats {
	return b.cache.Stats()
}

// AlignAll aligns pairs with a fresh Batch built from config.
func AlignAll(ctx context.Context, pairs []Pair, config Config) ([]*align.Aligner, error) {
	b, err := NewBatch(config)
	if err != nil {
		return nil, err
	}
	return b.AlignAll(ctx, pairs)
}
