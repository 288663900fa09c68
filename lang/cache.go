package lang

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/lispy/log"
)

// parseCache maps the xxh3 hash of a source text to its *cacheEntry.
var parseCache sync.Map

type cacheEntry struct {
	once  sync.Once
	forms []Expr
	err   error
}

// ParseReader reads all of r and parses it with [ParseAll].
//
// Results are cached by source content, so loading the same file again (for
// example the REPL's load command) skips parsing. Parsed trees are never
// mutated by evaluation; each call still receives its own top-level slice.
func ParseReader(ctx context.Context, r io.Reader) ([]Expr, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	log.TraceContext(ctx, "read input", slog.Int("source_bytes", len(data)))

	return parseCached(ctx, string(data))
}

func parseCached(ctx context.Context, source string) ([]Expr, error) {
	hash := xxh3.HashString(source)

	value, hit := parseCache.LoadOrStore(hash, new(cacheEntry))

	entry, _ := value.(*cacheEntry)

	log.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.forms, entry.err = ParseAll(source)
		if entry.err != nil {
			entry.err = WrapError(entry.err).
				With(slog.Int("source_length", len(source)))
		}
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return slices.Clone(entry.forms), nil
}

// ClearCache discards all cached parse results.
func ClearCache() {
	parseCache.Clear()
}
