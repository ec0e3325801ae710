// Package sample streams bounded samples of game records out of a
// partitioned dataset hub. A Loader pulls rows shard by shard, validates
// them into domain.GameRecord values, and never holds more than one page
// in memory.
package sample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbeaumont/elostream/internal/domain"
	"github.com/mbeaumont/elostream/internal/hubfast"
	"github.com/mbeaumont/elostream/internal/obslog"
)

// RowSource is the slice of the hub the loader needs. Satisfied by
// hubfast.Client and hubfast.CachedClient.
type RowSource interface {
	ListShards(ctx context.Context, year, month int) ([]hubfast.ShardInfo, error)
	FetchRows(ctx context.Context, shard string, offset, length int) (*hubfast.RowsPage, error)
}

// SkipPolicy decides what happens when a row fails schema validation.
type SkipPolicy string

const (
	// PolicySkip drops the malformed row, counts it, and keeps pulling.
	PolicySkip SkipPolicy = "skip"
	// PolicyAbort stops the whole pull on the first malformed row.
	PolicyAbort SkipPolicy = "abort"
)

// ParseSkipPolicy parses a policy name; empty means PolicySkip.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown skip policy %q", s)
	}
}

// Config addresses one partition and bounds the pull. It replaces ambient
// session state: everything the loader needs arrives here explicitly.
type Config struct {
	Dataset  string
	Year     int
	Month    int
	Count    int // k: upper bound on records yielded
	PageSize int
	Policy   SkipPolicy
}

const defaultPageSize = 100

type Loader struct {
	src RowSource
	cfg Config
}

func NewLoader(src RowSource, cfg Config) (*Loader, error) {
	if src == nil {
		return nil, fmt.Errorf("sample: nil row source")
	}
	if cfg.Month < 1 || cfg.Month > 12 {
		return nil, fmt.Errorf("sample: month %d out of range", cfg.Month)
	}
	if cfg.Count < 0 {
		return nil, fmt.Errorf("sample: negative sample count %d", cfg.Count)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicySkip
	}
	return &Loader{src: src, cfg: cfg}, nil
}

// Records starts one pull over the configured partition and returns its
// iterator. The listing happens up front so an invalid partition fails
// fast with hubfast.ErrPartitionNotFound; rows are only fetched as the
// iterator is drained. Iterators are finite, non-restartable, and not safe
// for concurrent use.
func (l *Loader) Records(ctx context.Context) (*Iterator, error) {
	shards, err := l.src.ListShards(ctx, l.cfg.Year, l.cfg.Month)
	if err != nil {
		return nil, err
	}

	// A parallel or misbehaving source must never contribute the same
	// shard twice; keep a path set and drop repeats.
	seen := make(map[string]bool, len(shards))
	uniq := make([]hubfast.ShardInfo, 0, len(shards))
	dups := 0
	for _, s := range shards {
		if seen[s.Path] {
			dups++
			continue
		}
		seen[s.Path] = true
		uniq = append(uniq, s)
	}

	rep := &Report{
		RunID:     uuid.NewString(),
		Dataset:   l.cfg.Dataset,
		Year:      l.cfg.Year,
		Month:     l.cfg.Month,
		Requested: l.cfg.Count,
		Shards:    len(uniq),
		DupShards: dups,
		StartedAt: time.Now().UTC(),
	}

	return &Iterator{
		src:    l.src,
		cfg:    l.cfg,
		shards: uniq,
		report: rep,
	}, nil
}

// Iterator is a lazy, bounded, non-restartable sequence of game records.
type Iterator struct {
	src    RowSource
	cfg    Config
	shards []hubfast.ShardInfo
	report *Report

	shardIdx  int
	offset    int
	advance   bool // current shard exhausted once buffer drains
	buf       []hubfast.Row
	bufPos    int
	bufShard  string
	finished  bool
	stickyErr error
}

// Next returns the next valid record, io.EOF once min(k, partition size)
// records have been yielded, or a fatal error. After io.EOF or an error
// the iterator stays exhausted.
func (it *Iterator) Next(ctx context.Context) (*domain.GameRecord, error) {
	if it.stickyErr != nil {
		return nil, it.stickyErr
	}
	if it.finished {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, it.fail(err)
		}
		if it.report.Produced >= it.cfg.Count {
			return nil, it.finish()
		}

		if it.bufPos < len(it.buf) {
			row := it.buf[it.bufPos]
			it.bufPos++
			rec, err := decodeRow(it.bufShard, row)
			if err != nil {
				var se *domain.RecordSchemaError
				if errors.As(err, &se) && it.cfg.Policy == PolicySkip {
					it.report.SkippedSchema++
					obslog.L().Warn("skipping malformed record",
						zap.String("run_id", it.report.RunID),
						zap.String("shard", se.Shard),
						zap.Int("row", se.Row),
						zap.String("field", se.Field),
						zap.String("reason", se.Reason),
					)
					continue
				}
				return nil, it.fail(err)
			}
			it.report.Produced++
			return rec, nil
		}

		if it.advance {
			it.shardIdx++
			it.offset = 0
			it.advance = false
		}
		if it.shardIdx >= len(it.shards) {
			return nil, it.finish()
		}

		shard := it.shards[it.shardIdx]
		length := it.cfg.PageSize
		if remain := it.cfg.Count - it.report.Produced; remain < length {
			length = remain
		}
		page, err := it.src.FetchRows(ctx, shard.Path, it.offset, length)
		if err != nil {
			return nil, it.fail(err)
		}
		if len(page.Rows) == 0 {
			it.shardIdx++
			it.offset = 0
			continue
		}
		it.buf = page.Rows
		it.bufPos = 0
		it.bufShard = shard.Path
		it.offset += len(page.Rows)
		if page.NumRowsTotal > 0 && it.offset >= page.NumRowsTotal {
			it.advance = true
		}
	}
}

// Report exposes the running batch counters; FinishedAt is set once the
// iterator is exhausted or fails.
func (it *Iterator) Report() *Report { return it.report }

func (it *Iterator) finish() error {
	it.finished = true
	it.buf = nil
	if it.report.FinishedAt.IsZero() {
		it.report.FinishedAt = time.Now().UTC()
	}
	return io.EOF
}

func (it *Iterator) fail(err error) error {
	it.stickyErr = err
	it.buf = nil
	if it.report.FinishedAt.IsZero() {
		it.report.FinishedAt = time.Now().UTC()
	}
	return err
}
