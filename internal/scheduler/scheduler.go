package scheduler

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"certdesk/internal/filestore"
)

// An aborted fill can leave a generated document behind with no response row
// referencing it. The sweeper deletes that debris periodically.

type ResponsePathsProvider interface {
	GetFilePaths(ctx context.Context) ([]string, error)
}

type DocumentSweeper struct {
	provider ResponsePathsProvider
	files    filestore.FileStore
	interval time.Duration
	minAge   time.Duration
}

func NewDocumentSweeper(provider ResponsePathsProvider, files filestore.FileStore, interval time.Duration) *DocumentSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &DocumentSweeper{
		provider: provider,
		files:    files,
		interval: interval,
		minAge:   time.Hour,
	}
}

func (s *DocumentSweeper) Start(ctx context.Context) {
	if s.provider == nil || s.files == nil {
		slog.Warn("document sweeper skipped: not configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *DocumentSweeper) run(ctx context.Context) {
	referenced, err := s.provider.GetFilePaths(ctx)
	if err != nil {
		slog.Error("list referenced documents failed", "err", err)
		return
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, path := range referenced {
		keep[path] = struct{}{}
	}

	stored, err := s.files.List(ctx)
	if err != nil {
		slog.Error("list stored documents failed", "err", err)
		return
	}

	removed := 0
	for _, name := range stored {
		if !strings.HasPrefix(name, "filled-") {
			continue
		}
		if _, ok := keep[name]; ok {
			continue
		}
		if generatedAt, ok := generatedTimestamp(name); !ok || time.Since(generatedAt) < s.minAge {
			// Too young, may belong to a fill still in flight.
			continue
		}
		if err := s.files.Delete(ctx, name); err != nil {
			slog.Error("delete orphaned document failed", "err", err, "name", name)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("orphaned documents removed", "count", removed)
	}
}

func generatedTimestamp(name string) (time.Time, bool) {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 3 {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
