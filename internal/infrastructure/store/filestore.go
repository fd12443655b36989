// Package store persists canonical records as JSON documents on disk, one
// file per match plus one aggregated summary per run.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/sportsdesk/cricketwire/internal/domain/match"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileStore writes match_<id>_<date>.json, daily_matches_<date>.json and
// raw_<source>_<key>.json under a single output directory.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

func NewFileStore(dir string, logger *logging.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// SaveRecord writes one canonical record. A record already on disk is left
// untouched so reruns never clobber collected results.
func (s *FileStore) SaveRecord(ctx context.Context, record match.Record, runDate string) error {
	if record.MatchID == "" {
		return fmt.Errorf("record has no match id")
	}
	name := fmt.Sprintf("match_%s_%s.json", sanitizeFileComponent(record.MatchID), sanitizeFileComponent(runDate))
	path := filepath.Join(s.dir, name)

	if _, err := os.Stat(path); err == nil {
		s.logger.DebugContext(ctx, "record already stored", "path", path)
		return nil
	}

	return s.writeJSON(ctx, path, record)
}

func (s *FileStore) SaveDailySummary(ctx context.Context, summary match.DailySummary) error {
	name := fmt.Sprintf("daily_matches_%s.json", sanitizeFileComponent(summary.Date))
	return s.writeJSON(ctx, filepath.Join(s.dir, name), summary)
}

// SaveMany stores raw provider payloads for later inspection. Retention is
// best effort per payload.
func (s *FileStore) SaveMany(ctx context.Context, items []rawdata.Payload) error {
	var firstErr error
	for _, item := range items {
		name := fmt.Sprintf("raw_%s_%s.json",
			sanitizeFileComponent(item.Source),
			sanitizeFileComponent(item.EntityKey),
		)
		path := filepath.Join(s.dir, name)
		if err := os.WriteFile(path, []byte(item.Body), 0o644); err != nil {
			s.logger.WarnContext(ctx, "raw payload write failed", "path", path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *FileStore) writeJSON(ctx context.Context, path string, value any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	raw, err := sonic.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	buf.Set(raw)
	buf.WriteByte('\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}

	s.logger.DebugContext(ctx, "document written", "path", path, "bytes", buf.Len())
	return nil
}

func sanitizeFileComponent(raw string) string {
	cleaned := unsafeFileChars.ReplaceAllString(strings.TrimSpace(raw), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}
