// Package logstore appends interaction and feedback records to daily
// line-delimited JSON files. Records are self-contained, so concurrent
// requests only need the append itself serialized.
package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

type Store struct {
	dir    string
	mu     sync.Mutex
	logger *logger_i.Logger
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger_i.NewLogger("LogStore"),
	}, nil
}

func (s *Store) AppendInteraction(rec domain.QueryRecord) error {
	return s.appendRecord("interactions", rec.Timestamp, rec)
}

func (s *Store) AppendFeedback(rec domain.FeedbackRecord) error {
	return s.appendRecord("feedback", rec.Timestamp, rec)
}

func (s *Store) appendRecord(prefix string, ts time.Time, record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling %s record: %w", prefix, err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.jsonl", prefix, ts.Format("20060102")))

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("opening %s log: %w", prefix, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending %s record: %w", prefix, err)
	}
	return nil
}
