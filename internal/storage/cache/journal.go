package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// JournalKey is the Redis list holding recent failure reports.
const JournalKey = "push:failures"

// ListClient defines the subset of Redis commands the journal needs.
type ListClient interface {
	// PushCapped prepends value and keeps at most max entries.
	PushCapped(ctx context.Context, key string, value interface{}, max int64) error
	// Recent returns up to n entries, newest first.
	Recent(ctx context.Context, key string, n int64) ([][]byte, error)
}

// Entry is one journaled failure report.
type Entry struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
	push.Report
}

// ReportJournal is a push.Notifier that keeps the most recent failure reports
// in a capped Redis list. Writes happen in the background so Notice returns
// immediately.
type ReportJournal struct {
	client       ListClient
	maxEntries   int64
	writeTimeout time.Duration
	logger       *slog.Logger
	wg           sync.WaitGroup
}

func NewReportJournal(client ListClient, maxEntries int64, logger *slog.Logger) *ReportJournal {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &ReportJournal{
		client:       client,
		maxEntries:   maxEntries,
		writeTimeout: 2 * time.Second,
		logger:       logger.With("component", "ReportJournal"),
	}
}

func (j *ReportJournal) Notice(report push.Report) {
	entry := Entry{
		ID:     uuid.NewString(),
		At:     time.Now().UTC(),
		Report: report,
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), j.writeTimeout)
		defer cancel()
		// Journaling is best effort; a Redis outage must not affect sends.
		if err := j.client.PushCapped(ctx, JournalKey, entry, j.maxEntries); err != nil {
			j.logger.Warn("Failed to journal failure report", "id", entry.ID, "err", err)
		}
	}()
}

// Recent returns up to n journaled reports, newest first.
func (j *ReportJournal) Recent(ctx context.Context, n int64) ([]Entry, error) {
	raw, err := j.client.Recent(ctx, JournalKey, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			// Skip corrupt rows rather than failing the whole read.
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Flush waits for in-flight writes. Call it during shutdown.
func (j *ReportJournal) Flush() {
	j.wg.Wait()
}
