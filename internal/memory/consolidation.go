package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Consolidator periodically promotes significant episodes into the
// facts table: long-term knowledge surviving beyond a single run.
type Consolidator struct {
	mgr      *Manager
	interval time.Duration
	// minImportance promotes episodes at or above this importance.
	minImportance float64
	// minAccess promotes episodes recalled at least this many times.
	minAccess int
}

// NewConsolidator creates a consolidation loop over the given manager.
// A non-positive interval defaults to one minute.
func NewConsolidator(mgr *Manager, interval time.Duration) *Consolidator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Consolidator{
		mgr:           mgr,
		interval:      interval,
		minImportance: 0.8,
		minAccess:     3,
	}
}

// Start runs the consolidation loop until the context is cancelled.
func (c *Consolidator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := c.Consolidate(); err != nil {
					log.Printf("[memory] consolidation error: %v", err)
				} else if n > 0 {
					log.Printf("[memory] consolidated %d episodes into facts", n)
				}
			}
		}
	}()
}

// Consolidate promotes eligible episodes once and returns how many
// were promoted.
func (c *Consolidator) Consolidate() (int, error) {
	c.mgr.mu.Lock()
	defer c.mgr.mu.Unlock()

	rows, err := c.mgr.db.Query(`
		SELECT id, content FROM episodes
		WHERE consolidated = 0 AND (importance >= ? OR access_count >= ?)
	`, c.minImportance, c.minAccess)
	if err != nil {
		return 0, fmt.Errorf("select consolidation candidates: %w", err)
	}

	type candidate struct{ id, content string }
	var candidates []candidate
	for rows.Next() {
		var cand candidate
		if err := rows.Scan(&cand.id, &cand.content); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate candidates: %w", err)
	}

	for _, cand := range candidates {
		factID := uuid.New().String()[:12]
		if _, err := c.mgr.db.Exec(`
			INSERT INTO facts (id, content, source_episode) VALUES (?, ?, ?)
		`, factID, cand.content, cand.id); err != nil {
			return 0, fmt.Errorf("insert fact: %w", err)
		}
		if _, err := c.mgr.db.Exec(`
			UPDATE episodes SET consolidated = 1 WHERE id = ?
		`, cand.id); err != nil {
			return 0, fmt.Errorf("mark consolidated: %w", err)
		}
	}

	return len(candidates), nil
}
