package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one recalled episodic memory.
type Entry struct {
	ID          string
	Content     string
	EpisodeType string
	SessionID   string
	AgentID     string
	Importance  float64
	AccessCount int
	CreatedAt   time.Time
}

// Metadata describes an episode being stored.
type Metadata struct {
	// EpisodeType tags the episode: interaction, task_result,
	// observation, insight. Empty defaults to "interaction".
	EpisodeType string
	// SessionID optionally links the episode to a run.
	SessionID string
	// AgentID optionally records which worker produced it.
	AgentID string
	// Importance is in [0.0, 1.0] and drives consolidation priority.
	// Zero defaults to 0.5.
	Importance float64
}

// StoreEpisodic records an episode and returns its ID.
func (m *Manager) StoreEpisodic(text string, meta Metadata) (string, error) {
	if meta.EpisodeType == "" {
		meta.EpisodeType = "interaction"
	}
	if meta.Importance == 0 {
		meta.Importance = 0.5
	}

	id := uuid.New().String()[:12]

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec(`
		INSERT INTO episodes (id, content, episode_type, session_id, agent_id, importance)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, text, meta.EpisodeType, meta.SessionID, meta.AgentID, meta.Importance)
	if err != nil {
		return "", fmt.Errorf("store episode: %w", err)
	}
	return id, nil
}

// Recall returns up to limit episodes ranked by full-text match
// against the query. Recalled episodes have their access counts
// bumped, which feeds consolidation.
func (m *Manager) Recall(query string, limit int) ([]Entry, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.db.Query(`
		SELECT e.id, e.content, e.episode_type,
			   COALESCE(e.session_id, ''), COALESCE(e.agent_id, ''),
			   e.importance, e.access_count, e.created_at
		FROM episodes e
		JOIN episodes_fts fts ON e.rowid = fts.rowid
		WHERE episodes_fts MATCH ?
		ORDER BY fts.rank, e.importance DESC
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("recall episodes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Content, &e.EpisodeType, &e.SessionID, &e.AgentID,
			&e.Importance, &e.AccessCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}

	for _, e := range entries {
		if _, err := m.db.Exec("UPDATE episodes SET access_count = access_count + 1 WHERE id = ?", e.ID); err != nil {
			return nil, fmt.Errorf("bump access count: %w", err)
		}
	}

	return entries, nil
}

// ftsQuery turns free text into an FTS5 OR-query, stripping anything
// that could be read as query syntax.
func ftsQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		fields[i] = `"` + f + `"`
	}
	return strings.Join(fields, " OR ")
}
