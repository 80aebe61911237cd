// Package pathway implements the pathway template store: abstract degree
// plans stored in SQLite with embeddings for similarity retrieval.
package pathway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pathweaver/internal/embedding"
	"pathweaver/internal/model"
)

// ErrNotFound is returned when a pathway id does not exist in the store.
var ErrNotFound = errors.New("pathway not found")

// DefaultLimit caps similarity results when the caller does not specify one.
const DefaultLimit = 8

// Store holds pathway templates. Templates are immutable once added; the
// completion engine only reads.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	embedder embedding.Engine
	log      *zap.Logger
}

// Open initializes the store at the given SQLite path.
func Open(path string, embedder embedding.Engine, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pathway store: %w", err)
	}

	s := &Store{db: db, embedder: embedder, log: log.Named("pathway")}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pathways (
			pathway_id TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			embedding  BLOB
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize pathway schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add validates, embeds and upserts the given templates. Templates without
// an id get one assigned.
func (s *Store) Add(ctx context.Context, templates []model.PathwayTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range templates {
		if err := templates[i].Validate(); err != nil {
			return fmt.Errorf("template %d (%s): %w", i, templates[i].ProgramName, err)
		}
		if templates[i].PathwayID == "" {
			templates[i].PathwayID = uuid.NewString()
		}
	}

	texts := make([]string, len(templates))
	for i, tpl := range templates {
		texts[i] = templateText(tpl)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed templates: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i, tpl := range templates {
		doc, err := json.Marshal(tpl)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode template %s: %w", tpl.PathwayID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO pathways (pathway_id, doc, embedding) VALUES (?, ?, ?)",
			tpl.PathwayID, string(doc), embedding.EncodeVector(vectors[i]),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store template %s: %w", tpl.PathwayID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Info("stored pathway templates", zap.Int("count", len(templates)))
	return nil
}

// GetByID fetches one template. Wraps ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id string) (model.PathwayTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM pathways WHERE pathway_id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PathwayTemplate{}, fmt.Errorf("pathway %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.PathwayTemplate{}, fmt.Errorf("failed to fetch pathway %q: %w", id, err)
	}

	var tpl model.PathwayTemplate
	if err := json.Unmarshal([]byte(doc), &tpl); err != nil {
		return model.PathwayTemplate{}, fmt.Errorf("failed to decode pathway %q: %w", id, err)
	}
	return tpl, nil
}

// FindSimilar returns the templates most similar to the query text, best
// match first.
func (s *Store) FindSimilar(ctx context.Context, query string, limit int) ([]model.PathwayTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed pathway query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT doc, embedding FROM pathways")
	if err != nil {
		return nil, fmt.Errorf("pathway similarity query failed: %w", err)
	}
	defer rows.Close()

	type scored struct {
		tpl        model.PathwayTemplate
		similarity float64
	}
	var candidates []scored
	for rows.Next() {
		var doc string
		var blob []byte
		if err := rows.Scan(&doc, &blob); err != nil {
			continue
		}
		sim, err := embedding.CosineSimilarity(queryVec, embedding.DecodeVector(blob))
		if err != nil {
			s.log.Warn("skipping pathway with bad embedding", zap.Error(err))
			continue
		}
		var tpl model.PathwayTemplate
		if err := json.Unmarshal([]byte(doc), &tpl); err != nil {
			continue
		}
		candidates = append(candidates, scored{tpl: tpl, similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]model.PathwayTemplate, len(candidates))
	for i, c := range candidates {
		results[i] = c.tpl
	}
	return results, nil
}

// templateText is the canonical text embedded for a template: the program
// name followed by every requirement name in document order.
func templateText(tpl model.PathwayTemplate) string {
	var b strings.Builder
	b.WriteString(tpl.ProgramName)
	for _, year := range tpl.Years {
		for _, sem := range year.Semesters {
			for _, slot := range sem.Courses {
				b.WriteString("\n")
				b.WriteString(slot.Name)
			}
		}
	}
	return b.String()
}
