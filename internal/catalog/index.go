// Package catalog implements the course search index: catalog courses
// stored in SQLite with their embeddings, queried by combining structured
// filter pushdown with semantic relevance ranking.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pathweaver/internal/embedding"
	"pathweaver/internal/model"
)

// DefaultLimit caps the result set when the caller does not specify one.
const DefaultLimit = 10

// embedBatchSize bounds how many course texts go to the embedder per call.
const embedBatchSize = 32

// Index is the course search index. Reads are side-effect-free and safe
// for concurrent use; the completion engine only ever reads.
type Index struct {
	db       *sql.DB
	mu       sync.RWMutex
	embedder embedding.Engine
	log      *zap.Logger
}

// Open initializes the index at the given SQLite path (":memory:" works
// for tests) and creates the schema if needed.
func Open(path string, embedder embedding.Engine, log *zap.Logger) (*Index, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open course index: %w", err)
	}

	ix := &Index{db: db, embedder: embedder, log: log.Named("catalog")}
	if err := ix.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		course_id     TEXT PRIMARY KEY,
		subject_code  TEXT NOT NULL,
		course_number INTEGER NOT NULL,
		course_suffix TEXT NOT NULL DEFAULT '',
		designations  TEXT NOT NULL DEFAULT '[]',
		credits_min   REAL NOT NULL,
		credits_max   REAL NOT NULL,
		doc           TEXT NOT NULL,
		embedding     BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject_code, course_number);
	`
	if _, err := ix.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize course schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Count returns the number of indexed courses.
func (ix *Index) Count(ctx context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var n int
	err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&n)
	return n, err
}

// Add embeds and upserts the given courses. Embeddings are generated in
// batches to keep backend calls bounded.
func (ix *Index) Add(ctx context.Context, courses []model.CatalogCourse) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.addLocked(ctx, courses)
}

func (ix *Index) addLocked(ctx context.Context, courses []model.CatalogCourse) error {
	for start := 0; start < len(courses); start += embedBatchSize {
		end := min(start+embedBatchSize, len(courses))
		batch := courses[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.SearchText()
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed course batch: %w", err)
		}

		tx, err := ix.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for i, c := range batch {
			doc, err := json.Marshal(c)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to encode course %s: %w", c.CourseID, err)
			}
			desigs, _ := json.Marshal(c.Designations)
			if c.Designations == nil {
				desigs = []byte("[]")
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO courses
				(course_id, subject_code, course_number, course_suffix, designations,
				 credits_min, credits_max, doc, embedding)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.CourseID, c.SubjectCode, c.CourseNumber, c.CourseSuffix, string(desigs),
				c.Credits.Min, c.Credits.Max, string(doc), embedding.EncodeVector(vectors[i]),
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to store course %s: %w", c.CourseID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	ix.log.Info("indexed courses", zap.Int("count", len(courses)))
	return nil
}

// ReplaceAll atomically swaps the index contents for the given courses.
// Used by the reload watcher when the catalog feed changes on disk.
func (ix *Index) ReplaceAll(ctx context.Context, courses []model.CatalogCourse) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, err := ix.db.ExecContext(ctx, "DELETE FROM courses"); err != nil {
		return fmt.Errorf("failed to clear course index: %w", err)
	}
	return ix.addLocked(ctx, courses)
}

// Search issues one course search: semantic relevance against text, plus
// structured filters and a credit containment constraint. Results come
// back best match first, capped at limit. Empty text degrades to pure
// metadata filtering in stored order. Zero-value filter fields apply no
// filter on their dimension. A credits value of 0 applies no credit
// constraint.
func (ix *Index) Search(ctx context.Context, text string, q model.StructuredQuery, credits float64, limit int) ([]model.CatalogCourse, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	var conds []string
	var args []any
	if credits > 0 {
		conds = append(conds, "credits_min <= ? AND credits_max >= ?")
		args = append(args, credits, credits)
	}
	if q.SubjectCode != "" {
		conds = append(conds, "subject_code = ?")
		args = append(args, q.SubjectCode)
	}
	if q.CourseNumber != 0 {
		conds = append(conds, "course_number = ?")
		args = append(args, q.CourseNumber)
	}
	if q.CourseNumberGTE != 0 {
		conds = append(conds, "course_number >= ?")
		args = append(args, q.CourseNumberGTE)
	}
	if q.CourseSuffix != "" {
		conds = append(conds, "course_suffix = ?")
		args = append(args, q.CourseSuffix)
	}
	if len(q.Designations) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(q.Designations)), ",")
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM json_each(courses.designations) WHERE json_each.value IN (%s))", marks))
		for _, d := range q.Designations {
			args = append(args, d)
		}
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	if text == "" {
		return ix.filterOnly(ctx, where, args, limit)
	}

	queryVec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search text: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx, "SELECT doc, embedding FROM courses"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("course search failed: %w", err)
	}
	defer rows.Close()

	type scored struct {
		course     model.CatalogCourse
		similarity float64
	}
	var candidates []scored
	for rows.Next() {
		var doc string
		var blob []byte
		if err := rows.Scan(&doc, &blob); err != nil {
			continue
		}
		vec := embedding.DecodeVector(blob)
		sim, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			ix.log.Warn("skipping course with bad embedding", zap.Error(err))
			continue
		}
		var course model.CatalogCourse
		if err := json.Unmarshal([]byte(doc), &course); err != nil {
			continue
		}
		candidates = append(candidates, scored{course: course, similarity: sim})
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

	results := make([]model.CatalogCourse, len(candidates))
	for i, c := range candidates {
		results[i] = c.course
	}
	return results, nil
}

func (ix *Index) filterOnly(ctx context.Context, where string, args []any, limit int) ([]model.CatalogCourse, error) {
	args = append(args, limit)
	rows, err := ix.db.QueryContext(ctx, "SELECT doc FROM courses"+where+" ORDER BY rowid LIMIT ?", args...)
	if err != nil {
		return nil, fmt.Errorf("course filter query failed: %w", err)
	}
	defer rows.Close()

	var results []model.CatalogCourse
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var course model.CatalogCourse
		if err := json.Unmarshal([]byte(doc), &course); err != nil {
			continue
		}
		results = append(results, course)
	}
	return results, rows.Err()
}
