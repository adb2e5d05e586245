package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	t "archmap/internal/types"
)

// Run is one recorded analysis, enough to chart health over time.
type Run struct {
	Root        string    `json:"root"`
	GeneratedAt time.Time `json:"generated_at"`
	FileCount   int       `json:"file_count"`
	EdgeCount   int       `json:"edge_count"`
	CycleCount  int       `json:"cycle_count"`
	Score       int       `json:"score"`
	Grade       string    `json:"grade"`
	Status      string    `json:"status"`
}

// Store keeps the analysis-run history in a JSON file or, when a DSN is
// configured, in Postgres. Postgres reads are fronted by an LRU cache; the
// file backend keeps the loaded runs in memory.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	runs     []Run

	schemaOnce sync.Once
	schemaErr  error

	recentCache *lru.Cache[int, []Run]
}

// New creates a file-backed store at path.
func New(path string) *Store {
	return &Store{path: path}
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[int, []Run](64)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, recentCache: cache}, nil
}

// NewFromEnv selects the Postgres backend when ARCHMAP_HISTORY_PG_DSN is
// set, else the file backend at path.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("ARCHMAP_HISTORY_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Append records one run derived from a finished result.
func (s *Store) Append(result *t.AnalysisResult) error {
	run := Run{
		Root:        result.Root,
		GeneratedAt: result.GeneratedAt,
		FileCount:   result.FileCount,
		EdgeCount:   result.EdgeCount,
		CycleCount:  result.Health.CircularDependencyCount,
		Score:       result.Health.Score,
		Grade:       result.Health.Grade,
		Status:      result.Health.Status,
	}
	if s.db != nil {
		return s.appendDB(run)
	}
	return s.appendFile(run)
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}
	if s.db != nil {
		return s.recentDB(n)
	}
	return s.recentFile(n)
}

// Close releases the database handle when one is open.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ---- file backend ----

func (s *Store) appendFile(run Run) error {
	s.loadFileOnce()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	data, err := json.MarshalIndent(s.runs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *Store) recentFile(n int) ([]Run, error) {
	s.loadFileOnce()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Run, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

func (s *Store) loadFileOnce() {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var runs []Run
		if err := json.Unmarshal(data, &runs); err != nil {
			return
		}
		s.mu.Lock()
		s.runs = runs
		s.mu.Unlock()
	})
}

// ---- postgres backend ----

func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`CREATE TABLE IF NOT EXISTS archmap_runs (
			id BIGSERIAL PRIMARY KEY,
			root TEXT NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			file_count INT NOT NULL,
			edge_count INT NOT NULL,
			cycle_count INT NOT NULL,
			score INT NOT NULL,
			grade TEXT NOT NULL,
			status TEXT NOT NULL
		)`)
	})
	return s.schemaErr
}

func (s *Store) appendDB(run Run) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO archmap_runs (root, generated_at, file_count, edge_count, cycle_count, score, grade, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.Root, run.GeneratedAt, run.FileCount, run.EdgeCount,
		run.CycleCount, run.Score, run.Grade, run.Status)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	if s.recentCache != nil {
		s.recentCache.Purge()
	}
	return nil
}

func (s *Store) recentDB(n int) ([]Run, error) {
	if s.recentCache != nil {
		if runs, ok := s.recentCache.Get(n); ok {
			return runs, nil
		}
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT root, generated_at, file_count, edge_count, cycle_count, score, grade, status
		 FROM archmap_runs ORDER BY id DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Root, &r.GeneratedAt, &r.FileCount, &r.EdgeCount,
			&r.CycleCount, &r.Score, &r.Grade, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if s.recentCache != nil {
		s.recentCache.Add(n, out)
	}
	return out, nil
}
