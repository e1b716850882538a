// Package learning persists classified submissions in SQLite so pattern
// statistics survive restarts and can be replayed into a frequency store.
package learning

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/verdict/internal/frequency"
	"github.com/harrison/verdict/internal/models"
)

// Record is one persisted analysis together with the request that produced it.
type Record struct {
	ID        string
	CreatedAt time.Time
	Request   models.Request
	Analysis  models.ErrorAnalysis
}

// Filter narrows ListAnalyses. Zero values match everything.
type Filter struct {
	ProblemID string
	Pattern   models.ErrorPattern
	Type      models.ErrorType
	Since     time.Time
	Limit     int
}

// PatternStat aggregates persisted analyses for one pattern.
type PatternStat struct {
	Pattern  models.ErrorPattern
	Count    int
	Problems int
	LastSeen time.Time
}

// Store manages the SQLite database of past analyses
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// every pooled connection to ":memory:" would get its own empty database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must be first so later pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, sql string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(sql)
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordAnalysis stores an analysis and returns its generated ID.
func (s *Store) RecordAnalysis(ctx context.Context, req models.Request, a models.ErrorAnalysis) (string, error) {
	id := uuid.NewString()

	query := `INSERT INTO analyses
		(id, problem_id, problem_title, problem_difficulty, language, status_message, error_message,
		 error_type, error_pattern, error_category, line_number, column_number, code_snippet,
		 code, failed_test_case, expected_output, actual_output, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		id,
		a.ProblemID(),
		req.ProblemTitle,
		req.ProblemDifficulty,
		req.Language,
		req.StatusMessage,
		a.ErrorMessage,
		string(a.ErrorType),
		string(a.ErrorPattern),
		string(a.ErrorCategory),
		nullInt(a.LineNumber),
		nullInt(a.ColumnNumber),
		a.CodeSnippet,
		req.Code,
		a.FailedTestCase,
		a.ExpectedOutput,
		a.ActualOutput,
		s.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

const selectColumns = `SELECT id, problem_id, problem_title, problem_difficulty, language, status_message,
	error_message, error_type, error_pattern, error_category, line_number, column_number,
	code_snippet, code, failed_test_case, expected_output, actual_output, created_at
	FROM analyses`

// GetAnalysis returns the record with the given ID, or nil if none exists.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}

// ListAnalyses returns matching records, newest first.
func (s *Store) ListAnalyses(ctx context.Context, f Filter) ([]*Record, error) {
	where, args := f.clauses()
	query := selectColumns + where + ` ORDER BY created_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// PatternStats aggregates analyses by pattern, optionally for one problem.
// Results are ordered by descending count, then pattern name.
func (s *Store) PatternStats(ctx context.Context, problemID string) ([]PatternStat, error) {
	query := `SELECT error_pattern, COUNT(*), COUNT(DISTINCT NULLIF(problem_id, '')), MAX(created_at)
		FROM analyses WHERE error_pattern != ''`
	var args []interface{}
	if problemID != "" {
		query += ` AND problem_id = ?`
		args = append(args, problemID)
	}
	query += ` GROUP BY error_pattern ORDER BY COUNT(*) DESC, error_pattern ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pattern stats: %w", err)
	}
	defer rows.Close()

	var stats []PatternStat
	for rows.Next() {
		var st PatternStat
		var pattern string
		var lastSeen sql.NullString
		if err := rows.Scan(&pattern, &st.Count, &st.Problems, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan pattern stat: %w", err)
		}
		st.Pattern = models.ErrorPattern(pattern)
		if lastSeen.Valid {
			st.LastSeen = parseTimestamp(lastSeen.String)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern stats: %w", err)
	}
	return stats, nil
}

// Replay records every persisted analysis into fs, oldest first, and
// returns how many were replayed. Bucket lastSeen times come from the
// stored created_at values.
func (s *Store) Replay(ctx context.Context, fs *frequency.Store) (int, error) {
	records, err := s.queryRecords(ctx, selectColumns+` ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return 0, fmt.Errorf("replay: %w", err)
	}
	for _, rec := range records {
		fs.RecordAt(rec.Analysis, rec.CreatedAt)
	}
	return len(records), nil
}

// DeleteAnalyses removes the analyses of one problem, or every analysis
// when problemID is empty.
func (s *Store) DeleteAnalyses(ctx context.Context, problemID string) (int64, error) {
	query := `DELETE FROM analyses`
	var args []interface{}
	if problemID != "" {
		query += ` WHERE problem_id = ?`
		args = append(args, problemID)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete analyses: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}

// CleanupOlderThan removes analyses recorded before cutoff.
func (s *Store) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup analyses: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of stored analyses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

func (f Filter) clauses() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.ProblemID != "" {
		conds = append(conds, "problem_id = ?")
		args = append(args, f.ProblemID)
	}
	if f.Pattern != "" {
		conds = append(conds, "error_pattern = ?")
		args = append(args, string(f.Pattern))
	}
	if f.Type != "" {
		conds = append(conds, "error_type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var (
		problemID, title, difficulty, language, status sql.NullString
		pattern, category, snippet, code                sql.NullString
		testCase, expected, actual                      sql.NullString
		errorType                                       string
		line, column                                    sql.NullInt64
	)

	err := row.Scan(
		&rec.ID,
		&problemID,
		&title,
		&difficulty,
		&language,
		&status,
		&rec.Analysis.ErrorMessage,
		&errorType,
		&pattern,
		&category,
		&line,
		&column,
		&snippet,
		&code,
		&testCase,
		&expected,
		&actual,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Request = models.Request{
		StatusMessage:     status.String,
		ErrorMessage:      rec.Analysis.ErrorMessage,
		Code:              code.String,
		Language:          language.String,
		FailedTestCase:    testCase.String,
		ExpectedOutput:    expected.String,
		ActualOutput:      actual.String,
		ProblemID:         problemID.String,
		ProblemTitle:      title.String,
		ProblemDifficulty: difficulty.String,
	}

	rec.Analysis.ErrorType = models.ParseErrorType(errorType)
	rec.Analysis.ErrorPattern = models.ErrorPattern(pattern.String)
	rec.Analysis.ErrorCategory = models.ErrorCategory(category.String)
	rec.Analysis.LineNumber = intPtr(line)
	rec.Analysis.ColumnNumber = intPtr(column)
	rec.Analysis.CodeSnippet = snippet.String
	rec.Analysis.FailedTestCase = testCase.String
	rec.Analysis.ExpectedOutput = expected.String
	rec.Analysis.ActualOutput = actual.String
	if problemID.String != "" {
		rec.Analysis.ProblemContext = &models.ProblemContext{
			ProblemID:  problemID.String,
			Title:      title.String,
			Difficulty: difficulty.String,
		}
	}
	return rec, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return models.IntPtr(int(n.Int64))
}

// timestampFormats are the layouts go-sqlite3 writes for time.Time values.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses aggregate results, which the driver returns as text.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
