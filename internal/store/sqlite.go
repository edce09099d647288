package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/minssan9/aviation-bot/internal/quiz"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Store wraps a single SQLite database holding quizzes and subscribers.
type Store struct {
	db  *sql.DB
	log logx.Logger
}

func Open(cfg Config, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- quizzes ----

// SaveQuiz persists a freshly parsed record and returns its assigned id.
// New records always start with zero usage and active.
func (s *Store) SaveQuiz(ctx context.Context, rec *quiz.Record) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes(topic, knowledge_area, question, option_a, option_b, option_c, option_d,
		                     correct_answer, explanation, provider, usage_count, is_active, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,0,1,?)`,
		rec.Topic, rec.KnowledgeArea, rec.Question,
		rec.Options[0], rec.Options[1], rec.Options[2], rec.Options[3],
		rec.CorrectAnswer, nullStr(rec.Explanation), rec.Provider,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = id
	rec.UsageCount = 0
	rec.IsActive = true
	rec.CreatedAt = now
	return id, nil
}

// RandomQuiz picks one active record uniformly at random, honoring the
// optional topic/provider filter. Retrieval itself bumps usage: the counter
// update runs as a single in-place increment inside the same transaction,
// so concurrent callers can never lose counts. Soft-deleted records are
// never returned.
func (s *Store) RandomQuiz(ctx context.Context, f Filter) (*quiz.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT id, topic, knowledge_area, question, option_a, option_b, option_c, option_d,
	             correct_answer, explanation, provider, usage_count, last_used, is_active, created_at
	      FROM quizzes WHERE is_active = 1`
	var args []any
	if f.Topic != "" {
		q += " AND topic = ?"
		args = append(args, f.Topic)
	}
	if f.Provider != "" {
		q += " AND provider = ?"
		args = append(args, f.Provider)
	}
	q += " ORDER BY RANDOM() LIMIT 1"

	rec, err := scanQuiz(tx.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE quizzes SET usage_count = usage_count + 1, last_used = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), rec.ID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	rec.UsageCount++
	rec.LastUsedAt = &now
	return rec, nil
}

// SearchQuizzes matches query against question, knowledge area and
// explanation. Soft-deleted records are included so history stays auditable.
func (s *Store) SearchQuizzes(ctx context.Context, query string, f Filter, limit int) ([]*quiz.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT id, topic, knowledge_area, question, option_a, option_b, option_c, option_d,
	             correct_answer, explanation, provider, usage_count, last_used, is_active, created_at
	      FROM quizzes
	      WHERE (question LIKE ? OR knowledge_area LIKE ? OR explanation LIKE ?)`
	pat := "%" + query + "%"
	args := []any{pat, pat, pat}
	if f.Topic != "" {
		q += " AND topic = ?"
		args = append(args, f.Topic)
	}
	if f.Provider != "" {
		q += " AND provider = ?"
		args = append(args, f.Provider)
	}
	q += " ORDER BY usage_count DESC, created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*quiz.Record
	for rows.Next() {
		rec, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// QuizStats aggregates per-topic and per-provider usage. Soft-deleted
// records stay in the aggregates for audit.
func (s *Store) QuizStats(ctx context.Context) (*Stats, error) {
	st := &Stats{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM quizzes`,
	).Scan(&st.TotalAll, &st.TotalActive); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, COUNT(*), AVG(usage_count) FROM quizzes GROUP BY topic ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t TopicStat
		if err := rows.Scan(&t.Topic, &t.Count, &t.AvgUsage); err != nil {
			return nil, err
		}
		st.ByTopic = append(st.ByTopic, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT provider, COUNT(*), AVG(usage_count) FROM quizzes GROUP BY provider ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p ProviderStat
		if err := prows.Scan(&p.Provider, &p.Count, &p.AvgUsage); err != nil {
			return nil, err
		}
		st.ByProvider = append(st.ByProvider, p)
	}
	return st, prows.Err()
}

// DeactivateQuiz soft-deletes a record. The row and its usage history stay
// queryable through SearchQuizzes/QuizStats but RandomQuiz skips it.
func (s *Store) DeactivateQuiz(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- subscribers ----

// Subscribe registers a chat, or re-activates it if it unsubscribed before.
// Re-subscribing refreshes subscribed_at and clears unsubscribed_at.
func (s *Store) Subscribe(ctx context.Context, chatID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers(chat_id, is_subscribed, subscribed_at)
		 VALUES(?, 1, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   is_subscribed = 1,
		   subscribed_at = CASE WHEN subscribers.is_subscribed = 0 THEN excluded.subscribed_at ELSE subscribers.subscribed_at END,
		   unsubscribed_at = NULL`,
		chatID, now,
	)
	return err
}

// Unsubscribe deactivates a chat. It reports whether a subscribed row was
// actually flipped, so callers can distinguish repeat calls.
func (s *Store) Unsubscribe(ctx context.Context, chatID int64) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscribers SET is_subscribed = 0, unsubscribed_at = ?
		 WHERE chat_id = ? AND is_subscribed = 1`,
		now, chatID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	var sub int
	err := s.db.QueryRowContext(ctx,
		`SELECT is_subscribed FROM subscribers WHERE chat_id = ?`, chatID).Scan(&sub)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub == 1, nil
}

// Snapshot returns the chat ids of everyone currently subscribed. It is a
// single consistent read; subscription changes after it returns do not
// affect the caller's copy.
func (s *Store) Snapshot(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id FROM subscribers WHERE is_subscribed = 1 ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SubscriberCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE is_subscribed = 1`).Scan(&n)
	return n, err
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*quiz.Record, error) {
	var (
		rec         quiz.Record
		explanation sql.NullString
		lastUsed    sql.NullString
		isActive    int
		createdAt   string
	)
	if err := row.Scan(
		&rec.ID, &rec.Topic, &rec.KnowledgeArea, &rec.Question,
		&rec.Options[0], &rec.Options[1], &rec.Options[2], &rec.Options[3],
		&rec.CorrectAnswer, &explanation, &rec.Provider,
		&rec.UsageCount, &lastUsed, &isActive, &createdAt,
	); err != nil {
		return nil, err
	}
	rec.Explanation = explanation.String
	rec.IsActive = isActive == 1
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if lastUsed.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastUsed.String); err == nil {
			rec.LastUsedAt = &t
		}
	}
	return &rec, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
