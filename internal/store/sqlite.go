package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-geojob-automation/internal/models"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// SQLite is the default single-file backend.
type SQLite struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ TableStore = (*SQLite)(nil)

const sqliteSchemaVersion = 1

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = filepath.Join("data", "geojob.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store unreachable: %w", err)
	}

	s := &SQLite{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v >= sqliteSchemaVersion {
		return tx.Commit()
	}

	for _, stmt := range schema("INTEGER PRIMARY KEY AUTOINCREMENT") {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite store: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, sqliteSchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) exec(ctx context.Context, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLite) query(ctx context.Context, q sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *SQLite) SeenIDs(ctx context.Context, source models.Source) ([]string, error) {
	rows, err := s.query(ctx, seenIDsQuery(s.sb, source))
	if err != nil {
		return nil, fmt.Errorf("query seen ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) AppendDetails(ctx context.Context, details []models.JobDetail) error {
	if len(details) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, batch := range chunks(details, insertChunk) {
		query, args, err := insertDetailsQuery(s.sb, batch).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to append job rows: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Industry(ctx context.Context, company string) (string, error) {
	query, args, err := industryQuery(s.sb, company).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	var industry string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&industry)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up industry: %w", err)
	}
	return industry, nil
}

func (s *SQLite) AppendIndustry(ctx context.Context, company, industry string) error {
	if err := s.exec(ctx, insertIndustryQuery(s.sb, company, industry)); err != nil {
		return fmt.Errorf("failed to append industry: %w", err)
	}
	return nil
}

func (s *SQLite) AppendNotifications(ctx context.Context, logs []models.NotificationLog) error {
	for _, batch := range chunks(logs, insertChunk) {
		if err := s.exec(ctx, insertNotificationsQuery(s.sb, batch)); err != nil {
			return fmt.Errorf("failed to append notification log: %w", err)
		}
	}
	return nil
}

func (s *SQLite) RecentDetails(ctx context.Context, source models.Source, limit int) ([]models.JobDetail, error) {
	rows, err := s.query(ctx, recentDetailsQuery(s.sb, source, limit))
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	var out []models.JobDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) RecentNotifications(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	rows, err := s.query(ctx, recentNotificationsQuery(s.sb, limit))
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []models.NotificationLog
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
