package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-geojob-automation/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

var _ TableStore = (*Postgres)(nil)

func ConnectPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Supabase connection pooler (PgBouncer in Transaction mode) does not
	// support prepared statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	p := &Postgres{db: pool, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range schema("BIGSERIAL PRIMARY KEY") {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres store: %w", err)
		}
	}
	return nil
}

func (p *Postgres) exec(ctx context.Context, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = p.db.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) query(ctx context.Context, q sq.Sqlizer) (pgx.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return p.db.Query(ctx, query, args...)
}

// ---------------- JOB OPERATIONS ----------------

func (p *Postgres) SeenIDs(ctx context.Context, source models.Source) ([]string, error) {
	rows, err := p.query(ctx, seenIDsQuery(p.sb, source))
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

func (p *Postgres) AppendDetails(ctx context.Context, details []models.JobDetail) error {
	if len(details) == 0 {
		return nil
	}
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, batch := range chunks(details, insertChunk) {
		query, args, err := insertDetailsQuery(p.sb, batch).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to append job rows: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) RecentDetails(ctx context.Context, source models.Source, limit int) ([]models.JobDetail, error) {
	rows, err := p.query(ctx, recentDetailsQuery(p.sb, source, limit))
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

// ---------------- INDUSTRY OPERATIONS ----------------

func (p *Postgres) Industry(ctx context.Context, company string) (string, error) {
	query, args, err := industryQuery(p.sb, company).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	var industry string
	err = p.db.QueryRow(ctx, query, args...).Scan(&industry)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up industry: %w", err)
	}
	return industry, nil
}

func (p *Postgres) AppendIndustry(ctx context.Context, company, industry string) error {
	if err := p.exec(ctx, insertIndustryQuery(p.sb, company, industry)); err != nil {
		return fmt.Errorf("failed to append industry: %w", err)
	}
	return nil
}

// ---------------- NOTIFICATION OPERATIONS ----------------

func (p *Postgres) AppendNotifications(ctx context.Context, logs []models.NotificationLog) error {
	for _, batch := range chunks(logs, insertChunk) {
		if err := p.exec(ctx, insertNotificationsQuery(p.sb, batch)); err != nil {
			return fmt.Errorf("failed to append notification log: %w", err)
		}
	}
	return nil
}

func (p *Postgres) RecentNotifications(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	rows, err := p.query(ctx, recentNotificationsQuery(p.sb, limit))
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

func (p *Postgres) Close() error {
	if p.db != nil {
		p.db.Close()
	}
	return nil
}
