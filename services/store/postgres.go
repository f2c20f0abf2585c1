package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"swecron/internal/posting"
	"swecron/logger"
	apperrors "swecron/pkg/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps the listing history in a postings table, one row per
// posting with its position in the snapshot
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database at dsn and ensures the schema exists
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, apperrors.NewStore("open postgres connection", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStore("ping postgres", err)
	}

	store := NewPostgresStoreFromDB(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// NewPostgresStoreFromDB wraps an already opened database
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the postings table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS postings (
			position INTEGER PRIMARY KEY,
			site TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			recorded_date TEXT
		)`)
	if err != nil {
		return apperrors.NewStore("ensure schema", err)
	}
	return nil
}

// Load returns every stored posting in snapshot order
func (s *PostgresStore) Load(ctx context.Context) ([]posting.Posting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT site, title, url, recorded_date FROM postings ORDER BY position`)
	if err != nil {
		return nil, apperrors.NewStore("query postings", err)
	}
	defer rows.Close()

	postings := make([]posting.Posting, 0)
	for rows.Next() {
		var (
			p    posting.Posting
			url  sql.NullString
			date sql.NullString
		)
		if err := rows.Scan(&p.Site, &p.Title, &url, &date); err != nil {
			return nil, apperrors.NewStore("scan posting", err)
		}
		if url.Valid {
			link := url.String
			p.URL = &link
		}
		p.Date = date.String
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStore("iterate postings", err)
	}

	logger.ForStore().Debug().Int("count", len(postings)).Msg("Loaded postings from postgres")
	return postings, nil
}

// Save replaces the table content with postings in a single transaction
func (s *PostgresStore) Save(ctx context.Context, postings []posting.Posting) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStore("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM postings`); err != nil {
		return apperrors.NewStore("clear postings", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO postings (position, site, title, url, recorded_date) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return apperrors.NewStore("prepare insert statement", err)
	}
	defer stmt.Close()

	for i, p := range postings {
		var url, date sql.NullString
		if p.URL != nil {
			url = sql.NullString{String: *p.URL, Valid: true}
		}
		if p.Date != "" {
			date = sql.NullString{String: p.Date, Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, i, p.Site, p.Title, url, date); err != nil {
			return apperrors.NewStore(fmt.Sprintf("insert posting %q", p.Title), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStore("commit transaction", err)
	}

	logger.ForStore().Info().Int("count", len(postings)).Msg("Saved postings to postgres")
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
