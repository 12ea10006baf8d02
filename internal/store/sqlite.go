package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/votehub/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
// The database lives in memory and disappears when the store is closed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a fresh in-memory SQLite database.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" gets its own database, so all access
	// must go through one long-lived connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string. ulid.Make draws from a process-wide
// monotonic source, so ids created within one millisecond still sort in order.
func newULID() string {
	return ulid.Make().String()
}

// NewID returns a fresh, time-ordered feature id.
func NewID() string {
	return newULID()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection, discarding all data.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const featureColumns = `f.id, f.title, f.description, f.status, f.category, f.votes, f.comments, f.author, f.date, COALESCE(v.direction, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeature(row rowScanner) (*models.FeatureRequest, error) {
	f := &models.FeatureRequest{}
	var status, date, vote string
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &status, &f.Category, &f.Votes, &f.Comments, &f.Author, &date, &vote); err != nil {
		return nil, err
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date of feature %s: %w", f.ID, err)
	}
	f.Status = models.FeatureStatus(status)
	f.Date = d
	f.UserVote = models.UserVote(vote)
	return f, nil
}

func (s *SQLiteStore) ListFeatures(ctx context.Context, userID string) ([]*models.FeatureRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+featureColumns+`
		FROM features f
		LEFT JOIN user_votes v ON v.feature_id = f.id AND v.user_id = ?
		ORDER BY f.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	features := []*models.FeatureRequest{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

func (s *SQLiteStore) GetFeature(ctx context.Context, id, userID string) (*models.FeatureRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+featureColumns+`
		FROM features f
		LEFT JOIN user_votes v ON v.feature_id = f.id AND v.user_id = ?
		WHERE f.id = ?`, userID, id)

	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get feature: %w", err)
	}
	return f, nil
}

// InsertFeature assigns f.ID when it is empty and appends f before every
// existing position.
func (s *SQLiteStore) InsertFeature(ctx context.Context, f *models.FeatureRequest, userID string) error {
	if f.ID == "" {
		f.ID = newULID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var position int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MIN(position), 0) - 1 FROM features").Scan(&position); err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO features (id, position, title, description, status, category, votes, comments, author, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, position, f.Title, f.Description, string(f.Status), f.Category,
		f.Votes, f.Comments, f.Author, f.Date.Format(dateLayout),
	)
	if err != nil {
		return fmt.Errorf("insert feature: %w", err)
	}

	if f.UserVote != models.UserVoteNone {
		if err := setVote(ctx, tx, f.ID, userID, f.UserVote); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordVote(ctx context.Context, featureID, userID string, next models.UserVote, delta int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, "UPDATE features SET votes = votes + ? WHERE id = ?", delta, featureID)
	if err != nil {
		return fmt.Errorf("update votes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, featureID)
	}

	if next == models.UserVoteNone {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_votes WHERE user_id = ? AND feature_id = ?", userID, featureID); err != nil {
			return fmt.Errorf("clear vote: %w", err)
		}
	} else if err := setVote(ctx, tx, featureID, userID, next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func setVote(ctx context.Context, tx *sql.Tx, featureID, userID string, vote models.UserVote) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_votes (user_id, feature_id, direction) VALUES (?, ?, ?)
		ON CONFLICT(user_id, feature_id) DO UPDATE SET direction = excluded.direction`,
		userID, featureID, string(vote),
	)
	if err != nil {
		return fmt.Errorf("set vote: %w", err)
	}
	return nil
}
