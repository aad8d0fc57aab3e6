package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for profiles and emotion
// history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "murmur.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Profiles ---

// SaveProfile inserts or updates a profile.
func (s *Store) SaveProfile(p Profile) error {
	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	var age any
	if p.Age != nil {
		age = *p.Age
	}
	_, err := s.db.Exec(`
		INSERT INTO profiles (id, display_name, city, age, interests, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			city = excluded.city,
			age = excluded.age,
			interests = excluded.interests,
			updated_at = excluded.updated_at`,
		p.ID, p.DisplayName, p.City, age, p.Interests, createdAt, now,
	)
	return err
}

// GetProfile returns the profile with the given id.
func (s *Store) GetProfile(id string) (Profile, error) {
	var p Profile
	var age sql.NullInt64
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, display_name, city, age, interests, created_at, updated_at
		FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.DisplayName, &p.City, &age, &p.Interests, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Profile{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Profile{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

// --- Emotion history ---

// AppendEmotion stores one classified turn.
func (s *Store) AppendEmotion(r EmotionRecord) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO emotions (id, profile_id, session_id, emotion, intensity, confidence, provenance, reasoning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProfileID, r.SessionID, r.Emotion, r.Intensity, r.Confidence,
		r.Provenance, r.Reasoning, createdAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecentEmotions returns up to limit of the profile's newest records,
// ordered most-recent-last.
func (s *Store) RecentEmotions(profileID string, limit int) ([]EmotionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, session_id, emotion, intensity, confidence, provenance, reasoning, created_at
		FROM emotions WHERE profile_id = ?
		ORDER BY created_at DESC LIMIT ?`, profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	records, err := scanEmotions(rows)
	if err != nil {
		return nil, err
	}
	// Query is newest-first for the LIMIT; flip to most-recent-last.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// SessionEmotions returns all records for a session in insertion order
// (most-recent-last).
func (s *Store) SessionEmotions(sessionID string) ([]EmotionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, session_id, emotion, intensity, confidence, provenance, reasoning, created_at
		FROM emotions WHERE session_id = ?
		ORDER BY created_at ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	return scanEmotions(rows)
}

// CountEmotions returns the total number of records for a profile.
// Feeds the activity factor of the compatibility scorer.
func (s *Store) CountEmotions(profileID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM emotions WHERE profile_id = ?", profileID).Scan(&n)
	return n, err
}

func scanEmotions(rows *sql.Rows) ([]EmotionRecord, error) {
	defer rows.Close()
	var records []EmotionRecord
	for rows.Next() {
		var r EmotionRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.SessionID, &r.Emotion, &r.Intensity,
			&r.Confidence, &r.Provenance, &r.Reasoning, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.CreatedAt = t
		records = append(records, r)
	}
	return records, rows.Err()
}
