package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sdars/hazard-engine/internal/domain"
)

// Store is the SQLite-backed zone and subscriber repository. Reads return
// fresh copies, so in-flight zone matching never shares mutable state with
// zone administration.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS zones (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	polygon TEXT NOT NULL,
	severity_threshold TEXT NOT NULL,
	notification_channels TEXT NOT NULL DEFAULT '[]',
	recipient_emails TEXT NOT NULL DEFAULT '[]',
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS subscribers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	zone_name TEXT NOT NULL,
	UNIQUE(email, zone_name)
);
CREATE INDEX IF NOT EXISTS idx_subscribers_zone ON subscribers(zone_name);`

// NewStore opens (or creates) the database at path and ensures the schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open zone database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create zone schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ActiveZones returns every zone with the active flag set.
func (s *Store) ActiveZones(ctx context.Context) ([]domain.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, polygon, severity_threshold, notification_channels, recipient_emails, active, created_at
		FROM zones WHERE active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query active zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// Zone fetches one zone by ID, active or not.
func (s *Store) Zone(ctx context.Context, id string) (domain.Zone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, polygon, severity_threshold, notification_channels, recipient_emails, active, created_at
		FROM zones WHERE id = ?`, id)
	z, err := scanZone(row)
	if err == sql.ErrNoRows {
		return domain.Zone{}, fmt.Errorf("zone %s not found", id)
	}
	return z, err
}

// CreateZone inserts a zone, assigning an ID and creation time when unset.
func (s *Store) CreateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	if len(z.Polygon) < 3 {
		return domain.Zone{}, fmt.Errorf("zone polygon needs at least 3 vertices, got %d", len(z.Polygon))
	}
	if _, ok := domain.ParseRiskLevel(string(z.SeverityThreshold)); !ok {
		return domain.Zone{}, fmt.Errorf("invalid severity threshold %q", z.SeverityThreshold)
	}
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	if z.CreatedAt.IsZero() {
		z.CreatedAt = time.Now().UTC()
	}
	z.Active = true

	polygon, err := json.Marshal(z.Polygon)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("encode polygon: %w", err)
	}
	channels, err := json.Marshal(emptyIfNil(z.NotificationChannels))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("encode channels: %w", err)
	}
	emails, err := json.Marshal(emptyIfNil(z.RecipientEmails))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("encode recipient emails: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO zones (id, name, polygon, severity_threshold, notification_channels, recipient_emails, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
		z.ID, z.Name, string(polygon), string(z.SeverityThreshold), string(channels), string(emails), z.CreatedAt)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("insert zone %s: %w", z.Name, err)
	}
	return z, nil
}

// DeactivateZone soft-deletes a zone so existing references stay resolvable.
func (s *Store) DeactivateZone(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE zones SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate zone %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("zone %s not found", id)
	}
	return nil
}

// Subscribe registers an email for a zone name. Duplicate subscriptions are
// ignored.
func (s *Store) Subscribe(ctx context.Context, email, zoneName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (email, zone_name) VALUES (?, ?)`, email, zoneName)
	if err != nil {
		return fmt.Errorf("subscribe %s to zone %s: %w", email, zoneName, err)
	}
	return nil
}

// SubscribersForZone returns the emails subscribed to a zone name.
func (s *Store) SubscribersForZone(ctx context.Context, zoneName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM subscribers WHERE zone_name = ? ORDER BY id`, zoneName)
	if err != nil {
		return nil, fmt.Errorf("query subscribers for zone %s: %w", zoneName, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (domain.Zone, error) {
	var (
		z                         domain.Zone
		polygon, channels, emails string
		threshold                 string
		active                    int
	)
	if err := row.Scan(&z.ID, &z.Name, &polygon, &threshold, &channels, &emails, &active, &z.CreatedAt); err != nil {
		return domain.Zone{}, err
	}
	if err := json.Unmarshal([]byte(polygon), &z.Polygon); err != nil {
		return domain.Zone{}, fmt.Errorf("decode polygon for zone %s: %w", z.ID, err)
	}
	if err := json.Unmarshal([]byte(channels), &z.NotificationChannels); err != nil {
		return domain.Zone{}, fmt.Errorf("decode channels for zone %s: %w", z.ID, err)
	}
	if err := json.Unmarshal([]byte(emails), &z.RecipientEmails); err != nil {
		return domain.Zone{}, fmt.Errorf("decode recipient emails for zone %s: %w", z.ID, err)
	}
	z.SeverityThreshold = domain.RiskLevel(threshold)
	z.Active = active != 0
	return z, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
