package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteStore implements StoreRepo over a local SQLite database, for
// running without a Trello board. Row IDs stand in for card IDs and a
// stage column stands in for the containing list.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store repository
func NewSQLiteStore(dbPath string) (repo.StoreRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			line_name TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			is_admin INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create contacts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scheduled (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient_name TEXT NOT NULL DEFAULT '',
			recipient_user_id TEXT NOT NULL DEFAULT '',
			sender_user_id TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			due TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL DEFAULT 'scheduled'
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create scheduled table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_scheduled_stage ON scheduled(stage)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// ListContacts lists contacts in insertion order
func (s *sqliteStore) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, line_name, created_at FROM contacts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		var id int64
		var c domain.Contact
		if err := rows.Scan(&id, &c.UserID, &c.Name, &c.LineName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.CardID = strconv.FormatInt(id, 10)
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

// ListAdmins lists the user IDs flagged as admins
func (s *sqliteStore) ListAdmins(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM contacts WHERE is_admin = 1 AND user_id != '' ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListScheduled lists messages still in the scheduled stage
func (s *sqliteStore) ListScheduled(ctx context.Context) ([]*domain.ScheduledMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient_name, recipient_user_id, sender_user_id, message, created_at, due
		FROM scheduled WHERE stage = 'scheduled' ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ScheduledMessage
	for rows.Next() {
		var id int64
		var m domain.ScheduledMessage
		if err := rows.Scan(&id, &m.RecipientName, &m.RecipientUserID, &m.SenderUserID,
			&m.Message, &m.CreatedAt, &m.Due); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled: %w", err)
		}
		m.CardID = strconv.FormatInt(id, 10)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// CreateContact inserts a contact row
func (s *sqliteStore) CreateContact(ctx context.Context, contact *domain.Contact) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (user_id, name, line_name, created_at) VALUES (?, ?, ?, ?)
	`, contact.UserID, contact.DisplayName(), contact.LineName, contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read contact id: %w", err)
	}
	contact.CardID = strconv.FormatInt(id, 10)
	return nil
}

// CreateScheduled inserts a scheduled-message row
func (s *sqliteStore) CreateScheduled(ctx context.Context, msg *domain.ScheduledMessage, due time.Time) error {
	dueStr := due.UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled (recipient_name, recipient_user_id, sender_user_id, message, created_at, due)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.RecipientName, msg.RecipientUserID, msg.SenderUserID, msg.Message, msg.CreatedAt, dueStr)
	if err != nil {
		return fmt.Errorf("failed to insert scheduled: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read scheduled id: %w", err)
	}
	msg.CardID = strconv.FormatInt(id, 10)
	msg.Due = dueStr
	return nil
}

// MarkSent transitions a row to the sent stage
func (s *sqliteStore) MarkSent(ctx context.Context, cardID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE scheduled SET stage = 'sent' WHERE id = ?`, cardID)
	if err != nil {
		return fmt.Errorf("failed to mark sent: %w", err)
	}
	return nil
}

// DeleteScheduled deletes a row outright
func (s *sqliteStore) DeleteScheduled(ctx context.Context, cardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scheduled WHERE id = ?`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
