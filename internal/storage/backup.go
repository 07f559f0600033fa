package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"circlecrates/internal/models"
)

// backupVersion marks the backup document format.
const backupVersion = 1

// Backup is the exported form of the whole user store.
type Backup struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Users     []*models.User `json:"users"`
}

// ExportBackup writes all user records to w as a JSON document. A
// non-empty password encrypts the document.
func ExportBackup(ctx context.Context, repo UserRepository, w io.Writer, password string) error {
	users, err := repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read users for backup: %w", err)
	}

	backup := Backup{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC(),
		Users:     users,
	}
	payload, err := json.Marshal(backup)
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}

	if password != "" {
		payload, err = EncryptBackup(payload, password)
		if err != nil {
			return err
		}
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ImportBackup replaces the whole user store with the backup read from
// r, inside a single database transaction: either every record lands
// or none do. Returns the number of restored users.
func ImportBackup(ctx context.Context, db *DB, r io.Reader, password string) (int, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup: %w", err)
	}

	if IsEncrypted(payload) {
		payload, err = DecryptBackup(payload, password)
		if err != nil {
			return 0, err
		}
	}

	var backup Backup
	if err := json.Unmarshal(payload, &backup); err != nil {
		return 0, fmt.Errorf("failed to parse backup: %w", err)
	}
	if backup.Version != backupVersion {
		return 0, fmt.Errorf("unsupported backup version %d", backup.Version)
	}

	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		for _, user := range backup.Users {
			doc, err := json.Marshal(user)
			if err != nil {
				return fmt.Errorf("failed to marshal user %s: %w", user.UserID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO users (user_id, doc, updated_at) VALUES (?, ?, ?)",
				user.UserID, string(doc), time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to restore user %s: %w", user.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(backup.Users), nil
}
