package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"circlecrates/internal/models"
)

// ErrUserNotFound is returned for lookups of users that were never
// persisted.
var ErrUserNotFound = errors.New("user not found")

// UserDefaults seeds records created lazily on first access.
type UserDefaults struct {
	StartingCoins        int64
	ConfirmationsEnabled bool
}

// UserRepository provides access to persisted user records.
type UserRepository interface {
	// Get retrieves a user record, or ErrUserNotFound.
	Get(ctx context.Context, id string) (*models.User, error)

	// GetOrCreate retrieves a user record, creating it with the given
	// defaults on first access. Newly created records are persisted
	// immediately.
	GetOrCreate(ctx context.Context, id string, defaults UserDefaults) (*models.User, error)

	// Save rewrites the whole user document.
	Save(ctx context.Context, user *models.User) error

	// Delete removes a user record.
	Delete(ctx context.Context, id string) error

	// All returns every persisted user record.
	All(ctx context.Context) ([]*models.User, error)

	// Count returns the number of persisted users.
	Count(ctx context.Context) (int, error)
}

// userRepository implements UserRepository over SQLite.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT doc FROM users WHERE user_id = ?", id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return decodeUser(id, doc)
}

func (r *userRepository) GetOrCreate(ctx context.Context, id string, defaults UserDefaults) (*models.User, error) {
	user, err := r.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = models.NewUser(id, defaults.StartingCoins, defaults.ConfirmationsEnabled)
	user.Normalize()
	if err := r.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.UserID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, user.UserID, string(doc), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) All(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, doc FROM users ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*models.User
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		user, err := decodeUser(id, doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// decodeUser tolerates older documents: missing maps are backfilled
// and the primary key wins over whatever the document says.
func decodeUser(id, doc string) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", id, err)
	}
	user.UserID = id
	user.Normalize()
	return &user, nil
}
