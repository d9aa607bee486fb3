package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Khaeshi/cafe-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

const userColumns = `id, name, email, password_hash, role, phone, auth_provider, google_id,
	profile_picture, display_name, google_access_token, google_refresh_token, token_expiry,
	created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, userID)
	return scanUser(row)
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE google_id = $1
	`, googleID)
	return scanUser(row)
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, phone, auth_provider, google_id,
			profile_picture, display_name, google_access_token, google_refresh_token, token_expiry,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, user.ID, user.Name, user.Email, nullString(user.PasswordHash), user.Role,
		nullString(user.Phone), user.AuthProvider, nullString(user.GoogleID),
		nullString(user.ProfilePicture), nullString(user.DisplayName),
		nullString(user.GoogleAccessToken), nullString(user.GoogleRefreshToken),
		user.TokenExpiry, user.CreatedAt, user.UpdatedAt)
	return storeErr(err)
}

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name               *string
	Phone              *string
	PasswordHash       *string
	Role               *string
	GoogleID           *string
	AuthProvider       *string
	ProfilePicture     *string
	DisplayName        *string
	GoogleAccessToken  *string
	GoogleRefreshToken *string
	TokenExpiry        *time.Time
}

func (s *Store) UpdateUser(ctx context.Context, userID string, update UserUpdate) (model.User, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{userID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.GoogleID != nil {
		add("google_id", *update.GoogleID)
	}
	if update.AuthProvider != nil {
		add("auth_provider", *update.AuthProvider)
	}
	if update.ProfilePicture != nil {
		add("profile_picture", *update.ProfilePicture)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.GoogleAccessToken != nil {
		add("google_access_token", *update.GoogleAccessToken)
	}
	if update.GoogleRefreshToken != nil {
		add("google_refresh_token", *update.GoogleRefreshToken)
	}
	if update.TokenExpiry != nil {
		add("token_expiry", *update.TokenExpiry)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+userColumns+`
	`, args...)
	return scanUser(row)
}

func (s *Store) DeleteUser(ctx context.Context, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price, image, description, is_available, created_at, updated_at
		FROM menu_items
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var item model.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Image,
			&item.Description, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetMenuItem(ctx context.Context, itemID string) (model.MenuItem, error) {
	var item model.MenuItem
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, price, image, description, is_available, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, itemID)
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Image,
		&item.Description, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	return item, storeErr(err)
}

func (s *Store) CreateMenuItem(ctx context.Context, item model.MenuItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO menu_items (id, name, price, image, description, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Name, item.Price, item.Image, item.Description, item.IsAvailable,
		item.CreatedAt, item.UpdatedAt)
	return storeErr(err)
}

func (s *Store) UpdateMenuItem(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, price = $3, image = $4, description = $5, is_available = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, name, price, image, description, is_available, created_at, updated_at
	`, item.ID, item.Name, item.Price, item.Image, item.Description, item.IsAvailable)
	var updated model.MenuItem
	err := row.Scan(&updated.ID, &updated.Name, &updated.Price, &updated.Image,
		&updated.Description, &updated.IsAvailable, &updated.CreatedAt, &updated.UpdatedAt)
	return updated, storeErr(err)
}

func (s *Store) DeleteMenuItem(ctx context.Context, itemID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users`)
	return err
}

func (s *Store) DeleteAllMenuItems(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM menu_items`)
	return err
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var passwordHash, phone, googleID, profilePicture, displayName *string
	var accessToken, refreshToken *string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&passwordHash,
		&user.Role,
		&phone,
		&user.AuthProvider,
		&googleID,
		&profilePicture,
		&displayName,
		&accessToken,
		&refreshToken,
		&user.TokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, storeErr(err)
	}
	user.PasswordHash = deref(passwordHash)
	user.Phone = deref(phone)
	user.GoogleID = deref(googleID)
	user.ProfilePicture = deref(profilePicture)
	user.DisplayName = deref(displayName)
	user.GoogleAccessToken = deref(accessToken)
	user.GoogleRefreshToken = deref(refreshToken)
	return user, nil
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
