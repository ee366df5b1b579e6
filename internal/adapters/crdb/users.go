package crdb

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

const userColumns = `id, email, name, phone, password_hash, role, notifications, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u     domain.User
		prefs []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &prefs, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prefs, &u.Notifications); err != nil {
		return nil, errors.Wrap(err, "decode notification prefs")
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u domain.User) error {
	prefs, err := json.Marshal(u.Notifications)
	if err != nil {
		return errors.Wrap(err, "encode notification prefs")
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, domain.NormalizeEmail(u.Email), u.Name, u.Phone, u.PasswordHash, u.Role, prefs, u.CreatedAt, u.UpdatedAt)
	if pgCode(err) == UniqueViolationCode {
		return errors.Wrapf(domain.ErrConflict, "e-mail %s is registered", u.Email)
	}
	return errors.Wrap(err, "insert user")
}

func (r *Repository) getUser(ctx context.Context, column, value string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "user %s", value)
	}
	return u, errors.Wrap(err, "select user")
}

func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email", domain.NormalizeEmail(email))
}

func (r *Repository) SaveUser(ctx context.Context, u domain.User) error {
	prefs, err := json.Marshal(u.Notifications)
	if err != nil {
		return errors.Wrap(err, "encode notification prefs")
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, password_hash = $4, role = $5, notifications = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Name, u.Phone, u.PasswordHash, u.Role, prefs, u.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrNotFound, "user %s", u.ID)
	}
	return nil
}
