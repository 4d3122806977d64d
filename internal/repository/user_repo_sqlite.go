package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"driver_dashboard/internal/model"

	"github.com/mattn/go-sqlite3"
)

type sqliteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a sqlite-backed UserRepository
func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *model.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		user.Username, user.Name, user.PasswordHash, user.Role,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = int(id)
	return nil
}

func (r *sqliteUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, name, password_hash, role FROM users WHERE username = ?`, username)
}

func (r *sqliteUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, name, password_hash, role FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
