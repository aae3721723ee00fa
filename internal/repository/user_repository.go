package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

// UserRepo reads contact details for notification lookups.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,name,email FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.Name, &u.Email)
    if errors.Is(err, sql.ErrNoRows) {
        return model.User{}, ErrUserNotFound
    }
    return u, err
}
