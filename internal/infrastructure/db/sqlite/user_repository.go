package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID          string `db:"id"`
	Username    string `db:"username"`
	PhoneNumber string `db:"phone_number"`
	CreatedAt   string `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Username:    r.Username,
		PhoneNumber: r.PhoneNumber,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.q.Insert(tableUsers).Rows(goqu.Record{
		"id":           user.ID,
		"username":     user.Username,
		"phone_number": user.PhoneNumber,
		"created_at":   formatTime(user.CreatedAt),
	}).Executor().ExecContext(ctx)
	if err == nil {
		return nil
	}

	switch msg := err.Error(); {
	case strings.Contains(msg, "UNIQUE constraint failed: users.id"):
		return domain.ErrDuplicateID
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
		return domain.ErrDuplicateUsername
	}
	return writeFailed("insert user", err)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, goqu.Ex{"id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, goqu.Ex{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, where goqu.Ex) (*domain.User, error) {
	var row userRow
	found, err := r.db.q.From(tableUsers).Where(where).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return row.toDomain(), nil
}
