package jsonfile

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository implements ports.UserRepository with a linear scan over the
// document's user list.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

// Create appends user to the document, rejecting duplicate ids and usernames.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	return r.store.Update(func(doc *domain.Document) error {
		for _, u := range doc.Users {
			if u.ID == user.ID {
				return domain.ErrDuplicateID
			}
			if u.Username == user.Username {
				return domain.ErrDuplicateUsername
			}
		}
		clone := *user
		doc.Users = append(doc.Users, &clone)
		return nil
	})
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	var found *domain.User
	r.store.View(func(doc *domain.Document) {
		for _, u := range doc.Users {
			if match(u) {
				found = u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}
