package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID          string    `bson:"_id"`
	Username    string    `bson:"username"`
	PhoneNumber string    `bson:"phone_number"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		ID:          user.ID,
		Username:    user.Username,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if dup, ok := duplicateIndex(err); ok {
			if dup == usernameIndex {
				return domain.ErrDuplicateUsername
			}
			return domain.ErrDuplicateID
		}
		return writeFailed("insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.User{
		ID:          mu.ID,
		Username:    mu.Username,
		PhoneNumber: mu.PhoneNumber,
		CreatedAt:   mu.CreatedAt.UTC(),
	}, nil
}

// duplicateIndex returns the name of the unique index a duplicate key write
// error violated. The server reports it as "index: <name> dup key: ...".
func duplicateIndex(err error) (string, bool) {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return "", false
	}
	for _, e := range we.WriteErrors {
		if e.Code != duplicateKeyCode {
			continue
		}
		_, rest, found := strings.Cut(e.Message, "index: ")
		if !found {
			return "", true
		}
		name, _, _ := strings.Cut(rest, " ")
		return name, true
	}
	return "", false
}
