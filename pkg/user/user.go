package user

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrInvalidID     = errors.New("invalid ID format")
)

type User struct {
	MongoID  primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ID       string             `json:"id" bson:"-"`
	Name     string             `json:"name" bson:"name"`
	Username string             `json:"username" bson:"username"`
	Password string             `json:"password" bson:"password"`
}

// Fields carries the writable attributes of a user. UpdateByID applies
// only non-empty Name and Username.
type Fields struct {
	Name     string
	Username string
	Password string
}

// Filter selects users by equality. The zero Filter matches every user.
type Filter struct {
	ID       string
	Username string
}

// Repository is the data store behind the user controller.
// FindOne, UpdateByID and DeleteByID return ErrNotFound when no user
// matches; malformed keys yield ErrInvalidID.
type Repository interface {
	FindOne(ctx context.Context, filter Filter) (*User, error)
	FindMany(ctx context.Context, filter Filter) ([]*User, error)
	Create(ctx context.Context, fields Fields) (*User, error)
	UpdateByID(ctx context.Context, id string, fields Fields) (*User, error)
	DeleteByID(ctx context.Context, id string) (*User, error)
}
