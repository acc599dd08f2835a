package user

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo keeps users in process memory. Keys use the same ObjectID
// hex format as MongoRepo, and username uniqueness is enforced the way
// the MongoDB unique index does it.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users: make(map[string]User),
	}
}

func (r *MemoryRepo) FindOne(ctx context.Context, filter Filter) (*User, error) {
	if err := validFilter(filter); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		u := r.users[id]
		if matches(u, filter) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepo) FindMany(ctx context.Context, filter Filter) ([]*User, error) {
	if err := validFilter(filter); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0)
	for _, id := range r.order {
		u := r.users[id]
		if matches(u, filter) {
			users = append(users, &u)
		}
	}
	return users, nil
}

func (r *MemoryRepo) Create(ctx context.Context, fields Fields) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(fields.Username, "") {
		return nil, ErrAlreadyExists
	}

	oid := primitive.NewObjectID()
	u := User{
		MongoID:  oid,
		ID:       oid.Hex(),
		Name:     fields.Name,
		Username: fields.Username,
		Password: fields.Password,
	}
	r.users[u.ID] = u
	r.order = append(r.order, u.ID)

	return &u, nil
}

func (r *MemoryRepo) UpdateByID(ctx context.Context, id string, fields Fields) (*User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.Username != "" && r.usernameTaken(fields.Username, id) {
		return nil, ErrAlreadyExists
	}

	if fields.Name != "" {
		u.Name = fields.Name
	}
	if fields.Username != "" {
		u.Username = fields.Username
	}
	r.users[id] = u

	return &u, nil
}

func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) (*User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.users, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return &u, nil
}

// usernameTaken must be called with r.mu held.
func (r *MemoryRepo) usernameTaken(username, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}

func validFilter(filter Filter) error {
	if filter.ID == "" {
		return nil
	}
	if _, err := primitive.ObjectIDFromHex(filter.ID); err != nil {
		return ErrInvalidID
	}
	return nil
}

func matches(u User, filter Filter) bool {
	if filter.ID != "" && u.ID != filter.ID {
		return false
	}
	if filter.Username != "" && u.Username != filter.Username {
		return false
	}
	return true
}
