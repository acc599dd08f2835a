package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCollection = "users"

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database, collection string) *MongoRepo {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoRepo{
		collection: db.Collection(collection),
	}
}

func (r *MongoRepo) FindOne(ctx context.Context, filter Filter) (*User, error) {
	query, err := filterDoc(filter)
	if err != nil {
		return nil, err
	}

	var u User
	err = r.collection.FindOne(ctx, query).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	u.ID = u.MongoID.Hex()
	return &u, nil
}

func (r *MongoRepo) FindMany(ctx context.Context, filter Filter) ([]*User, error) {
	query, err := filterDoc(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*User, 0)
	for cursor.Next(ctx) {
		var u User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		u.ID = u.MongoID.Hex()
		users = append(users, &u)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *MongoRepo) Create(ctx context.Context, fields Fields) (*User, error) {
	u := &User{
		Name:     fields.Name,
		Username: fields.Username,
		Password: fields.Password,
	}

	result, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}
	u.MongoID = oid
	u.ID = oid.Hex()

	return u, nil
}

func (r *MongoRepo) UpdateByID(ctx context.Context, id string, fields Fields) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := updateDoc(fields)
	if len(set) == 0 {
		return r.FindOne(ctx, Filter{ID: id})
	}

	var updated User
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	updated.ID = updated.MongoID.Hex()
	return &updated, nil
}

func (r *MongoRepo) DeleteByID(ctx context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var deleted User
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	deleted.ID = deleted.MongoID.Hex()
	return &deleted, nil
}

func filterDoc(filter Filter) (bson.M, error) {
	query := bson.M{}
	if filter.ID != "" {
		objectID, err := primitive.ObjectIDFromHex(filter.ID)
		if err != nil {
			return nil, ErrInvalidID
		}
		query["_id"] = objectID
	}
	if filter.Username != "" {
		query["username"] = filter.Username
	}
	return query, nil
}

// updateDoc only ever sets name and username; the password is written
// once, at creation.
func updateDoc(fields Fields) bson.M {
	set := bson.M{}
	if fields.Name != "" {
		set["name"] = fields.Name
	}
	if fields.Username != "" {
		set["username"] = fields.Username
	}
	return set
}
