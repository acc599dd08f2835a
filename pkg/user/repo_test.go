package user_test

import (
	"context"
	"strings"
	"testing"

	"userservice/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "test.users"

func userDoc(id primitive.ObjectID, name, username string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "username", Value: username},
		{Key: "password", Value: "p"},
	}
}

func TestFindOneRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("found by username", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "Alice", "alice")))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.FindOne(ctx, user.Filter{Username: "alice"})

		require.NoError(t, err)
		assert.Equal(t, id.Hex(), u.ID)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, "alice", u.Username)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.FindOne(ctx, user.Filter{Username: "ghost"})

		assert.ErrorIs(t, err, user.ErrNotFound)
		assert.Nil(t, u)
	})

	mt.Run("invalid ID format", func(mt *mtest.T) {
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.FindOne(ctx, user.Filter{ID: "oops"})

		assert.ErrorIs(t, err, user.ErrInvalidID)
		assert.Nil(t, u)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "some error",
		}))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.FindOne(ctx, user.Filter{Username: "alice"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrNotFound)
		assert.Nil(t, u)
	})
}

func TestFindManyRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("success", func(mt *mtest.T) {
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(first, "Alice", "alice"),
			userDoc(second, "Bob", "bob"),
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		users, err := repo.FindMany(ctx, user.Filter{})

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, first.Hex(), users[0].ID)
		assert.Equal(t, "bob", users[1].Username)
	})

	mt.Run("empty result is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := user.NewMongoRepo(mt.DB, "users")

		users, err := repo.FindMany(ctx, user.Filter{ID: primitive.NewObjectID().Hex()})

		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	mt.Run("undecodable document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "oops"}, {Key: "name", Value: "broken"}},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		users, err := repo.FindMany(ctx, user.Filter{})

		assert.Error(t, err)
		assert.Nil(t, users)
	})

	mt.Run("mongo Find error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "some error",
		}))
		repo := user.NewMongoRepo(mt.DB, "users")

		users, err := repo.FindMany(ctx, user.Filter{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "some error")
		assert.Nil(t, users)
	})

	mt.Run("invalid ID format", func(mt *mtest.T) {
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.FindMany(ctx, user.Filter{ID: "123"})

		assert.ErrorIs(t, err, user.ErrInvalidID)
	})
}

func TestCreateRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.Create(ctx, user.Fields{Name: "A", Username: "a1", Password: "p"})

		require.NoError(t, err)
		assert.Len(t, u.ID, 24)
		assert.Equal(t, u.MongoID.Hex(), u.ID)
		assert.Equal(t, "A", u.Name)
		assert.Equal(t, "a1", u.Username)
		assert.Equal(t, "p", u.Password)
	})

	mt.Run("long password is stored as given", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := user.NewMongoRepo(mt.DB, "users")
		long := strings.Repeat("x", 73)

		u, err := repo.Create(ctx, user.Fields{Name: "A", Username: "a1", Password: long})

		require.NoError(t, err)
		assert.Equal(t, long, u.Password)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "insert", started.CommandName)
		doc := started.Command.Lookup("documents", "0").Document()
		assert.Equal(t, long, doc.Lookup("password").StringValue())
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.Create(ctx, user.Fields{Name: "A", Username: "a1", Password: "p"})

		assert.ErrorIs(t, err, user.ErrAlreadyExists)
		assert.Nil(t, u)
	})

	mt.Run("insert error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.Create(ctx, user.Fields{Name: "A", Username: "a1", Password: "p"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, user.ErrAlreadyExists)
		assert.Nil(t, u)
	})
}

func TestUpdateByIDRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("success", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "B", "alice")},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.UpdateByID(ctx, id.Hex(), user.Fields{Name: "B"})

		require.NoError(t, err)
		assert.Equal(t, id.Hex(), u.ID)
		assert.Equal(t, "B", u.Name)
		assert.Equal(t, "alice", u.Username)
	})

	mt.Run("sets only provided fields", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "B", "alice")},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.UpdateByID(ctx, id.Hex(), user.Fields{Name: "B"})
		require.NoError(t, err)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		set := started.Command.Lookup("update", "$set").Document()
		assert.Equal(t, "B", set.Lookup("name").StringValue())
		_, err = set.LookupErr("username")
		assert.Error(t, err)
	})

	mt.Run("password alone is not an update", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "Alice", "alice")))
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.UpdateByID(ctx, id.Hex(), user.Fields{Password: "new"})
		require.NoError(t, err)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "find", started.CommandName)
	})

	mt.Run("no fields reads the current user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "Alice", "alice")))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.UpdateByID(ctx, id.Hex(), user.Fields{})

		require.NoError(t, err)
		assert.Equal(t, "Alice", u.Name)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: nil},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.UpdateByID(ctx, primitive.NewObjectID().Hex(), user.Fields{Name: "B"})

		assert.ErrorIs(t, err, user.ErrNotFound)
		assert.Nil(t, u)
	})

	mt.Run("invalid ID format", func(mt *mtest.T) {
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.UpdateByID(ctx, "nope", user.Fields{Name: "B"})

		assert.ErrorIs(t, err, user.ErrInvalidID)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "error",
		}))
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.UpdateByID(ctx, primitive.NewObjectID().Hex(), user.Fields{Name: "B"})

		assert.EqualError(t, err, "failed to update user: error")
	})
}

func TestDeleteByIDRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("delete success", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "Alice", "alice")},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.DeleteByID(ctx, id.Hex())

		require.NoError(t, err)
		assert.Equal(t, id.Hex(), u.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: nil},
		))
		repo := user.NewMongoRepo(mt.DB, "users")

		u, err := repo.DeleteByID(ctx, primitive.NewObjectID().Hex())

		assert.ErrorIs(t, err, user.ErrNotFound)
		assert.Nil(t, u)
	})

	mt.Run("invalid ID format", func(mt *mtest.T) {
		repo := user.NewMongoRepo(mt.DB, "users")

		_, err := repo.DeleteByID(ctx, "invalid")

		assert.ErrorIs(t, err, user.ErrInvalidID)
	})
}
