// Package mongodb persists users and exercises in MongoDB collections.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

// Repository provides MongoDB-backed persistence.
type Repository struct {
	client    *mongo.Client
	users     *mongo.Collection
	exercises *mongo.Collection
}

// Connect dials uri, verifies the primary is reachable and returns a
// Repository over database.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewRepository(client, database), nil
}

// NewRepository constructs a Repository from an existing client.
func NewRepository(client *mongo.Client, database string) *Repository {
	db := client.Database(database)
	return &Repository{
		client:    client,
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
	}
}

// EnsureIndexes creates the index backing log queries.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("user_id_insertion"),
	})
	return err
}

// InsertUser implements domain.UserRepository.
func (r *Repository) InsertUser(ctx context.Context, user domain.User) error {
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return err
	}
	_, err = r.users.InsertOne(ctx, userDocument{ID: id, Username: user.Username})
	return err
}

// FindUserByID implements domain.UserRepository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	user := doc.toDomain()
	return &user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomain())
	}
	return users, nil
}

// InsertExercise implements domain.ExerciseRepository.
func (r *Repository) InsertExercise(ctx context.Context, exercise domain.Exercise) error {
	id, err := primitive.ObjectIDFromHex(exercise.ID)
	if err != nil {
		return err
	}
	userID, err := primitive.ObjectIDFromHex(exercise.UserID)
	if err != nil {
		return err
	}
	_, err = r.exercises.InsertOne(ctx, exerciseDocument{
		ID:          id,
		UserID:      userID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	})
	return err
}

// FindExercises implements domain.ExerciseRepository. ObjectIDs grow with
// creation time, so sorting on _id yields insertion order.
func (r *Repository) FindExercises(ctx context.Context, userID string, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	query := bson.M{"user_id": oid}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lte"] = *filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.exercises.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	exercises := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		exercises = append(exercises, doc.toDomain())
	}
	return exercises, nil
}

// Ping checks the primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (d userDocument) toDomain() domain.User {
	return domain.User{ID: d.ID.Hex(), Username: d.Username}
}

func (d exerciseDocument) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Description: d.Description,
		Duration:    d.Duration,
		Date:        d.Date.UTC(),
	}
}
