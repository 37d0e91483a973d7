// File: store/registrations.go
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inohax-registration/logger"
	"inohax-registration/models"
)

// Collection names. Test submissions are kept fully isolated from real ones.
const (
	registrationsCollection     = "registrations"
	testRegistrationsCollection = "test_registrations"
)

// RegistrationStore is the persistence contract for team registrations.
type RegistrationStore interface {
	Insert(ctx context.Context, reg *models.Registration) error
	InsertTest(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context) ([]models.Registration, error)
	Delete(ctx context.Context, id string) error
}

// MongoRegistrationStore implements RegistrationStore on top of the shared
// connection manager.
type MongoRegistrationStore struct {
	conn *ConnectionManager
}

// NewMongoRegistrationStore wires a registration store to a connection manager.
func NewMongoRegistrationStore(conn *ConnectionManager) *MongoRegistrationStore {
	return &MongoRegistrationStore{conn: conn}
}

// Insert stores a real registration. Duplicates are allowed; every submission
// becomes its own document.
func (s *MongoRegistrationStore) Insert(ctx context.Context, reg *models.Registration) error {
	return s.insert(ctx, registrationsCollection, reg)
}

// InsertTest stores a registration in the isolated test collection.
func (s *MongoRegistrationStore) InsertTest(ctx context.Context, reg *models.Registration) error {
	return s.insert(ctx, testRegistrationsCollection, reg)
}

func (s *MongoRegistrationStore) insert(ctx context.Context, collection string, reg *models.Registration) error {
	db := s.conn.Database()
	if db == nil {
		return ErrNotConnected
	}
	res, err := db.Collection(collection).InsertOne(ctx, reg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		reg.ID = oid
	}
	logger.Debug.Printf("[insert] stored registration for team %q in %s", reg.TeamName, collection)
	return nil
}

// List returns all registrations, newest first.
func (s *MongoRegistrationStore) List(ctx context.Context) ([]models.Registration, error) {
	db := s.conn.Database()
	if db == nil {
		return nil, ErrNotConnected
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection(registrationsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	registrations := []models.Registration{}
	if err := cursor.All(ctx, &registrations); err != nil {
		return nil, err
	}
	return registrations, nil
}

// Delete removes a registration by its hex document id. Returns ErrInvalidID
// for a malformed id and ErrNotFound when no document matches.
func (s *MongoRegistrationStore) Delete(ctx context.Context, id string) error {
	db := s.conn.Database()
	if db == nil {
		return ErrNotConnected
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := db.Collection(registrationsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	logger.Info.Printf("[Delete] registration %s removed", id)
	return nil
}
