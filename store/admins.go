// File: store/admins.go
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inohax-registration/logger"
	"inohax-registration/models"
)

const (
	adminUsersCollection = "admin_users"
	countersCollection   = "counters"
	adminIDSequence      = "adminId"
)

// Bootstrap identity created the first time an admin-gated endpoint is hit
// with an empty admin collection.
const (
	bootstrapAdminUsername = "Sarang"
	bootstrapAdminPassword = "Inohax!2.0"
)

// AdminStore is the persistence contract for admin accounts.
type AdminStore interface {
	EnsureInitialAdmin(ctx context.Context) error
	FindByUsernameOrID(ctx context.Context, key string) (*models.AdminUser, error)
	List(ctx context.Context) ([]models.AdminUser, error)
	Create(ctx context.Context, username, password string) (*models.AdminUser, error)
	Update(ctx context.Context, id, username, password string) (*models.AdminUser, error)
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// MongoAdminStore implements AdminStore on top of the shared connection
// manager.
type MongoAdminStore struct {
	conn *ConnectionManager

	mu      sync.Mutex
	indexed bool
}

// NewMongoAdminStore wires an admin store to a connection manager.
func NewMongoAdminStore(conn *ConnectionManager) *MongoAdminStore {
	return &MongoAdminStore{conn: conn}
}

// ---------------- indexes ----------------

// ensureIndexes creates the unique indexes on username and adminId the first
// time a writer reaches the collection. Uniqueness is enforced by the
// database itself; the pre-checks in Create and Update only exist for
// friendlier error messages.
func (s *MongoAdminStore) ensureIndexes(ctx context.Context, db *mongo.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return
	}

	_, err := db.Collection(adminUsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "adminId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		logger.Warn.Printf("[ensureIndexes] could not create admin user indexes: %v", err)
		return
	}
	s.indexed = true
}

// mapWriteError converts a unique-index violation into the store's sentinel.
// Anything else passes through unchanged.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrUsernameTaken
	}
	return err
}

// ---------------- sequence handling ----------------

// nextAdminID atomically increments the shared counter and returns the new
// value zero-padded ("01", "02", ...). A single findOneAndUpdate with $inc is
// used so concurrent creations can never receive the same id.
func (s *MongoAdminStore) nextAdminID(ctx context.Context) (string, error) {
	db := s.conn.Database()
	if db == nil {
		return "", ErrNotConnected
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err := db.Collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": adminIDSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", err
	}
	return FormatAdminID(counter.Seq), nil
}

// FormatAdminID renders a sequence value as a zero-padded admin id.
func FormatAdminID(seq int64) string {
	return fmt.Sprintf("%02d", seq)
}

// ---------------- bootstrap ----------------

// EnsureInitialAdmin seeds the bootstrap admin when no admin exists yet. It is
// idempotent and called from every admin-gated request.
func (s *MongoAdminStore) EnsureInitialAdmin(ctx context.Context) error {
	db := s.conn.Database()
	if db == nil {
		return ErrNotConnected
	}

	count, err := db.Collection(adminUsersCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logger.Info.Println("[EnsureInitialAdmin] no admin users found, creating bootstrap admin")

	// Reset the id sequence so the bootstrap admin always gets "01".
	_, err = db.Collection(countersCollection).UpdateOne(
		ctx,
		bson.M{"_id": adminIDSequence},
		bson.M{"$set": bson.M{"seq": 0}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	_, err = s.Create(ctx, bootstrapAdminUsername, bootstrapAdminPassword)
	return err
}

// ---------------- lookups ----------------

// FindByUsernameOrID looks an admin up by username or adminId, allowing login
// with either.
func (s *MongoAdminStore) FindByUsernameOrID(ctx context.Context, key string) (*models.AdminUser, error) {
	db := s.conn.Database()
	if db == nil {
		return nil, ErrNotConnected
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"username": key},
		bson.M{"adminId": key},
	}}

	var admin models.AdminUser
	err := db.Collection(adminUsersCollection).FindOne(ctx, filter).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// List returns all admin accounts, newest first. Password material stays out
// of the response via the models' json tags.
func (s *MongoAdminStore) List(ctx context.Context) ([]models.AdminUser, error) {
	db := s.conn.Database()
	if db == nil {
		return nil, ErrNotConnected
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection(adminUsersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	admins := []models.AdminUser{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// Count returns the number of admin accounts.
func (s *MongoAdminStore) Count(ctx context.Context) (int64, error) {
	db := s.conn.Database()
	if db == nil {
		return 0, ErrNotConnected
	}
	return db.Collection(adminUsersCollection).CountDocuments(ctx, bson.M{})
}

// ---------------- mutations ----------------

// Create adds a new admin with a freshly assigned sequential id. Returns
// ErrUsernameTaken when the username is already in use.
func (s *MongoAdminStore) Create(ctx context.Context, username, password string) (*models.AdminUser, error) {
	db := s.conn.Database()
	if db == nil {
		return nil, ErrNotConnected
	}
	s.ensureIndexes(ctx, db)

	existing := db.Collection(adminUsersCollection).FindOne(ctx, bson.M{"username": username})
	if existing.Err() == nil {
		return nil, ErrUsernameTaken
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return nil, existing.Err()
	}

	adminID, err := s.nextAdminID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &models.AdminUser{
		Username:  username,
		AdminID:   adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}

	res, err := db.Collection(adminUsersCollection).InsertOne(ctx, admin)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		admin.ID = oid
	}

	logger.Info.Printf("[Create] admin %q created with id %s", username, adminID)
	return admin, nil
}

// Update changes an admin's username and, when a new password is supplied,
// re-derives the password hash.
func (s *MongoAdminStore) Update(ctx context.Context, id, username, password string) (*models.AdminUser, error) {
	db := s.conn.Database()
	if db == nil {
		return nil, ErrNotConnected
	}
	s.ensureIndexes(ctx, db)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	// Refuse the rename when another admin already holds the username.
	taken := db.Collection(adminUsersCollection).FindOne(ctx, bson.M{
		"username": username,
		"_id":      bson.M{"$ne": oid},
	})
	if taken.Err() == nil {
		return nil, ErrUsernameTaken
	}
	if taken.Err() != mongo.ErrNoDocuments {
		return nil, taken.Err()
	}

	var admin models.AdminUser
	err = db.Collection(adminUsersCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	admin.Username = username
	if password != "" {
		if err := admin.SetPassword(password); err != nil {
			return nil, err
		}
	}
	admin.UpdatedAt = time.Now()

	_, err = db.Collection(adminUsersCollection).ReplaceOne(ctx, bson.M{"_id": oid}, &admin)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &admin, nil
}

// Delete removes an admin by document id. Deletion is refused with
// ErrLastAdmin when it would leave zero admins.
func (s *MongoAdminStore) Delete(ctx context.Context, id string) error {
	db := s.conn.Database()
	if db == nil {
		return ErrNotConnected
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdmin
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := db.Collection(adminUsersCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	logger.Info.Printf("[Delete] admin %s removed", id)
	return nil
}

// TouchLastLogin stamps the admin's lastLogin field with the current time.
func (s *MongoAdminStore) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	db := s.conn.Database()
	if db == nil {
		return ErrNotConnected
	}
	_, err := db.Collection(adminUsersCollection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLogin": time.Now()}},
	)
	return err
}
