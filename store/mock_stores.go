// File: store/mock_stores.go
//
// In-memory fakes used by tests across packages. They implement the store
// interfaces without a running database.
package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inohax-registration/models"
)

// Ensure the fakes implement the store interfaces.
var (
	_ RegistrationStore = (*FakeRegistrationStore)(nil)
	_ AdminStore        = (*FakeAdminStore)(nil)
)

// ---------------- fake connector ----------------

// FakeConnector satisfies the services.Connector contract with a fixed
// answer, standing in for the real connection manager.
type FakeConnector struct {
	ConnectedVal bool
	ConnectCalls int
}

// Connect reports the configured availability.
func (f *FakeConnector) Connect(context.Context) bool {
	f.ConnectCalls++
	return f.ConnectedVal
}

// ---------------- fake registration store ----------------

// FakeRegistrationStore keeps registrations in memory and can be forced to
// fail to exercise the degraded path.
type FakeRegistrationStore struct {
	mu sync.Mutex

	Registrations     []models.Registration
	TestRegistrations []models.Registration

	InsertErr error
	ListErr   error
	DeleteErr error
}

// NewFakeRegistrationStore returns an empty fake.
func NewFakeRegistrationStore() *FakeRegistrationStore {
	return &FakeRegistrationStore{}
}

// Insert appends to the in-memory real collection.
func (f *FakeRegistrationStore) Insert(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return f.InsertErr
	}
	reg.ID = primitive.NewObjectID()
	f.Registrations = append(f.Registrations, *reg)
	return nil
}

// InsertTest appends to the in-memory test collection.
func (f *FakeRegistrationStore) InsertTest(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return f.InsertErr
	}
	reg.ID = primitive.NewObjectID()
	f.TestRegistrations = append(f.TestRegistrations, *reg)
	return nil
}

// List returns the stored registrations newest first.
func (f *FakeRegistrationStore) List(_ context.Context) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Registration, len(f.Registrations))
	for i, reg := range f.Registrations {
		out[len(f.Registrations)-1-i] = reg
	}
	return out, nil
}

// Delete removes a registration by hex id.
func (f *FakeRegistrationStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}
	for i, reg := range f.Registrations {
		if reg.ID.Hex() == id {
			f.Registrations = append(f.Registrations[:i], f.Registrations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ---------------- fake admin store ----------------

// FakeAdminStore keeps admin accounts in memory. Setting Unreachable makes
// every method fail with ErrNotConnected, simulating a database outage.
type FakeAdminStore struct {
	mu sync.Mutex

	Admins map[string]*models.AdminUser // keyed by username
	seq    int64

	Unreachable      bool
	EnsureCalls      int
	LastLoginTouched []primitive.ObjectID
}

// NewFakeAdminStore returns an empty fake.
func NewFakeAdminStore() *FakeAdminStore {
	return &FakeAdminStore{Admins: make(map[string]*models.AdminUser)}
}

// EnsureInitialAdmin seeds the bootstrap admin when the fake is empty.
func (f *FakeAdminStore) EnsureInitialAdmin(ctx context.Context) error {
	f.mu.Lock()
	f.EnsureCalls++
	if f.Unreachable {
		f.mu.Unlock()
		return ErrNotConnected
	}
	empty := len(f.Admins) == 0
	f.mu.Unlock()

	if !empty {
		return nil
	}
	_, err := f.Create(ctx, bootstrapAdminUsername, bootstrapAdminPassword)
	return err
}

// FindByUsernameOrID looks an admin up by username or adminId.
func (f *FakeAdminStore) FindByUsernameOrID(_ context.Context, key string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return nil, ErrNotConnected
	}
	for _, admin := range f.Admins {
		if admin.Username == key || admin.AdminID == key {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all admins.
func (f *FakeAdminStore) List(_ context.Context) ([]models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return nil, ErrNotConnected
	}
	out := []models.AdminUser{}
	for _, admin := range f.Admins {
		out = append(out, *admin)
	}
	return out, nil
}

// Create adds a new admin with the next sequential id.
func (f *FakeAdminStore) Create(_ context.Context, username, password string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return nil, ErrNotConnected
	}
	if _, exists := f.Admins[username]; exists {
		return nil, ErrUsernameTaken
	}

	f.seq++
	now := time.Now()
	admin := &models.AdminUser{
		ID:        primitive.NewObjectID(),
		Username:  username,
		AdminID:   FormatAdminID(f.seq),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	f.Admins[username] = admin
	copied := *admin
	return &copied, nil
}

// Update renames an admin and optionally resets the password.
func (f *FakeAdminStore) Update(_ context.Context, id, username, password string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return nil, ErrNotConnected
	}
	for _, other := range f.Admins {
		if other.Username == username && other.ID.Hex() != id {
			return nil, ErrUsernameTaken
		}
	}
	for key, admin := range f.Admins {
		if admin.ID.Hex() == id {
			delete(f.Admins, key)
			admin.Username = username
			if password != "" {
				if err := admin.SetPassword(password); err != nil {
					return nil, err
				}
			}
			admin.UpdatedAt = time.Now()
			f.Admins[username] = admin
			copied := *admin
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes an admin, refusing to delete the last one.
func (f *FakeAdminStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return ErrNotConnected
	}
	if len(f.Admins) <= 1 {
		return ErrLastAdmin
	}
	for key, admin := range f.Admins {
		if admin.ID.Hex() == id {
			delete(f.Admins, key)
			return nil
		}
	}
	return ErrNotFound
}

// TouchLastLogin stamps lastLogin and records the touch for assertions.
func (f *FakeAdminStore) TouchLastLogin(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return ErrNotConnected
	}
	now := time.Now()
	for _, admin := range f.Admins {
		if admin.ID == id {
			admin.LastLogin = &now
		}
	}
	f.LastLoginTouched = append(f.LastLoginTouched, id)
	return nil
}

// Count returns the number of stored admins.
func (f *FakeAdminStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Unreachable {
		return 0, ErrNotConnected
	}
	return int64(len(f.Admins)), nil
}
