// Package store provides MongoDB-backed persistence for registrations and
// admin accounts, behind a connection manager that degrades gracefully when
// the database is unreachable.
// File: store/mongo.go
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"inohax-registration/logger"
)

// Sentinel errors shared by the stores.
var (
	ErrNotConnected  = errors.New("database is not connected")
	ErrNotFound      = errors.New("document not found")
	ErrInvalidID     = errors.New("invalid document id")
	ErrUsernameTaken = errors.New("username already exists")
	ErrLastAdmin     = errors.New("cannot delete the last admin user")
)

// ConnState is the lifecycle state of the connection manager.
type ConnState int

// Connection lifecycle states.
const (
	StateUninitialized ConnState = iota
	StateConnecting
	StateConnected
	StateFailed
)

// Timeouts applied to the dial so a missing database fails fast instead of
// hanging the request.
const (
	connectTimeout         = 5 * time.Second
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 10 * time.Second
)

// mongoClient is the subset of *mongo.Client the manager uses, extracted so
// tests can substitute a stub.
type mongoClient interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
	Disconnect(ctx context.Context) error
}

// ConnectionManager owns a single lazily-established MongoDB connection.
// Connect is safe to call on every request: once connected it is a no-op, and
// while an attempt is in flight concurrent callers block on the same attempt
// rather than dialling again.
type ConnectionManager struct {
	mu     sync.Mutex
	state  ConnState
	uri    string
	dbName string
	client mongoClient

	// overridable in tests
	dial func(ctx context.Context, opts ...*options.ClientOptions) (mongoClient, error)
}

// NewConnectionManager creates a manager for the given MongoDB URL and
// database name. No connection is attempted until Connect is called.
func NewConnectionManager(uri, dbName string) *ConnectionManager {
	return &ConnectionManager{
		state:  StateUninitialized,
		uri:    uri,
		dbName: dbName,
		dial:   dialMongo,
	}
}

func dialMongo(ctx context.Context, opts ...*options.ClientOptions) (mongoClient, error) {
	return mongo.Connect(ctx, opts...)
}

// Connect attempts to establish the connection if it is not already up.
// It never returns an error: a failure is logged with a classified reason and
// reported as false so callers can continue in degraded mode. A previous
// failure does not pin the manager in StateFailed; the next call retries.
func (m *ConnectionManager) Connect(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateConnected {
		return true
	}

	m.state = StateConnecting

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(m.uri).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout)

	client, err := m.dial(dialCtx, opts)
	if err == nil {
		if err = client.Ping(dialCtx, nil); err != nil {
			// A failed ping leaves a dialled client with topology
			// monitor goroutines running; tear it down so repeated
			// degraded-mode attempts do not accumulate clients.
			_ = client.Disconnect(context.Background())
		}
	}
	if err != nil {
		m.state = StateFailed
		logger.Error.Printf("[Connect] database connection failed (%s): %v", classifyConnError(err), err)
		return false
	}

	m.client = client
	m.state = StateConnected
	logger.Info.Printf("[Connect] database connected (%s)", m.dbName)
	return true
}

// Connected reports whether the manager currently holds a live connection.
func (m *ConnectionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State returns the current lifecycle state.
func (m *ConnectionManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Database returns a handle to the configured database, or nil when not
// connected.
func (m *ConnectionManager) Database() *mongo.Database {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return nil
	}
	return m.client.Database(m.dbName)
}

// Disconnect tears down the connection. Intended for process shutdown only.
func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.state = StateUninitialized
	return err
}

// classifyConnError maps a dial error onto a coarse operator-facing reason.
func classifyConnError(err error) string {
	if err == nil {
		return "ok"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "auth"):
		return "authentication failure"
	case strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "server selection"):
		return "timeout"
	default:
		return "connection error"
	}
}
