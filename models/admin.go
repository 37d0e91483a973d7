// File: models/admin.go
package models

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for admin password storage.
const (
	pbkdf2Iterations = 1000
	pbkdf2KeyLength  = 64
	saltLength       = 16
)

// AdminUser is a dashboard administrator account. Only the salted hash of the
// password is ever stored.
type AdminUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username     string             `bson:"username" json:"username"`
	AdminID      string             `bson:"adminId" json:"adminId"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	PasswordSalt string             `bson:"passwordSalt" json:"-"`
	LastLogin    *time.Time         `bson:"lastLogin" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SetPassword generates a fresh random salt and derives the password hash via
// PBKDF2-SHA512. The plaintext is never retained.
func (a *AdminUser) SetPassword(plaintext string) error {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	a.PasswordSalt = hex.EncodeToString(salt)
	a.PasswordHash = derivePassword(plaintext, a.PasswordSalt)
	return nil
}

// ValidatePassword recomputes the hash with the stored salt and compares it in
// constant time against the stored hash.
func (a *AdminUser) ValidatePassword(plaintext string) bool {
	if a.PasswordSalt == "" || a.PasswordHash == "" {
		return false
	}
	hash := derivePassword(plaintext, a.PasswordSalt)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(a.PasswordHash)) == 1
}

func derivePassword(plaintext, hexSalt string) string {
	key := pbkdf2.Key([]byte(plaintext), []byte(hexSalt), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
	return hex.EncodeToString(key)
}

// Counter is a named sequence document used to hand out admin IDs. The seq
// field is only ever moved with an atomic $inc so concurrent creations cannot
// observe the same value.
type Counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
