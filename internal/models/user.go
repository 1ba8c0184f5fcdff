package models

import (
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/config"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an identity record: a citizen, an administrator or a department head.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Role         string    `gorm:"index;not null;default:'citizen'" json:"role"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Password carries a plaintext password until the record is saved.
	// BeforeSave replaces it with a hash; it is never persisted or serialized.
	Password string `gorm:"-" json:"-"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeCreate generates a UUID when the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = config.RoleCitizen
	}
	return
}

// BeforeSave normalizes the email and hashes a pending plaintext password.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Password == "" {
		return nil
	}
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return auth.CheckPassword(u.PasswordHash, candidate) == nil
}

// Public returns the fields safe to hand back to clients.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// PublicUser is the trimmed user shape returned by the auth endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
