package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is an organizational unit that handles a set of complaint categories.
type Department struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"uniqueIndex;not null;size:50" json:"name"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	HeadID       string     `gorm:"index;not null;size:36" json:"headId"`
	ContactEmail string     `gorm:"not null" json:"contactEmail"`
	ContactPhone string     `gorm:"not null" json:"contactPhone"`
	Address      string     `gorm:"size:200" json:"address"`
	Categories   StringList `json:"categories"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate generates a UUID when the ID is not set yet.
func (d *Department) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}

// BeforeSave trims free-text fields and lowercases the contact email.
func (d *Department) BeforeSave(tx *gorm.DB) (err error) {
	d.Name = strings.TrimSpace(d.Name)
	d.ContactEmail = NormalizeEmail(d.ContactEmail)
	for i, c := range d.Categories {
		d.Categories[i] = strings.TrimSpace(c)
	}
	return
}
