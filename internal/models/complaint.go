package models

import (
	"civicdesk/backend/internal/config"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint is a citizen-submitted issue tracked through the status lifecycle.
type Complaint struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Title        string     `gorm:"not null;size:100" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Category     string     `gorm:"index;not null;size:50" json:"category"`
	Status       string     `gorm:"index;not null;default:'pending'" json:"status"`
	Location     GeoPoint   `gorm:"embedded" json:"location"`
	SubmittedBy  *string    `gorm:"index;size:36" json:"submittedBy"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	AssignedTo   *string    `gorm:"index;size:36" json:"assignedTo,omitempty"`
	DepartmentID *string    `gorm:"column:department_id;index;size:36" json:"department,omitempty"`
	Priority     string     `gorm:"index;not null;default:'medium'" json:"priority"`
	Attachments  StringList `json:"attachments"`
	Resolution   string     `gorm:"type:text" json:"resolution,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate generates a UUID and applies lifecycle defaults.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = config.StatusPending
	}
	if c.Priority == "" {
		c.Priority = config.PriorityMedium
	}
	return
}

// BeforeSave trims free-text fields. The contact email keeps its case.
func (c *Complaint) BeforeSave(tx *gorm.DB) (err error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Category = strings.TrimSpace(c.Category)
	c.Resolution = strings.TrimSpace(c.Resolution)
	c.Email = strings.TrimSpace(c.Email)
	return
}

// IsSubmittedBy reports whether userID created the complaint.
func (c *Complaint) IsSubmittedBy(userID string) bool {
	return c.SubmittedBy != nil && userID != "" && *c.SubmittedBy == userID
}

// StatusCount is one row of the group-by-status aggregation.
type StatusCount struct {
	Status string
	Count  int64
}

// ComplaintFilter narrows complaint listings. Zero values mean "no filter".
type ComplaintFilter struct {
	Status      string
	Category    string
	SubmittedBy string
	Limit       int
	Offset      int
}
