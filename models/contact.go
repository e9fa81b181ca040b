package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ContactSubmission struct {
	Record
	Name    string `json:"name" gorm:"type:text;not null" validate:"required" label:"name"`
	Email   string `json:"email" gorm:"type:text;not null;index" validate:"required,email_basic" label:"email"`
	Phone   string `json:"phone,omitempty" gorm:"type:text" label:"phone"`
	Subject string `json:"subject,omitempty" gorm:"type:text" label:"subject"`
	Message string `json:"message" gorm:"type:text;not null" validate:"required" label:"message"`
}

func (c *ContactSubmission) SubmitterName() string  { return c.Name }
func (c *ContactSubmission) SubmitterEmail() string { return c.Email }

// NewsletterSubscription is unique per email address.
type NewsletterSubscription struct {
	Record
	Email          string     `json:"email" gorm:"type:text;not null;uniqueIndex:idx_newsletter_email" validate:"required,email_basic" label:"email"`
	IsActive       bool       `json:"isActive" gorm:"not null;default:true"`
	SubscribedAt   time.Time  `json:"subscribedAt" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty" gorm:"type:timestamptz"`
}

func (n *NewsletterSubscription) Stamp(now time.Time) {
	n.Record.Stamp(now)
	if n.SubscribedAt.IsZero() {
		n.SubscribedAt = n.CreatedAt
		n.IsActive = true
	}
}

// ClearIdentity also resets the subscription state, which only the server
// sets.
func (n *NewsletterSubscription) ClearIdentity() {
	n.Record.ClearIdentity()
	n.IsActive = false
	n.SubscribedAt = time.Time{}
	n.UnsubscribedAt = nil
}

func (n *NewsletterSubscription) BeforeCreate(tx *gorm.DB) error {
	n.Stamp(time.Now())
	return nil
}

func (n *NewsletterSubscription) SubmitterName() string {
	name, _, _ := strings.Cut(n.Email, "@")
	return name
}

func (n *NewsletterSubscription) SubmitterEmail() string { return n.Email }

func (n *NewsletterSubscription) UniqueKeys() []string {
	return []string{"email:" + strings.ToLower(n.Email)}
}
