package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoogleCredentialSlot is the only slot in use: one connected Google account
// serves every staff member.
const GoogleCredentialSlot = "google"

// GoogleCredential is the single active OAuth token set. Saves overwrite the
// row in place; there is no history.
type GoogleCredential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slot         string    `gorm:"uniqueIndex;not null;column:slot" json:"slot"`
	AccessToken  string    `gorm:"not null;column:access_token" json:"-"`
	RefreshToken string    `gorm:"not null;column:refresh_token" json:"-"`
	TokenType    string    `gorm:"column:token_type" json:"token_type"`
	Expiry       time.Time `gorm:"column:expiry" json:"expiry"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (GoogleCredential) TableName() string { return "google_credential" }

func (c *GoogleCredential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slot == "" {
		c.Slot = GoogleCredentialSlot
	}
	return nil
}
