package mapping

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderMapping links a template placeholder ("[Order Total]") to the
// WooCommerce field key the companion plugin resolves ("woo_order_get_total").
// PlaceholderKey is the lowercased placeholder and carries the unique index, so
// two spellings differing only in case can never both be stored.
type PlaceholderMapping struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Placeholder    string    `gorm:"not null;column:placeholder" json:"placeholder"`
	PlaceholderKey string    `gorm:"uniqueIndex;not null;column:placeholder_key" json:"-"`
	WooField       *string   `gorm:"column:woo_field" json:"woo_field"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PlaceholderMapping) TableName() string { return "placeholder_mapping" }

func (m *PlaceholderMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.PlaceholderKey = KeyOf(m.Placeholder)
	return nil
}

// KeyOf is the case-insensitive identity of a placeholder.
func KeyOf(placeholder string) string {
	return strings.ToLower(placeholder)
}
