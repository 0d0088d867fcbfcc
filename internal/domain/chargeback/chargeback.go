package chargeback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const StatusGenerated = "generated"

type Chargeback struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string         `gorm:"not null;column:title" json:"title"`
	OrderID      string         `gorm:"not null;index;column:order_id" json:"order_id"`
	TemplateID   string         `gorm:"not null;column:template_id" json:"template_id"`
	TemplateName string         `gorm:"not null;column:template_name" json:"template_name"`
	DocURL       string         `gorm:"column:google_doc_url" json:"google_doc_url"`
	DocID        string         `gorm:"column:google_doc_id" json:"google_doc_id"`
	Status       string         `gorm:"not null;column:status;default:generated" json:"status"`
	Placeholders datatypes.JSON `gorm:"column:placeholders" json:"placeholders,omitempty"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null;index;column:created_by" json:"created_by"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`

	// Filled by list/get queries joining the author.
	CreatedByName string `gorm:"->;column:created_by_name" json:"created_by_name,omitempty"`
}

func (Chargeback) TableName() string { return "chargeback" }

func (c *Chargeback) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusGenerated
	}
	return nil
}
