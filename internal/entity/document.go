package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DocTypeCV = "cv"

// Document is an uploaded user artifact. A "cv" document is the precondition
// for requesting a mentorship match.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_doc_type,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DocType   string    `gorm:"size:30;not null;index:idx_user_doc_type,priority:2" json:"doc_type"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FileURL   string    `gorm:"type:text;not null" json:"file_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}
