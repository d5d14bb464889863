package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all local models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Credential is the single durable artifact of a client session: the bearer
// token, stored under a named slot. Only one row per slot ever exists.
type Credential struct {
	BaseModel
	Slot      string    `json:"slot" gorm:"uniqueIndex;not null"`
	Token     string    `json:"-" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all local models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Credential{})
}
