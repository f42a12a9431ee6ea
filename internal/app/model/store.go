package model

import (
	"time"
)

type Store struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OwnerID   *uint     `gorm:"index" json:"owner_id"` // weak reference, nullable
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Address   string    `gorm:"type:varchar(400)" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

// IsOwnedBy reports whether userID is the recorded owner.
func (s *Store) IsOwnedBy(userID uint) bool {
	return s.OwnerID != nil && *s.OwnerID == userID
}
