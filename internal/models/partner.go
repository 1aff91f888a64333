package models

import "time"

// Partner is a third-party SaaS whose access is brokered.
//
// Bridged partners live on another origin and receive a signed handoff token in the
// redirect URL. Non-bridged partners are same-origin and are reached directly.
type Partner struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	URL       string    `gorm:"type:varchar(512);not null" json:"url"`
	Bridged   bool      `gorm:"not null" json:"bridged"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Partner) TableName() string {
	return "partners"
}
