package models

import "time"

// Role is shared reference data granted to users.
type Role struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_roles_name"`
	Description string    `gorm:"column:description;not null;default:''"`
	Enabled     bool      `gorm:"column:enabled;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Tag is a content/interest category. Slug is derived from Name.
type Tag struct {
	ID        uint      `gorm:"primaryKey"`
	Slug      string    `gorm:"column:tag_id;not null;uniqueIndex:idx_tags_slug"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Protocol is a DeFi protocol entry imported from the catalog feed.
type Protocol struct {
	ID             uint      `gorm:"primaryKey"`
	ExternalIDLama *string   `gorm:"column:external_id_lama;uniqueIndex:idx_protocols_external_id"`
	Slug           string    `gorm:"column:slug;not null;default:''"`
	Name           string    `gorm:"column:name;not null"`
	Description    string    `gorm:"column:description;not null;default:''"`
	Logo           *string   `gorm:"column:logo"`
	Category       string    `gorm:"column:category;not null;default:''"`
	URL            string    `gorm:"column:url;not null;default:''"`
	Symbol         string    `gorm:"column:symbol;not null;default:''"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
