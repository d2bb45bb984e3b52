package models

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoContent is a creator-published video with its vote counters.
type VideoContent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_video_contents_user_title,priority:1"`
	Title        string    `gorm:"column:title;not null;uniqueIndex:idx_video_contents_user_title,priority:2"`
	URL          string    `gorm:"column:url;not null"`
	Description  string    `gorm:"column:description;not null;default:''"`
	Thumbnail    string    `gorm:"column:thumbnail;not null;default:''"`
	PersonalNote string    `gorm:"column:personal_note;not null;default:''"`
	UpVote       int       `gorm:"column:up_vote;not null;default:0"`
	DownVote     int       `gorm:"column:down_vote;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Creator   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tags      []Tag      `gorm:"many2many:video_tags;constraint:OnDelete:CASCADE"`
	Protocols []Protocol `gorm:"many2many:video_protocols;constraint:OnDelete:CASCADE"`
}

func (v *VideoContent) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// Text is a short written post.
type Text struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_texts_user"`
	Content     string    `gorm:"column:content;not null"`
	URL         string    `gorm:"column:url;not null;default:''"`
	Caption     string    `gorm:"column:caption;not null;default:''"`
	Description string    `gorm:"column:description;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Text) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Vote is one user's reaction to one piece of content.
type Vote struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_content,priority:1"`
	ContentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_content,priority:2;index:idx_votes_content"`
	VoteType  enums.VoteType `gorm:"column:vote_type;type:text;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
