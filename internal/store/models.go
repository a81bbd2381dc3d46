package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"synapse/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type ContentModel struct {
	ID          string `gorm:"primaryKey"`
	OwnerID     string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Link        string `gorm:"not null"`
	Type        string
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

type ShareLinkModel struct {
	ID        string    `gorm:"primaryKey"`
	OwnerID   string    `gorm:"uniqueIndex;not null"`
	Hash      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func contentToModel(c domain.Content) (ContentModel, error) {
	var tags datatypes.JSON
	if len(c.Tags) > 0 {
		raw, err := json.Marshal(c.Tags)
		if err != nil {
			return ContentModel{}, err
		}
		tags = datatypes.JSON(raw)
	}
	return ContentModel{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Title:       c.Title,
		Description: c.Description,
		Link:        c.Link,
		Type:        string(c.Type),
		Tags:        tags,
		CreatedAt:   c.CreatedAt,
	}, nil
}

func contentFromModel(m ContentModel) domain.Content {
	var tags []string
	if len(m.Tags) > 0 {
		// Tags were written by contentToModel; a decode failure means a
		// hand-edited row, treated as no tags.
		_ = json.Unmarshal(m.Tags, &tags)
	}
	return domain.Content{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		Link:        m.Link,
		Type:        domain.ContentType(m.Type),
		Tags:        tags,
		CreatedAt:   m.CreatedAt,
	}
}

func shareLinkToModel(l domain.ShareLink) ShareLinkModel {
	return ShareLinkModel{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Hash:      l.Hash,
		CreatedAt: l.CreatedAt,
	}
}

func shareLinkFromModel(m ShareLinkModel) domain.ShareLink {
	return domain.ShareLink{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Hash:      m.Hash,
		CreatedAt: m.CreatedAt,
	}
}
