package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"synapse/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ContentModel{}, &ShareLinkModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser inserts a user. A conflicting email yields ErrDuplicate.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveContent inserts a content row.
func (s *GormStore) SaveContent(c domain.Content) error {
	model, err := contentToModel(c)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	if err := s.db.Create(&model).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// ListContentByOwner returns the owner's content in insertion order.
func (s *GormStore) ListContentByOwner(ownerID string) ([]domain.Content, error) {
	var models []ContentModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Content, 0, len(models))
	for _, m := range models {
		res = append(res, contentFromModel(m))
	}
	return res, nil
}

// DeleteContentByOwner deletes only when id and owner both match.
func (s *GormStore) DeleteContentByOwner(ownerID, contentID string) (bool, error) {
	tx := s.db.Where("id = ? AND owner_id = ?", contentID, ownerID).Delete(&ContentModel{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetShareLinkByOwner returns the owner's share link, if any.
func (s *GormStore) GetShareLinkByOwner(ownerID string) (domain.ShareLink, bool, error) {
	var model ShareLinkModel
	if err := s.db.Where("owner_id = ?", ownerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShareLink{}, false, nil
		}
		return domain.ShareLink{}, false, err
	}
	return shareLinkFromModel(model), true, nil
}

// GetShareLinkByHash resolves a public hash to its share link.
func (s *GormStore) GetShareLinkByHash(hash string) (domain.ShareLink, bool, error) {
	var model ShareLinkModel
	if err := s.db.Where("hash = ?", hash).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShareLink{}, false, nil
		}
		return domain.ShareLink{}, false, err
	}
	return shareLinkFromModel(model), true, nil
}

// CreateShareLink inserts a share link. Conflicts on either the owner or
// the hash uniqueness constraint yield ErrDuplicate.
func (s *GormStore) CreateShareLink(l domain.ShareLink) error {
	model := shareLinkToModel(l)
	if err := s.db.Create(&model).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// DeleteShareLinkByOwner removes the owner's link, reporting whether a
// row existed.
func (s *GormStore) DeleteShareLinkByOwner(ownerID string) (bool, error) {
	tx := s.db.Where("owner_id = ?", ownerID).Delete(&ShareLinkModel{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
