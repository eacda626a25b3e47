package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mwaldner/scrawl/internal/domain/entity"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

// FindActiveBySub returns the active, unsuspended account behind a token
// subject, or nil if there is none.
func (d *DefaultUserRepository) FindActiveBySub(sub string) (*entity.User, error) {
	var user entity.User
	err := d.db.Where("public_id = ? AND active = ?", sub, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DefaultUserRepository) FindByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := d.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DefaultUserRepository) FindByUsernames(usernames []string) ([]*entity.User, error) {
	var users []*entity.User
	err := d.db.Where("username IN ?", usernames).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DefaultUserRepository) Save(user *entity.User) error {
	return d.db.Save(user).Error
}
