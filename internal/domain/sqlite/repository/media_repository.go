package repository

import (
	"gorm.io/gorm"

	"github.com/mwaldner/scrawl/internal/domain/entity"
)

type DefaultMediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *DefaultMediaRepository {
	return &DefaultMediaRepository{db: db}
}

func (d *DefaultMediaRepository) Save(media *entity.MediaUpload) error {
	return d.db.Create(media).Error
}

func (d *DefaultMediaRepository) FindByNoteID(noteID int64) ([]*entity.MediaUpload, error) {
	var uploads []*entity.MediaUpload
	err := d.db.Where("note_id = ?", noteID).Find(&uploads).Error
	if err != nil {
		return nil, err
	}
	return uploads, nil
}
