package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mwaldner/scrawl/internal/domain/entity"
)

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

// FindByPublicID loads a note with its grants preloaded, or nil when no
// note carries that public id.
func (d *DefaultNoteRepository) FindByPublicID(publicID string) (*entity.Note, error) {
	var note entity.Note
	err := d.db.Preload("Grants.User").Preload("Owner").
		Where("public_id = ?", publicID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

// FindByAlias loads a note with its grants preloaded, or nil when the
// alias is unclaimed.
func (d *DefaultNoteRepository) FindByAlias(alias string) (*entity.Note, error) {
	var note entity.Note
	err := d.db.Preload("Grants.User").Preload("Owner").
		Where("alias = ?", alias).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Save persists the note row only; the owner already exists and grants
// are managed through ReplaceGrants.
func (d *DefaultNoteRepository) Save(note *entity.Note) error {
	return d.db.Omit(clause.Associations).Save(note).Error
}

func (d *DefaultNoteRepository) Delete(note *entity.Note) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", note.ID).Delete(&entity.Grant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", note.ID).Delete(&entity.Revision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", note.ID).Delete(&entity.MediaUpload{}).Error; err != nil {
			return err
		}
		return tx.Delete(note).Error
	})
}

// ReplaceGrants swaps the full access list of a note atomically.
func (d *DefaultNoteRepository) ReplaceGrants(note *entity.Note, grants []entity.Grant) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", note.ID).Delete(&entity.Grant{}).Error; err != nil {
			return err
		}
		if len(grants) > 0 {
			if err := tx.Omit(clause.Associations).Create(&grants).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(note).Error
	})
}
