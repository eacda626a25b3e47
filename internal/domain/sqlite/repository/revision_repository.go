package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mwaldner/scrawl/internal/domain/entity"
)

type DefaultRevisionRepository struct {
	db *gorm.DB
}

func NewRevisionRepository(db *gorm.DB) *DefaultRevisionRepository {
	return &DefaultRevisionRepository{db: db}
}

func (d *DefaultRevisionRepository) Save(rev *entity.Revision) error {
	return d.db.Create(rev).Error
}

// FindByNoteID lists all revisions of a note, newest first.
func (d *DefaultRevisionRepository) FindByNoteID(noteID int64) ([]*entity.Revision, error) {
	var revs []*entity.Revision
	err := d.db.Where("note_id = ?", noteID).
		Order("id DESC").
		Find(&revs).Error
	if err != nil {
		return nil, err
	}
	return revs, nil
}

// FindByID returns a revision only if it belongs to the given note, so
// revision ids cannot be used to read across notes.
func (d *DefaultRevisionRepository) FindByID(noteID, revisionID int64) (*entity.Revision, error) {
	var rev entity.Revision
	err := d.db.Where("note_id = ? AND id = ?", noteID, revisionID).First(&rev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &rev, nil
}
