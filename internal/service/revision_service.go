package service

import (
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
	"github.com/mwaldner/scrawl/internal/utils/uid"
)

type RevisionRepository interface {
	Save(rev *entity.Revision) error
	FindByNoteID(noteID int64) ([]*entity.Revision, error)
	FindByID(noteID, revisionID int64) (*entity.Revision, error)
}

type DefaultRevisionService struct {
	RevisionRepo RevisionRepository
}

func NewRevisionService(revisionRepo RevisionRepository) *DefaultRevisionService {
	return &DefaultRevisionService{RevisionRepo: revisionRepo}
}

// RecordSnapshot stores the current content of a note as a new revision.
func (r *DefaultRevisionService) RecordSnapshot(note *entity.Note) error {
	return r.RevisionRepo.Save(&entity.Revision{
		ID:        uid.Generate(),
		NoteID:    note.ID,
		Content:   note.Content,
		Length:    len(note.Content),
		CreatedAt: utils.NowUTC(),
	})
}

// GetRevisions lists revision metadata of a note, newest first.
func (r *DefaultRevisionService) GetRevisions(note *entity.Note) ([]*contract.RevisionMetadataResponse, apierror.ErrorResponse) {
	revs, err := r.RevisionRepo.FindByNoteID(note.ID)
	if err != nil {
		log.Errorf("failed to fetch revisions of note %s: %v", note.PublicID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.RevisionMetadataResponse, len(revs))
	for i, rev := range revs {
		resp[i] = &contract.RevisionMetadataResponse{
			ID:        rev.ID,
			Length:    rev.Length,
			CreatedAt: utils.FormatEpoch(rev.CreatedAt),
		}
	}
	return resp, nil
}

// GetRevision returns one full revision. The lookup is scoped to the
// note so revision ids cannot leak content across notes.
func (r *DefaultRevisionService) GetRevision(note *entity.Note, revisionID int64) (*contract.RevisionResponse, apierror.ErrorResponse) {
	rev, err := r.RevisionRepo.FindByID(note.ID, revisionID)
	if err != nil {
		log.Errorf("failed to fetch revision %d of note %s: %v", revisionID, note.PublicID, err)
		return nil, apierror.InternalServerError
	}

	if rev == nil {
		return nil, apierror.NotFoundError
	}

	return &contract.RevisionResponse{
		ID:        rev.ID,
		Content:   rev.Content,
		Length:    rev.Length,
		CreatedAt: utils.FormatEpoch(rev.CreatedAt),
	}, nil
}
