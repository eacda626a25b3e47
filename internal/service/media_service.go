package service

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/infrastructure/aws/storage"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

type MediaRepository interface {
	Save(media *entity.MediaUpload) error
	FindByNoteID(noteID int64) ([]*entity.MediaUpload, error)
}

type DefaultMediaService struct {
	MediaRepo MediaRepository
	S3        storage.S3Client
}

func NewMediaService(mediaRepo MediaRepository, s3 storage.S3Client) *DefaultMediaService {
	return &DefaultMediaService{
		MediaRepo: mediaRepo,
		S3:        s3,
	}
}

// Upload stores a media file in S3 under a fresh uuid key and records it
// against the note so it gets cleaned up with the note.
func (m *DefaultMediaService) Upload(ctx context.Context, actor *entity.User, note *entity.Note, fileHeader *multipart.FileHeader) (*contract.MediaUploadResponse, apierror.ErrorResponse) {
	if apierr := checkMediaFile(fileHeader); apierr != nil {
		return nil, apierr
	}

	data, apierr := readMediaFile(fileHeader)
	if apierr != nil {
		return nil, apierr
	}

	id := uuid.NewString()
	key := storage.PathMedia + id + strings.ToLower(filepath.Ext(fileHeader.Filename))

	if err := m.S3.UploadFile(ctx, data, key); err != nil {
		log.Errorf("failed to upload media: %v", err)
		return nil, apierror.InternalServerError
	}

	var uploaderID int64
	if !actor.IsGuest() {
		uploaderID = actor.ID
	}

	media := &entity.MediaUpload{
		ID:         id,
		NoteID:     note.ID,
		UploaderID: uploaderID,
		ObjectKey:  key,
		CreatedAt:  utils.NowUTC(),
	}

	if err := m.MediaRepo.Save(media); err != nil {
		log.Errorf("failed to save media record: %v", err)
		return nil, apierror.InternalServerError
	}

	return &contract.MediaUploadResponse{
		ID:        media.ID,
		ObjectKey: media.ObjectKey,
		CreatedAt: utils.FormatEpoch(media.CreatedAt),
	}, nil
}

// RemoveNoteMedia deletes all stored objects of a note. Object deletion
// is idempotent, so a bucket already out of sync with the database does
// not block note deletion; the rows themselves go away with the note.
func (m *DefaultMediaService) RemoveNoteMedia(ctx context.Context, note *entity.Note) error {
	uploads, err := m.MediaRepo.FindByNoteID(note.ID)
	if err != nil {
		return err
	}

	for _, upload := range uploads {
		if err := m.S3.DeleteFile(ctx, upload.ObjectKey); err != nil {
			return err
		}
	}
	return nil
}

func checkMediaFile(fileHeader *multipart.FileHeader) apierror.ErrorResponse {
	if fileHeader.Size > contract.MaxMediaFileSizeBytes {
		return apierror.NewSimple(413, "Media files may not exceed %d bytes", contract.MaxMediaFileSizeBytes)
	}

	if strings.TrimSpace(fileHeader.Filename) == "" {
		return apierror.MissingMediaFileError
	}

	if ext, ok := utils.CheckFileExt(fileHeader.Filename, contract.ValidMediaFileTypes); !ok {
		return apierror.NewSimple(400, "Invalid file extension: %s", ext)
	}
	return nil
}

func readMediaFile(fileHeader *multipart.FileHeader) ([]byte, apierror.ErrorResponse) {
	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("failed to open file: %v", err)
		return nil, apierror.InternalServerError
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("failed to read file: %v", err)
		return nil, apierror.InternalServerError
	}
	return data, nil
}
