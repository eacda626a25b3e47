package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

type MediaService interface {
	Upload(ctx context.Context, actor *entity.User, note *entity.Note, fileHeader *multipart.FileHeader) (*contract.MediaUploadResponse, apierror.ErrorResponse)
}

type DefaultMediaRoute struct {
	MediaService MediaService
}

func NewMediaDefault(mediaService MediaService) *DefaultMediaRoute {
	return &DefaultMediaRoute{MediaService: mediaService}
}

// UploadMedia attaches a multipart file to the resolved note.
func (m *DefaultMediaRoute) UploadMedia(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MissingMediaFileError)
	}

	actor := utils.ActorFromContext(c)
	resp, apierr := m.MediaService.Upload(c.Request().Context(), actor, note, fileHeader)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}
