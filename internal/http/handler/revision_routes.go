package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

type RevisionService interface {
	GetRevisions(note *entity.Note) ([]*contract.RevisionMetadataResponse, apierror.ErrorResponse)
	GetRevision(note *entity.Note, revisionID int64) (*contract.RevisionResponse, apierror.ErrorResponse)
}

type DefaultRevisionRoute struct {
	RevisionService RevisionService
}

func NewRevisionDefault(revisionService RevisionService) *DefaultRevisionRoute {
	return &DefaultRevisionRoute{RevisionService: revisionService}
}

func (r *DefaultRevisionRoute) GetNoteRevisions(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	revs, apierr := r.RevisionService.GetRevisions(note)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"revisions": revs}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultRevisionRoute) GetNoteRevision(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	revisionID, err := strconv.ParseInt(c.Param("revisionId"), 10, 64)
	if err != nil {
		apierr := apierror.NewInvalidParamTypeError("revisionId", "int64")
		return c.JSON(apierr.Code(), apierr)
	}

	rev, apierr := r.RevisionService.GetRevision(note, revisionID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, rev)
}
