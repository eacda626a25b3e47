package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/http/middleware"
	"github.com/mwaldner/scrawl/internal/service"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

// NoteService works on notes already resolved by the access gate; only
// creation starts from scratch.
type NoteService interface {
	CreateNote(actor *entity.User, content, alias string) (*contract.NoteResponse, apierror.ErrorResponse)
	UpdateContent(note *entity.Note, content string) (*contract.NoteResponse, apierror.ErrorResponse)
	DeleteNote(ctx context.Context, note *entity.Note) apierror.ErrorResponse
	UpdatePermissions(note *entity.Note, req *contract.PermissionsUpdateRequest) (*contract.NoteResponse, apierror.ErrorResponse)
}

type DefaultNoteRoute struct {
	NoteService NoteService
}

func NewNoteDefault(noteService NoteService) *DefaultNoteRoute {
	return &DefaultNoteRoute{NoteService: noteService}
}

// CreateNote creates a note from a raw markdown body.
func (n *DefaultNoteRoute) CreateNote(c echo.Context) error {
	return n.create(c, "")
}

// CreateNamedNote creates a note claiming the alias in the path.
func (n *DefaultNoteRoute) CreateNamedNote(c echo.Context) error {
	return n.create(c, c.Param(middleware.ParamIDOrAlias))
}

func (n *DefaultNoteRoute) create(c echo.Context, alias string) error {
	content, apierr := readMarkdownBody(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	actor := utils.ActorFromContext(c)
	note, apierr := n.NoteService.CreateNote(actor, content, alias)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, note)
}

func (n *DefaultNoteRoute) GetNote(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, service.ToNoteResponse(note))
}

// GetNoteContent serves the raw markdown.
func (n *DefaultNoteRoute) GetNoteContent(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=UTF-8", []byte(note.Content))
}

func (n *DefaultNoteRoute) GetNoteMetadata(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, service.ToNoteMetadataResponse(note))
}

// UpdateNote replaces the note content with the raw markdown body.
func (n *DefaultNoteRoute) UpdateNote(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	content, apierr := readMarkdownBody(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp, apierr := n.NoteService.UpdateContent(note, content)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (n *DefaultNoteRoute) DeleteNote(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr := n.NoteService.DeleteNote(c.Request().Context(), note); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNoteRoute) UpdateNotePermissions(c echo.Context) error {
	note, apierr := utils.GetNoteFromContext(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req contract.PermissionsUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := n.NoteService.UpdatePermissions(note, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

// readMarkdownBody pulls the raw request body in, trimming surrounding
// whitespace. The body-limit middleware caps the size upstream.
func readMarkdownBody(c echo.Context) (string, apierror.ErrorResponse) {
	body := c.Request().Body
	if body == nil {
		return "", apierror.EmptyNoteBodyError
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, contract.MaxNoteContentBytes+1))
	if err != nil {
		log.Errorf("failed to read note body: %v", err)
		return "", apierror.MalformedBodyError
	}

	if len(data) > contract.MaxNoteContentBytes {
		return "", apierror.NewSimple(413, "Note content may not exceed %d bytes", contract.MaxNoteContentBytes)
	}
	return string(data), nil
}
