package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/events"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
	"github.com/mwaldner/scrawl/internal/validators"
)

type NoteRepository interface {
	FindByPublicID(publicID string) (*entity.Note, error)
	FindByAlias(alias string) (*entity.Note, error)
	Save(note *entity.Note) error
	Delete(note *entity.Note) error
	ReplaceGrants(note *entity.Note, grants []entity.Grant) error
}

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	FindByUsernames(usernames []string) ([]*entity.User, error)
	Save(user *entity.User) error
}

// RevisionRecorder snapshots note content; the revision service
// implements it.
type RevisionRecorder interface {
	RecordSnapshot(note *entity.Note) error
}

// MediaCleaner removes a note's stored attachments before the note row
// goes away.
type MediaCleaner interface {
	RemoveNoteMedia(ctx context.Context, note *entity.Note) error
}

// NoteNotifier pushes lifecycle events to connected clients. May be nil
// when the realtime layer is disabled.
type NoteNotifier interface {
	NotifyNote(ctx context.Context, note *entity.Note, evt events.SocketEvent)
}

type DefaultNoteService struct {
	NoteRepo  NoteRepository
	UserRepo  UserRepository
	Revisions RevisionRecorder
	Media     MediaCleaner
	Notifier  NoteNotifier
	Validate  *validator.Validate
}

func NewNoteService(
	noteRepo NoteRepository,
	userRepo UserRepository,
	revisions RevisionRecorder,
	media MediaCleaner,
	notifier NoteNotifier,
	validate *validator.Validate,
) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo:  noteRepo,
		UserRepo:  userRepo,
		Revisions: revisions,
		Media:     media,
		Notifier:  notifier,
		Validate:  validate,
	}
}

// ResolveNote turns an id-or-alias token into the single matching note.
// The two identifier forms share one namespace in the API, so precedence
// must be deterministic: the stable id wins when a token matches both.
// Pure read; callers may resolve the same token repeatedly within a
// request and see the same note absent concurrent mutation.
func (n *DefaultNoteService) ResolveNote(idOrAlias string) (*entity.Note, apierror.ErrorResponse) {
	note, err := n.NoteRepo.FindByPublicID(idOrAlias)
	if err != nil {
		log.Errorf("failed to resolve note by id: %v", err)
		return nil, apierror.InternalServerError
	}
	if note != nil {
		return note, nil
	}

	note, err = n.NoteRepo.FindByAlias(idOrAlias)
	if err != nil {
		log.Errorf("failed to resolve note by alias: %v", err)
		return nil, apierror.InternalServerError
	}
	if note == nil {
		return nil, apierror.NotFoundError
	}
	return note, nil
}

// CreateNote stores a new note from raw markdown. alias is optional; it
// must be unclaimed in both the alias and id namespaces so it can never
// shadow or be shadowed by an existing note.
//
// Notes created by guests are ownerless and default to everyone-write,
// otherwise nobody could touch them again.
func (n *DefaultNoteService) CreateNote(actor *entity.User, content, alias string) (*contract.NoteResponse, apierror.ErrorResponse) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierror.EmptyNoteBodyError
	}

	var aliasPtr *string
	if alias != "" {
		if apierr := n.checkAliasFree(alias); apierr != nil {
			return nil, apierr
		}
		aliasPtr = &alias
	}

	now := utils.NowUTC()
	note := &entity.Note{
		PublicID:      uuid.NewString(),
		Alias:         aliasPtr,
		Content:       content,
		DefaultAccess: entity.AccessNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if actor.IsGuest() {
		note.DefaultAccess = entity.AccessWrite
	} else {
		note.OwnerID = actor.ID
		note.Owner = *actor
	}

	if err := n.NoteRepo.Save(note); err != nil {
		log.Errorf("failed to save note: %v", err)
		return nil, apierror.InternalServerError
	}

	if err := n.Revisions.RecordSnapshot(note); err != nil {
		log.Errorf("failed to record initial revision for note %s: %v", note.PublicID, err)
	}

	go n.dispatch(note, &events.NoteCreated{NoteMetadataResponse: ToNoteMetadataResponse(note)})
	return ToNoteResponse(note), nil
}

// UpdateContent replaces the markdown of an already-resolved note and
// records a revision snapshot.
func (n *DefaultNoteService) UpdateContent(note *entity.Note, content string) (*contract.NoteResponse, apierror.ErrorResponse) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierror.EmptyNoteBodyError
	}

	note.Content = content
	note.UpdatedAt = utils.NowUTC()

	if err := n.NoteRepo.Save(note); err != nil {
		log.Errorf("failed to update note: %v", err)
		return nil, apierror.InternalServerError
	}

	if err := n.Revisions.RecordSnapshot(note); err != nil {
		log.Errorf("failed to record revision for note %s: %v", note.PublicID, err)
	}

	go n.dispatch(note, &events.NoteUpdated{NoteMetadataResponse: ToNoteMetadataResponse(note)})
	return ToNoteResponse(note), nil
}

// DeleteNote removes the note, its grants, revisions and stored media.
func (n *DefaultNoteService) DeleteNote(ctx context.Context, note *entity.Note) apierror.ErrorResponse {
	if err := n.Media.RemoveNoteMedia(ctx, note); err != nil {
		log.Errorf("failed to remove media of note %s: %v", note.PublicID, err)
		return apierror.InternalServerError
	}

	if err := n.NoteRepo.Delete(note); err != nil {
		log.Errorf("failed to delete note: %v", err)
		return apierror.InternalServerError
	}

	go n.dispatch(note, &events.NoteDeleted{NoteID: note.PublicID})
	return nil
}

// UpdatePermissions replaces the full access configuration of a note:
// the everyone-level and the per-user access list.
func (n *DefaultNoteService) UpdatePermissions(note *entity.Note, req *contract.PermissionsUpdateRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	usernames := make([]string, len(req.SharedWith))
	for i, g := range req.SharedWith {
		usernames[i] = g.Username
	}

	users, err := n.UserRepo.FindByUsernames(usernames)
	if err != nil {
		log.Errorf("failed to fetch granted users: %v", err)
		return nil, apierror.InternalServerError
	}

	byName := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	now := utils.NowUTC()
	grants := make([]entity.Grant, 0, len(req.SharedWith))
	for _, g := range req.SharedWith {
		user, ok := byName[g.Username]
		if !ok {
			return nil, apierror.NewSimple(400, "Unknown username: %s", g.Username)
		}
		grants = append(grants, entity.Grant{
			NoteID:    note.ID,
			UserID:    user.ID,
			CanWrite:  g.CanWrite,
			CreatedAt: now,
		})
	}

	note.DefaultAccess = entity.DefaultAccess(req.DefaultAccess)
	note.UpdatedAt = now

	if err := n.NoteRepo.ReplaceGrants(note, grants); err != nil {
		log.Errorf("failed to replace grants: %v", err)
		return nil, apierror.InternalServerError
	}

	// Re-resolve so the response and the dispatched event carry the
	// fresh access list with usernames preloaded.
	updated, apierr := n.ResolveNote(note.PublicID)
	if apierr != nil {
		return nil, apierr
	}

	go n.dispatch(updated, &events.PermissionsUpdated{NoteMetadataResponse: ToNoteMetadataResponse(updated)})
	return ToNoteResponse(updated), nil
}

func (n *DefaultNoteService) checkAliasFree(alias string) apierror.ErrorResponse {
	if len(alias) < validators.AliasMinLength || len(alias) > validators.AliasMaxLength {
		return apierror.NewAliasLengthError(alias, validators.AliasMinLength, validators.AliasMaxLength)
	}
	if !validators.ValidAlias(alias) {
		return apierror.NewSimple(400, "Aliases may only contain lowercase letters, digits and dashes: %s", alias)
	}

	existing, err := n.NoteRepo.FindByAlias(alias)
	if err != nil {
		log.Errorf("failed to check alias availability: %v", err)
		return apierror.InternalServerError
	}
	if existing != nil {
		return apierror.DuplicateAliasError
	}

	// The id namespace also counts: resolution prefers ids, so an alias
	// equal to an existing public id would be unreachable.
	shadowed, err := n.NoteRepo.FindByPublicID(alias)
	if err != nil {
		log.Errorf("failed to check alias availability: %v", err)
		return apierror.InternalServerError
	}
	if shadowed != nil {
		return apierror.DuplicateAliasError
	}
	return nil
}

func (n *DefaultNoteService) dispatch(note *entity.Note, evt events.SocketEvent) {
	if n.Notifier == nil {
		return
	}
	n.Notifier.NotifyNote(context.Background(), note, evt)
}

func ToNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:            note.PublicID,
		Alias:         note.AliasOrEmpty(),
		Owner:         ownerName(note),
		Content:       note.Content,
		DefaultAccess: string(note.DefaultAccess),
		SharedWith:    toGrantResponses(note.Grants),
		CreatedAt:     utils.FormatEpoch(note.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(note.UpdatedAt),
	}
}

func ToNoteMetadataResponse(note *entity.Note) *contract.NoteMetadataResponse {
	return &contract.NoteMetadataResponse{
		ID:            note.PublicID,
		Alias:         note.AliasOrEmpty(),
		Owner:         ownerName(note),
		ContentLength: len(note.Content),
		DefaultAccess: string(note.DefaultAccess),
		SharedWith:    toGrantResponses(note.Grants),
		CreatedAt:     utils.FormatEpoch(note.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(note.UpdatedAt),
	}
}

func ownerName(note *entity.Note) string {
	if note.OwnerID == 0 {
		return ""
	}
	return note.Owner.Username
}

func toGrantResponses(grants []entity.Grant) []contract.GrantResponse {
	resp := make([]contract.GrantResponse, len(grants))
	for i, g := range grants {
		resp[i] = contract.GrantResponse{
			Username: g.User.Username,
			CanWrite: g.CanWrite,
		}
	}
	return resp
}
