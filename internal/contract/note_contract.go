package contract

// MaxNoteContentBytes caps raw markdown bodies.
const MaxNoteContentBytes = 1_000_000

const MaxMediaFileSizeBytes = 10 * 1024 * 1024

var ValidMediaFileTypes = []string{"png", "jpg", "jpeg", "gif", "webp", "svg", "pdf"}

type NoteResponse struct {
	ID            string          `json:"id"`
	Alias         string          `json:"alias,omitempty"`
	Owner         string          `json:"owner,omitempty"`
	Content       string          `json:"content,omitempty"`
	DefaultAccess string          `json:"default_access"`
	SharedWith    []GrantResponse `json:"shared_with"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// NoteMetadataResponse is NoteResponse without the content payload.
type NoteMetadataResponse struct {
	ID            string          `json:"id"`
	Alias         string          `json:"alias,omitempty"`
	Owner         string          `json:"owner,omitempty"`
	ContentLength int             `json:"content_length"`
	DefaultAccess string          `json:"default_access"`
	SharedWith    []GrantResponse `json:"shared_with"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type GrantResponse struct {
	Username string `json:"username"`
	CanWrite bool   `json:"can_write"`
}

// PermissionsUpdateRequest replaces a note's full access configuration.
type PermissionsUpdateRequest struct {
	DefaultAccess string         `json:"default_access" validate:"required,oneof=none read write"`
	SharedWith    []GrantRequest `json:"shared_with" validate:"omitempty,max=100,unique=Username,dive"`
}

type GrantRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	CanWrite bool   `json:"can_write"`
}

type RevisionMetadataResponse struct {
	ID        int64  `json:"id"`
	Length    int    `json:"length"`
	CreatedAt string `json:"created_at"`
}

type RevisionResponse struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Length    int    `json:"length"`
	CreatedAt string `json:"created_at"`
}

type MediaUploadResponse struct {
	ID        string `json:"id"`
	ObjectKey string `json:"object_key"`
	CreatedAt string `json:"created_at"`
}
