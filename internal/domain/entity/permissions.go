package entity

// Permission is the capability an endpoint requires from its caller.
//
// Create is note-less: it is decided from the actor alone and must never
// be evaluated against a resolved note. The remaining levels form an
// implication chain: Owner grants Write, Write grants Read.
type Permission int

const (
	PermissionCreate Permission = iota
	PermissionRead
	PermissionWrite
	PermissionOwner
)

func (p Permission) String() string {
	switch p {
	case PermissionCreate:
		return "CREATE"
	case PermissionRead:
		return "READ"
	case PermissionWrite:
		return "WRITE"
	case PermissionOwner:
		return "OWNER"
	default:
		return "UNKNOWN"
	}
}

// DefaultAccess is the access level a note grants to everyone,
// including guests. It is the only way a guest can reach a note.
type DefaultAccess string

const (
	AccessNone  DefaultAccess = "none"
	AccessRead  DefaultAccess = "read"
	AccessWrite DefaultAccess = "write"
)

// Grant is an access-list entry: a registered user explicitly allowed
// on a note. Any grant implies read; CanWrite upgrades it to write.
type Grant struct {
	ID        int64 `gorm:"primaryKey"`
	NoteID    int64 `gorm:"not null;uniqueIndex:idx_grant_note_user"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_grant_note_user"`
	CanWrite  bool  `gorm:"not null;default:false"`
	CreatedAt int64 `gorm:"not null"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID"`
}
