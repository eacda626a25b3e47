package entity

// Note is a markdown document addressable by its stable PublicID or,
// when set, by its owner-chosen Alias. PublicID and Alias share one
// lookup namespace in the API; resolution prefers the id on ties.
type Note struct {
	ID            int64         `gorm:"primaryKey"`
	PublicID      string        `gorm:"not null;uniqueIndex"`
	Alias         *string       `gorm:"uniqueIndex"`
	OwnerID       int64         `gorm:"not null;index"`
	Content       string        `gorm:"not null"`
	DefaultAccess DefaultAccess `gorm:"not null;default:none"`
	CreatedAt     int64         `gorm:"not null"`
	UpdatedAt     int64         `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Owner  User    `gorm:"foreignKey:OwnerID;references:ID"`
	Grants []Grant `gorm:"foreignKey:NoteID;references:ID"`
}

// AliasOrEmpty returns the alias, or "" when none is set.
func (n *Note) AliasOrEmpty() string {
	if n.Alias == nil {
		return ""
	}
	return *n.Alias
}
