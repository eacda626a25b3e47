package entity

// Revision is a full content snapshot of a note, recorded on creation
// and on every content update. IDs are snowflakes so they sort by time.
type Revision struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	NoteID    int64  `gorm:"not null;index"`
	Content   string `gorm:"not null"`
	Length    int    `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
}
