package entity

// MediaUpload tracks an object uploaded to S3 on behalf of a note, so
// attachments can be removed together with the note.
type MediaUpload struct {
	ID         string `gorm:"primaryKey;autoIncrement:false"` // uuid
	NoteID     int64  `gorm:"not null;index"`
	UploaderID int64  `gorm:"not null"`
	ObjectKey  string `gorm:"not null"`
	CreatedAt  int64  `gorm:"not null"`
}
