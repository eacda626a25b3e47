package entity

// User is a registered account. A request made without credentials runs
// as a guest, represented everywhere as a nil *User; use IsGuest instead
// of comparing to nil directly.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	PublicID     string `gorm:"not null;uniqueIndex"` // JWT subject
	Username     string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Active       bool   `gorm:"not null;default:true"`
	Suspended    bool   `gorm:"not null;default:false"`
	CreatedAt    int64  `gorm:"not null"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`
}

// IsGuest reports whether u represents the anonymous principal.
func (u *User) IsGuest() bool {
	return u == nil
}
