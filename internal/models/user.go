package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"size:254;not null;uniqueIndex;index:idx_users_email_type,priority:1"`
	PasswordHash string   `gorm:"not null"`
	UserType     UserType `gorm:"type:varchar(10);not null;index:idx_users_email_type,priority:2"`
	FirstName    string   `gorm:"size:150"`
	LastName     string   `gorm:"size:150"`
	Phone        string   `gorm:"size:15"`
	Resume       *string  `gorm:"size:255"`
	CompanyID    *string  `gorm:"size:36;index"`
	IsActive     bool     `gorm:"not null"`
	IsStaff      bool     `gorm:"not null"`
	LastLogin    *time.Time

	Company       *Company       `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FullName falls back to the email when no name is set.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsEmployer() bool {
	return u.UserType == UserTypeEmployer
}

func (u *User) IsCandidate() bool {
	return u.UserType == UserTypeCandidate
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;not null;index"`
	Token     string    `gorm:"size:128;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
