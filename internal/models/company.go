package models

type Company struct {
	BaseModel
	Name        string  `gorm:"size:100;not null;uniqueIndex"`
	Description string  `gorm:"type:text"`
	Website     string  `gorm:"size:200"`
	Logo        *string `gorm:"size:255"`

	Jobs []Job `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`

	// JobsCount is filled by list/detail queries, not stored.
	JobsCount int64 `gorm:"->;-:migration"`
}
