package models

type Job struct {
	BaseModel
	Title       string  `gorm:"size:100;not null;index:idx_jobs_title_type_location,priority:1"`
	JobType     JobType `gorm:"type:varchar(3);not null;index:idx_jobs_title_type_location,priority:2"`
	Description string  `gorm:"type:text;not null"`
	Location    string  `gorm:"size:100;not null;index:idx_jobs_title_type_location,priority:3"`
	Salary      float64 `gorm:"type:numeric(10,2);not null"`
	CompanyID   string  `gorm:"size:36;not null;index"`
	IsActive    bool    `gorm:"not null;index"`
	PostedByID  string  `gorm:"size:36;not null;index"`

	Company      Company       `gorm:"foreignKey:CompanyID"`
	PostedBy     User          `gorm:"foreignKey:PostedByID;constraint:OnDelete:CASCADE"`
	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`

	// ApplicationsCount is filled by list/detail queries, not stored.
	ApplicationsCount int64 `gorm:"->;-:migration"`
}
