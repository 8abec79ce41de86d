package models

// Application is a candidate's application to a job. CreatedAt is the
// applied_at timestamp.
type Application struct {
	BaseModel
	JobID       string            `gorm:"size:36;not null;uniqueIndex:idx_applications_job_candidate,priority:1"`
	CandidateID string            `gorm:"size:36;not null;uniqueIndex:idx_applications_job_candidate,priority:2;index"`
	CoverLetter string            `gorm:"type:text"`
	Status      ApplicationStatus `gorm:"type:varchar(3);not null;index"`

	Job       Job  `gorm:"foreignKey:JobID"`
	Candidate User `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE"`
}
