package models

type UserType string
type JobType string
type ApplicationStatus string
type EmailTaskStatus string
type EmailKind string

const (
	UserTypeEmployer  UserType = "employer"
	UserTypeCandidate UserType = "candidate"

	JobTypeFullTime   JobType = "FT"
	JobTypePartTime   JobType = "PT"
	JobTypeInternship JobType = "INT"
	JobTypeContract   JobType = "CON"
	JobTypeRemote     JobType = "REM"

	ApplicationStatusApplied     ApplicationStatus = "APP"
	ApplicationStatusUnderReview ApplicationStatus = "REV"
	ApplicationStatusInterview   ApplicationStatus = "INT"
	ApplicationStatusOffer       ApplicationStatus = "OFF"
	ApplicationStatusRejected    ApplicationStatus = "REJ"

	EmailTaskQueued EmailTaskStatus = "queued"
	EmailTaskSent   EmailTaskStatus = "sent"
	EmailTaskFailed EmailTaskStatus = "failed"

	EmailKindConfirmation   EmailKind = "application_confirmation"
	EmailKindNewApplication EmailKind = "new_application"
	EmailKindStatusUpdate   EmailKind = "status_update"
)

func (t UserType) IsValid() bool {
	return t == UserTypeEmployer || t == UserTypeCandidate
}

var jobTypeLabels = map[JobType]string{
	JobTypeFullTime:   "Full-time",
	JobTypePartTime:   "Part-time",
	JobTypeInternship: "Internship",
	JobTypeContract:   "Contract",
	JobTypeRemote:     "Remote",
}

// JobTypes lists every job type in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract, JobTypeRemote}

func (t JobType) IsValid() bool {
	_, ok := jobTypeLabels[t]
	return ok
}

func (t JobType) Label() string {
	if label, ok := jobTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

var applicationStatusLabels = map[ApplicationStatus]string{
	ApplicationStatusApplied:     "Applied",
	ApplicationStatusUnderReview: "Under Review",
	ApplicationStatusInterview:   "Interview",
	ApplicationStatusOffer:       "Offer",
	ApplicationStatusRejected:    "Rejected",
}

// forwardTransitions is the intended pipeline. Only leaving REJ is enforced;
// other moves off this graph are allowed and logged.
var forwardTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:     {ApplicationStatusUnderReview, ApplicationStatusInterview, ApplicationStatusOffer, ApplicationStatusRejected},
	ApplicationStatusUnderReview: {ApplicationStatusInterview, ApplicationStatusOffer, ApplicationStatusRejected},
	ApplicationStatusInterview:   {ApplicationStatusOffer, ApplicationStatusRejected},
	ApplicationStatusOffer:       {ApplicationStatusRejected},
	ApplicationStatusRejected:    {},
}

func (s ApplicationStatus) IsValid() bool {
	_, ok := applicationStatusLabels[s]
	return ok
}

func (s ApplicationStatus) Label() string {
	if label, ok := applicationStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsTerminal reports whether no further change is accepted.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected
}

// CanTransitionTo reports whether an application in s may be set to next.
// Re-setting the current value is always accepted.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.IsTerminal()
}

// IsForward reports whether next follows s in the hiring pipeline.
func (s ApplicationStatus) IsForward(next ApplicationStatus) bool {
	for _, candidate := range forwardTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsWithdrawable reports whether a candidate may still withdraw.
func (s ApplicationStatus) IsWithdrawable() bool {
	return s == ApplicationStatusApplied || s == ApplicationStatusUnderReview
}
