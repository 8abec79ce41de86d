package auth

import "jobboard_backend/internal/models"

// Actor is the authenticated user a request runs as. A nil *Actor is an
// anonymous caller.
type Actor struct {
	ID        string
	Email     string
	UserType  models.UserType
	IsStaff   bool
	CompanyID *string
}

// ActorFromUser builds the actor for a loaded user.
func ActorFromUser(u *models.User) *Actor {
	return &Actor{
		ID:        u.ID,
		Email:     u.Email,
		UserType:  u.UserType,
		IsStaff:   u.IsStaff,
		CompanyID: u.CompanyID,
	}
}

func IsAuthenticated(a *Actor) bool {
	return a != nil
}

// IsAdmin: staff users bypass every other predicate.
func IsAdmin(a *Actor) bool {
	return a != nil && a.IsStaff
}

func IsEmployer(a *Actor) bool {
	return a != nil && a.UserType == models.UserTypeEmployer
}

func IsCandidate(a *Actor) bool {
	return a != nil && a.UserType == models.UserTypeCandidate
}

// IsSelfOrAdmin guards per-user records.
func IsSelfOrAdmin(a *Actor, userID string) bool {
	return IsAdmin(a) || (a != nil && a.ID == userID)
}

// BelongsToCompany reports whether the actor is bound to companyID.
func BelongsToCompany(a *Actor, companyID string) bool {
	return a != nil && a.CompanyID != nil && *a.CompanyID == companyID
}

// CanCreateCompany: employers and admins.
func CanCreateCompany(a *Actor) bool {
	return IsAdmin(a) || IsEmployer(a)
}

// CanManageCompany guards company updates and deletes.
func CanManageCompany(a *Actor, company *models.Company) bool {
	return IsAdmin(a) || (IsEmployer(a) && BelongsToCompany(a, company.ID))
}

// CanPostForCompany: an employer may only post jobs for their own company.
func CanPostForCompany(a *Actor, companyID string) bool {
	return IsEmployer(a) && BelongsToCompany(a, companyID)
}

// CanManageJob guards job updates, deletes, toggling and listing the job's
// applications.
func CanManageJob(a *Actor, job *models.Job) bool {
	return IsAdmin(a) || (a != nil && job.PostedByID == a.ID)
}

// CanSeeJob: inactive jobs are visible in listings only to their poster.
func CanSeeJob(a *Actor, job *models.Job) bool {
	return job.IsActive || CanManageJob(a, job)
}

// CanApply covers the role check. Own-job and inactive-job rules are
// reported as validation errors by the application service.
func CanApply(a *Actor) bool {
	return IsCandidate(a)
}

// CanViewApplication: the candidate who applied, the employer who posted
// the job, or an admin.
func CanViewApplication(a *Actor, app *models.Application, job *models.Job) bool {
	if a == nil {
		return false
	}
	return IsAdmin(a) || app.CandidateID == a.ID || job.PostedByID == a.ID
}

// CanUpdateApplicationStatus: the employer who posted the job, or an admin.
func CanUpdateApplicationStatus(a *Actor, job *models.Job) bool {
	return IsAdmin(a) || (IsEmployer(a) && job.PostedByID == a.ID)
}

// CanEditApplication: the job's employer, or the applying candidate while
// the application has not been reviewed.
func CanEditApplication(a *Actor, app *models.Application, job *models.Job) bool {
	if CanUpdateApplicationStatus(a, job) {
		return true
	}
	return IsCandidate(a) && app.CandidateID == a.ID && app.Status == models.ApplicationStatusApplied
}

// CanWithdrawApplication: the applying candidate, until the application
// moves past review.
func CanWithdrawApplication(a *Actor, app *models.Application) bool {
	return IsCandidate(a) && app.CandidateID == a.ID && app.Status.IsWithdrawable()
}
