package dbtest

import (
	"strings"
	"testing"

	"jobboard_backend/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password every fixture user is created with.
const Password = "s3cret-pass"

var passwordHash string

func hashedPassword(t testing.TB) string {
	if passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(hash)
	}
	return passwordHash
}

// CreateUser inserts an active user. email doubles as the first name.
func CreateUser(t testing.TB, db *gorm.DB, email string, userType models.UserType) *models.User {
	t.Helper()
	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hashedPassword(t),
		UserType:     userType,
		FirstName:    strings.Split(email, "@")[0],
		LastName:     "Tester",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateAdmin(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := CreateUser(t, db, email, models.UserTypeEmployer)
	require.NoError(t, db.Model(user).Update("is_staff", true).Error)
	user.IsStaff = true
	return user
}

func CreateCompany(t testing.TB, db *gorm.DB, name string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, Description: name + " description"}
	require.NoError(t, db.Omit("Jobs").Create(company).Error)
	return company
}

// CreateEmployer inserts an employer bound to company.
func CreateEmployer(t testing.TB, db *gorm.DB, email string, company *models.Company) *models.User {
	t.Helper()
	user := CreateUser(t, db, email, models.UserTypeEmployer)
	require.NoError(t, db.Model(user).Update("company_id", company.ID).Error)
	user.CompanyID = &company.ID
	return user
}

// JobOption tweaks a fixture job before insert.
type JobOption func(*models.Job)

func Inactive() JobOption {
	return func(j *models.Job) { j.IsActive = false }
}

func WithSalary(salary float64) JobOption {
	return func(j *models.Job) { j.Salary = salary }
}

func WithType(jobType models.JobType) JobOption {
	return func(j *models.Job) { j.JobType = jobType }
}

func WithLocation(location string) JobOption {
	return func(j *models.Job) { j.Location = location }
}

func CreateJob(t testing.TB, db *gorm.DB, title string, poster *models.User, company *models.Company, opts ...JobOption) *models.Job {
	t.Helper()
	job := &models.Job{
		Title:       title,
		JobType:     models.JobTypeFullTime,
		Description: title + " description",
		Location:    "Remote",
		Salary:      50000,
		CompanyID:   company.ID,
		IsActive:    true,
		PostedByID:  poster.ID,
	}
	for _, opt := range opts {
		opt(job)
	}
	require.NoError(t, db.Omit("Company", "PostedBy", "Applications").Create(job).Error)
	return job
}

func CreateApplication(t testing.TB, db *gorm.DB, job *models.Job, candidate *models.User, status models.ApplicationStatus) *models.Application {
	t.Helper()
	app := &models.Application{
		JobID:       job.ID,
		CandidateID: candidate.ID,
		CoverLetter: "Hello",
		Status:      status,
	}
	require.NoError(t, db.Omit("Job", "Candidate").Create(app).Error)
	return app
}
