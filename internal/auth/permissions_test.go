package auth

import (
	"testing"

	"jobboard_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestJobPredicates(t *testing.T) {
	owner := &Actor{ID: "emp-1", UserType: models.UserTypeEmployer, CompanyID: strPtr("acme")}
	other := &Actor{ID: "emp-2", UserType: models.UserTypeEmployer, CompanyID: strPtr("globex")}
	admin := &Actor{ID: "adm", UserType: models.UserTypeEmployer, IsStaff: true}
	candidate := &Actor{ID: "cand", UserType: models.UserTypeCandidate}

	job := &models.Job{PostedByID: "emp-1", CompanyID: "acme", IsActive: false}

	tests := []struct {
		name   string
		actor  *Actor
		manage bool
		see    bool
	}{
		{"owner", owner, true, true},
		{"other employer", other, false, false},
		{"admin", admin, true, true},
		{"candidate", candidate, false, false},
		{"anonymous", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.manage, CanManageJob(tt.actor, job))
			assert.Equal(t, tt.see, CanSeeJob(tt.actor, job))
		})
	}

	job.IsActive = true
	assert.True(t, CanSeeJob(nil, job))
}

func TestCompanyPredicates(t *testing.T) {
	acme := &models.Company{BaseModel: models.BaseModel{ID: "acme"}}

	bound := &Actor{ID: "e1", UserType: models.UserTypeEmployer, CompanyID: strPtr("acme")}
	unbound := &Actor{ID: "e2", UserType: models.UserTypeEmployer}
	candidate := &Actor{ID: "c1", UserType: models.UserTypeCandidate, CompanyID: strPtr("acme")}

	assert.True(t, CanManageCompany(bound, acme))
	assert.False(t, CanManageCompany(unbound, acme))
	assert.False(t, CanManageCompany(candidate, acme))
	assert.True(t, CanManageCompany(&Actor{IsStaff: true}, acme))

	assert.True(t, CanPostForCompany(bound, "acme"))
	assert.False(t, CanPostForCompany(bound, "globex"))
	assert.False(t, CanPostForCompany(candidate, "acme"))

	assert.True(t, CanCreateCompany(unbound))
	assert.False(t, CanCreateCompany(candidate))
	assert.False(t, CanCreateCompany(nil))
}

func TestApplicationPredicates(t *testing.T) {
	employer := &Actor{ID: "emp", UserType: models.UserTypeEmployer}
	otherEmployer := &Actor{ID: "emp-2", UserType: models.UserTypeEmployer}
	candidate := &Actor{ID: "cand", UserType: models.UserTypeCandidate}
	otherCandidate := &Actor{ID: "cand-2", UserType: models.UserTypeCandidate}

	job := &models.Job{PostedByID: "emp"}
	app := &models.Application{CandidateID: "cand", Status: models.ApplicationStatusApplied}

	assert.True(t, CanApply(candidate))
	assert.False(t, CanApply(employer))
	assert.False(t, CanApply(nil))

	assert.True(t, CanViewApplication(employer, app, job))
	assert.True(t, CanViewApplication(candidate, app, job))
	assert.False(t, CanViewApplication(otherCandidate, app, job))
	assert.False(t, CanViewApplication(otherEmployer, app, job))

	assert.True(t, CanUpdateApplicationStatus(employer, job))
	assert.False(t, CanUpdateApplicationStatus(otherEmployer, job))
	assert.False(t, CanUpdateApplicationStatus(candidate, job))

	assert.True(t, CanEditApplication(candidate, app, job))
	assert.False(t, CanEditApplication(otherCandidate, app, job))

	tests := []struct {
		status   models.ApplicationStatus
		edit     bool
		withdraw bool
	}{
		{models.ApplicationStatusApplied, true, true},
		{models.ApplicationStatusUnderReview, false, true},
		{models.ApplicationStatusInterview, false, false},
		{models.ApplicationStatusOffer, false, false},
		{models.ApplicationStatusRejected, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := &models.Application{CandidateID: "cand", Status: tt.status}
			assert.Equal(t, tt.edit, CanEditApplication(candidate, a, job))
			assert.Equal(t, tt.withdraw, CanWithdrawApplication(candidate, a))
			assert.False(t, CanWithdrawApplication(employer, a))
		})
	}
}

func TestIsSelfOrAdmin(t *testing.T) {
	me := &Actor{ID: "me"}
	assert.True(t, IsSelfOrAdmin(me, "me"))
	assert.False(t, IsSelfOrAdmin(me, "you"))
	assert.True(t, IsSelfOrAdmin(&Actor{ID: "root", IsStaff: true}, "you"))
	assert.False(t, IsSelfOrAdmin(nil, "me"))
}
