package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"jobboard_backend/database/dbtest"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(v float64) *dto.Money {
	m := dto.Money(v)
	return &m
}

func TestCompanyService_CreateBindsEmployer(t *testing.T) {
	f := newFixture(t)
	emp := dbtest.CreateUser(t, f.db, "boss@acme.com", models.UserTypeEmployer)

	company, err := f.svc.CompanyService.Create(f.db, actorOf(emp), &dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.EqualValues(t, 0, company.JobsCount)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, "id = ?", emp.ID).Error)
	require.NotNil(t, reloaded.CompanyID)
	assert.Equal(t, company.ID, *reloaded.CompanyID)

	_, err = f.svc.CompanyService.Create(f.db, actorOf(emp), &dto.CreateCompanyRequest{Name: "ACME"})
	assert.Equal(t, "A company with this name already exists.", fieldMessage(t, err, "name"))
}

func TestCompanyService_CreateRequiresEmployerOrAdmin(t *testing.T) {
	f := newFixture(t)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	admin := dbtest.CreateAdmin(t, f.db, "admin@example.com")

	_, err := f.svc.CompanyService.Create(f.db, actorOf(cand), &dto.CreateCompanyRequest{Name: "Nope"})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.CompanyService.Create(f.db, nil, &dto.CreateCompanyRequest{Name: "Nope"})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.CompanyService.Create(f.db, actorOf(admin), &dto.CreateCompanyRequest{Name: "Admin Co"})
	assert.NoError(t, err)
}

func TestCompanyService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	dbtest.CreateCompany(t, f.db, "Globex")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	outsider := dbtest.CreateUser(t, f.db, "out@example.com", models.UserTypeEmployer)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	job := dbtest.CreateJob(t, f.db, "Backend Dev", emp, acme)
	dbtest.CreateApplication(t, f.db, job, cand, models.ApplicationStatusApplied)

	_, err := f.svc.CompanyService.Update(f.db, actorOf(outsider), acme.ID, &dto.UpdateCompanyRequest{Description: str("x")})
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.CompanyService.Update(f.db, actorOf(emp), acme.ID, &dto.UpdateCompanyRequest{Name: str("globex")})
	assert.Equal(t, "A company with this name already exists.", fieldMessage(t, err, "name"))

	updated, err := f.svc.CompanyService.Update(f.db, actorOf(emp), acme.ID, &dto.UpdateCompanyRequest{
		Name:    str("Acme"),
		Website: str("https://acme.example"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example", updated.Website)
	assert.EqualValues(t, 1, updated.JobsCount)

	require.NoError(t, f.svc.CompanyService.Delete(f.db, actorOf(emp), acme.ID))

	var jobs, apps int64
	require.NoError(t, f.db.Model(&models.Job{}).Count(&jobs).Error)
	require.NoError(t, f.db.Model(&models.Application{}).Count(&apps).Error)
	assert.Zero(t, jobs)
	assert.Zero(t, apps)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, "id = ?", emp.ID).Error)
	assert.Nil(t, reloaded.CompanyID)

	_, err = f.svc.CompanyService.Get(f.db, acme.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCompanyService_ListFiltersByName(t *testing.T) {
	f := newFixture(t)
	dbtest.CreateCompany(t, f.db, "Acme")
	dbtest.CreateCompany(t, f.db, "Globex")

	page, err := f.svc.CompanyService.List(f.db, dto.CompanyListFilter{Name: "Globex"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Globex", page.Items[0].Name)
	assert.False(t, page.HasNext())
}

func TestCompanyService_UploadLogo(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)

	img := image.NewRGBA(image.Rect(0, 0, 1024, 256))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	got, err := f.svc.CompanyService.UploadLogo(context.Background(), f.db, actorOf(emp), acme.ID, &FileUpload{
		Filename: "logo.png",
		Size:     int64(buf.Len()),
		Reader:   bytes.NewReader(buf.Bytes()),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Logo)
	assert.Contains(t, *got.Logo, "company_logos/")
	assert.Contains(t, *got.Logo, ".png")
}

func TestJobService_Create(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	globex := dbtest.CreateCompany(t, f.db, "Globex")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)

	req := &dto.CreateJobRequest{
		Title:       "Backend Dev",
		JobType:     models.JobTypeFullTime,
		Description: "Go services",
		Location:    "Berlin",
		Salary:      money(50000),
		Company:     acme.ID,
	}

	_, err := f.svc.JobService.Create(f.db, actorOf(cand), req)
	requireAppError(t, err, http.StatusForbidden)

	job, err := f.svc.JobService.Create(f.db, actorOf(emp), req)
	require.NoError(t, err)
	assert.True(t, job.IsActive)
	assert.Equal(t, "Full-time", job.JobTypeDisplay)
	assert.Equal(t, emp.ID, job.PostedBy.ID)
	assert.Equal(t, "Acme", job.Company.Name)
	assert.Equal(t, dto.Money(50000), job.Salary)

	other := *req
	other.Company = globex.ID
	_, err = f.svc.JobService.Create(f.db, actorOf(emp), &other)
	assert.Equal(t, "You can only post jobs for your own company.", fieldMessage(t, err, "company"))
}

func TestJobService_ListVisibility(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	rival := dbtest.CreateEmployer(t, f.db, "rival@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)

	dbtest.CreateJob(t, f.db, "Open", emp, acme)
	dbtest.CreateJob(t, f.db, "Draft", emp, acme, dbtest.Inactive())
	dbtest.CreateJob(t, f.db, "Rival draft", rival, acme, dbtest.Inactive())

	titles := func(items []dto.JobListItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Title)
		}
		return out
	}

	anon, err := f.svc.JobService.List(f.db, nil, dto.JobFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Open"}, titles(anon))

	asCand, err := f.svc.JobService.List(f.db, actorOf(cand), dto.JobFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Open"}, titles(asCand))

	asEmp, err := f.svc.JobService.List(f.db, actorOf(emp), dto.JobFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Open", "Draft"}, titles(asEmp))

	mine, err := f.svc.JobService.MyJobs(f.db, actorOf(emp))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Open", "Draft"}, titles(mine))

	_, err = f.svc.JobService.MyJobs(f.db, actorOf(cand))
	requireAppError(t, err, http.StatusForbidden)
}

func TestJobService_NonOwnerCannotToggleOrEdit(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	owner := dbtest.CreateEmployer(t, f.db, "owner@acme.com", acme)
	other := dbtest.CreateEmployer(t, f.db, "other@acme.com", acme)
	admin := dbtest.CreateAdmin(t, f.db, "admin@example.com")
	job := dbtest.CreateJob(t, f.db, "Backend Dev", owner, acme)

	_, err := f.svc.JobService.ToggleActive(f.db, actorOf(other), job.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.JobService.Update(f.db, actorOf(other), job.ID, &dto.UpdateJobRequest{Title: str("Hijacked")})
	requireAppError(t, err, http.StatusForbidden)

	err = f.svc.JobService.Delete(f.db, actorOf(other), job.ID)
	requireAppError(t, err, http.StatusForbidden)

	toggled, err := f.svc.JobService.ToggleActive(f.db, actorOf(owner), job.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.ToggleActiveResponse{Status: "job deactivated", IsActive: false}, toggled)

	toggled, err = f.svc.JobService.ToggleActive(f.db, actorOf(admin), job.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.ToggleActiveResponse{Status: "job activated", IsActive: true}, toggled)

	updated, err := f.svc.JobService.Update(f.db, actorOf(owner), job.ID, &dto.UpdateJobRequest{
		Salary:   money(65000.5),
		Location: str("Lisbon"),
	})
	require.NoError(t, err)
	assert.Equal(t, dto.Money(65000.5), updated.Salary)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, "Backend Dev", updated.Title)
}

func TestJobService_Applications(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	owner := dbtest.CreateEmployer(t, f.db, "owner@acme.com", acme)
	other := dbtest.CreateEmployer(t, f.db, "other@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	job := dbtest.CreateJob(t, f.db, "Backend Dev", owner, acme)
	dbtest.CreateApplication(t, f.db, job, cand, models.ApplicationStatusApplied)

	apps, err := f.svc.JobService.Applications(f.db, actorOf(owner), job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, cand.Email, apps[0].Candidate.Email)
	assert.Equal(t, "Applied", apps[0].StatusDisplay)

	_, err = f.svc.JobService.Applications(f.db, actorOf(other), job.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.svc.JobService.Applications(f.db, actorOf(cand), job.ID)
	requireAppError(t, err, http.StatusForbidden)

	detail, err := f.svc.JobService.Get(f.db, job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.ApplicationsCount)

	require.NoError(t, f.svc.JobService.Delete(f.db, actorOf(owner), job.ID))
	_, err = f.svc.JobService.Get(f.db, job.ID)
	requireAppError(t, err, http.StatusNotFound)
}
