package services

import (
	"context"
	"net/http"
	"testing"

	"jobboard_backend/database/dbtest"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, b *notifications.MemoryBroker) []notifications.Task {
	t.Helper()
	var tasks []notifications.Task
	for b.Len() > 0 {
		task, err := b.Consume(context.Background())
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	return tasks
}

func kinds(tasks []notifications.Task) []models.EmailKind {
	out := make([]models.EmailKind, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Kind)
	}
	return out
}

// The end-to-end hiring flow: company, employer, job, application,
// duplicate application, rejection, and the terminal REJ guard.
func TestApplicationService_HiringScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	emp := dbtest.CreateUser(t, f.db, "boss@acme.com", models.UserTypeEmployer)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)

	company, err := f.svc.CompanyService.Create(f.db, actorOf(emp), &dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	// Reload so the actor carries the new company binding.
	var bound models.User
	require.NoError(t, f.db.First(&bound, "id = ?", emp.ID).Error)

	job, err := f.svc.JobService.Create(f.db, actorOf(&bound), &dto.CreateJobRequest{
		Title:       "Backend Dev",
		JobType:     models.JobTypeFullTime,
		Description: "Go services",
		Location:    "Remote",
		Salary:      money(50000),
		Company:     company.ID,
	})
	require.NoError(t, err)

	app, err := f.svc.ApplicationService.Create(ctx, f.db, actorOf(cand), &dto.CreateApplicationRequest{Job: job.ID, CoverLetter: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.Equal(t, "Applied", app.StatusDisplay)
	assert.Equal(t, job.ID, app.Job.ID)

	queued := drain(t, f.broker)
	assert.ElementsMatch(t, []models.EmailKind{models.EmailKindConfirmation, models.EmailKindNewApplication}, kinds(queued))

	_, err = f.svc.ApplicationService.Create(ctx, f.db, actorOf(cand), &dto.CreateApplicationRequest{Job: job.ID})
	assert.Equal(t, "You have already applied to this job.", fieldMessage(t, err, "job"))

	rejected, err := f.svc.ApplicationService.UpdateStatus(ctx, f.db, actorOf(&bound), app.ID, &dto.UpdateStatusRequest{Status: models.ApplicationStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	queued = drain(t, f.broker)
	require.Len(t, queued, 1)
	assert.Equal(t, models.EmailKindStatusUpdate, queued[0].Kind)
	assert.Equal(t, models.ApplicationStatusApplied, queued[0].OldStatus)
	assert.Equal(t, models.ApplicationStatusRejected, queued[0].NewStatus)

	_, err = f.svc.ApplicationService.UpdateStatus(ctx, f.db, actorOf(&bound), app.ID, &dto.UpdateStatusRequest{Status: models.ApplicationStatusInterview})
	assert.Equal(t, "Cannot change status of rejected application.", fieldMessage(t, err, "status"))
	assert.Zero(t, f.broker.Len())

	var tasks int64
	require.NoError(t, f.db.Model(&models.EmailTask{}).Where("status = ?", models.EmailTaskQueued).Count(&tasks).Error)
	assert.EqualValues(t, 3, tasks)
}

func TestApplicationService_CreateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)

	ownJob := dbtest.CreateJob(t, f.db, "Side gig", cand, acme)
	closed := dbtest.CreateJob(t, f.db, "Closed", emp, acme, dbtest.Inactive())

	_, err := f.svc.ApplicationService.Create(ctx, f.db, actorOf(cand), &dto.CreateApplicationRequest{Job: ownJob.ID})
	assert.Equal(t, "You cannot apply to your own job posting.", fieldMessage(t, err, "job"))

	_, err = f.svc.ApplicationService.Create(ctx, f.db, actorOf(cand), &dto.CreateApplicationRequest{Job: closed.ID})
	assert.Equal(t, "This job posting is no longer active.", fieldMessage(t, err, "job"))

	_, err = f.svc.ApplicationService.Create(ctx, f.db, actorOf(cand), &dto.CreateApplicationRequest{Job: "missing"})
	assert.Contains(t, fieldMessage(t, err, "job"), "object does not exist")

	_, err = f.svc.ApplicationService.Create(ctx, f.db, actorOf(emp), &dto.CreateApplicationRequest{Job: closed.ID})
	requireAppError(t, err, http.StatusForbidden)

	assert.Zero(t, f.broker.Len())
}

func TestApplicationService_Scope(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	rival := dbtest.CreateEmployer(t, f.db, "rival@acme.com", acme)
	alice := dbtest.CreateUser(t, f.db, "alice@example.com", models.UserTypeCandidate)
	bob := dbtest.CreateUser(t, f.db, "bob@example.com", models.UserTypeCandidate)
	admin := dbtest.CreateAdmin(t, f.db, "admin@example.com")

	job := dbtest.CreateJob(t, f.db, "Backend Dev", emp, acme)
	rivalJob := dbtest.CreateJob(t, f.db, "Frontend Dev", rival, acme)
	a1 := dbtest.CreateApplication(t, f.db, job, alice, models.ApplicationStatusApplied)
	dbtest.CreateApplication(t, f.db, rivalJob, alice, models.ApplicationStatusApplied)
	dbtest.CreateApplication(t, f.db, job, bob, models.ApplicationStatusUnderReview)

	count := func(actorUser *models.User, filter dto.ApplicationFilter) int64 {
		page, err := f.svc.ApplicationService.List(f.db, actorOf(actorUser), filter)
		require.NoError(t, err)
		return page.Total
	}

	assert.EqualValues(t, 2, count(emp, dto.ApplicationFilter{}))
	assert.EqualValues(t, 1, count(rival, dto.ApplicationFilter{}))
	assert.EqualValues(t, 2, count(alice, dto.ApplicationFilter{}))
	assert.EqualValues(t, 1, count(bob, dto.ApplicationFilter{}))
	assert.EqualValues(t, 3, count(admin, dto.ApplicationFilter{}))
	assert.EqualValues(t, 1, count(emp, dto.ApplicationFilter{Status: models.ApplicationStatusUnderReview}))
	assert.EqualValues(t, 1, count(emp, dto.ApplicationFilter{CandidateID: alice.ID}))

	_, err := f.svc.ApplicationService.Get(f.db, actorOf(bob), a1.ID)
	requireAppError(t, err, http.StatusNotFound)
	_, err = f.svc.ApplicationService.Get(f.db, actorOf(rival), a1.ID)
	requireAppError(t, err, http.StatusNotFound)

	got, err := f.svc.ApplicationService.Get(f.db, actorOf(emp), a1.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.Candidate.ID)

	mine, err := f.svc.ApplicationService.MyApplications(f.db, actorOf(alice))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.svc.ApplicationService.MyApplications(f.db, actorOf(emp))
	requireAppError(t, err, http.StatusForbidden)
}

func TestApplicationService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	job := dbtest.CreateJob(t, f.db, "Backend Dev", emp, acme)
	app := dbtest.CreateApplication(t, f.db, job, cand, models.ApplicationStatusApplied)

	got, err := f.svc.ApplicationService.Update(ctx, f.db, actorOf(cand), app.ID, &dto.UpdateApplicationRequest{CoverLetter: str("Updated")})
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.CoverLetter)
	assert.Zero(t, f.broker.Len())

	status := models.ApplicationStatusUnderReview
	_, err = f.svc.ApplicationService.Update(ctx, f.db, actorOf(cand), app.ID, &dto.UpdateApplicationRequest{Status: &status})
	requireAppError(t, err, http.StatusForbidden)

	got, err = f.svc.ApplicationService.Update(ctx, f.db, actorOf(emp), app.ID, &dto.UpdateApplicationRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusUnderReview, got.Status)
	assert.Equal(t, []models.EmailKind{models.EmailKindStatusUpdate}, kinds(drain(t, f.broker)))

	// Same status again sends nothing.
	_, err = f.svc.ApplicationService.Update(ctx, f.db, actorOf(emp), app.ID, &dto.UpdateApplicationRequest{Status: &status})
	require.NoError(t, err)
	assert.Zero(t, f.broker.Len())

	_, err = f.svc.ApplicationService.Update(ctx, f.db, actorOf(cand), app.ID, &dto.UpdateApplicationRequest{CoverLetter: str("Too late")})
	requireAppError(t, err, http.StatusForbidden)

	invalid := models.ApplicationStatus("XYZ")
	_, err = f.svc.ApplicationService.UpdateStatus(ctx, f.db, actorOf(emp), app.ID, &dto.UpdateStatusRequest{Status: invalid})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestApplicationService_Withdraw(t *testing.T) {
	f := newFixture(t)
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	job := dbtest.CreateJob(t, f.db, "Backend Dev", emp, acme)
	other := dbtest.CreateJob(t, f.db, "Ops", emp, acme)

	reviewing := dbtest.CreateApplication(t, f.db, job, cand, models.ApplicationStatusUnderReview)
	interviewing := dbtest.CreateApplication(t, f.db, other, cand, models.ApplicationStatusInterview)

	err := f.svc.ApplicationService.Withdraw(f.db, actorOf(emp), reviewing.ID)
	requireAppError(t, err, http.StatusForbidden)

	err = f.svc.ApplicationService.Withdraw(f.db, actorOf(cand), interviewing.ID)
	requireAppError(t, err, http.StatusForbidden)

	require.NoError(t, f.svc.ApplicationService.Withdraw(f.db, actorOf(cand), reviewing.ID))
	_, err = f.svc.ApplicationService.Get(f.db, actorOf(cand), reviewing.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestNotificationService_Bulk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := dbtest.CreateCompany(t, f.db, "Acme")
	emp := dbtest.CreateEmployer(t, f.db, "boss@acme.com", acme)
	cand := dbtest.CreateUser(t, f.db, "cand@example.com", models.UserTypeCandidate)
	admin := dbtest.CreateAdmin(t, f.db, "admin@example.com")
	job := dbtest.CreateJob(t, f.db, "Backend Dev", emp, acme)
	app := dbtest.CreateApplication(t, f.db, job, cand, models.ApplicationStatusApplied)

	req := &dto.BulkNotifyRequest{
		ApplicationIDs: []string{app.ID, "missing"},
		EmailType:      dto.EmailTypeEmployerNotification,
	}

	_, err := f.svc.NotificationService.Bulk(ctx, f.db, actorOf(emp), req)
	requireAppError(t, err, http.StatusForbidden)

	resp, err := f.svc.NotificationService.Bulk(ctx, f.db, actorOf(admin), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "queued", resp.Results[0].Status)
	assert.NotEmpty(t, resp.Results[0].TaskID)
	assert.Equal(t, "failed", resp.Results[1].Status)
	assert.Equal(t, "Application not found", resp.Results[1].Error)

	tasks := drain(t, f.broker)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.EmailKindNewApplication, tasks[0].Kind)
	assert.Equal(t, resp.Results[0].TaskID, tasks[0].ID)
}

func TestNotificationService_PublishFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.broker.Close())

	_, err := f.svc.NotificationService.Enqueue(context.Background(), f.db, notifications.Task{
		Kind:          models.EmailKindConfirmation,
		ApplicationID: "app-1",
	})
	assert.ErrorIs(t, err, notifications.ErrBrokerClosed)

	var task models.EmailTask
	require.NoError(t, f.db.First(&task).Error)
	assert.Equal(t, models.EmailTaskFailed, task.Status)
	assert.Contains(t, task.LastError, "closed")
}
