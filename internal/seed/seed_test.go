package seed

import (
	"context"
	"math/rand"
	"testing"

	"jobboard_backend/database/dbtest"
	"jobboard_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSalary(t *testing.T) {
	assert.InDelta(t, 35000, BaseSalary(models.JobTypeFullTime, "Junior Backend Developer"), 0.001)
	assert.InDelta(t, 90000, BaseSalary(models.JobTypeContract, "Lead Data Developer"), 0.001)
	assert.InDelta(t, 20000, BaseSalary(models.JobTypeInternship, "Mid-level Frontend Developer"), 0.001)
	assert.InDelta(t, 82500, BaseSalary(models.JobTypeRemote, "Principal DevOps Developer"), 0.001)
}

func TestSalaryStaysWithinTenPercent(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		salary := Salary(rnd, 50000)
		assert.GreaterOrEqual(t, salary, 45000.0)
		assert.LessOrEqual(t, salary, 55000.0)
	}
}

func TestJobTitle(t *testing.T) {
	title := JobTitle(rand.New(rand.NewSource(7)))
	assert.Regexp(t, `^(Junior|Mid-level|Senior|Lead|Principal) .+ Developer$`, title)
}

func TestRun(t *testing.T) {
	db := dbtest.New(t)

	opts := Options{
		Companies:       3,
		Employers:       4,
		Candidates:      5,
		Jobs:            20,
		MinApplications: 1,
		MaxApplications: 3,
	}
	res, err := New(42).Run(context.Background(), db, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Companies)
	assert.Equal(t, 4, res.Employers)
	assert.Equal(t, 5, res.Candidates)
	assert.Equal(t, 20, res.Jobs)

	var jobs []models.Job
	require.NoError(t, db.Preload("PostedBy").Find(&jobs).Error)
	require.Len(t, jobs, 20)
	for _, job := range jobs {
		require.NotNil(t, job.PostedBy.CompanyID)
		assert.Equal(t, job.CompanyID, *job.PostedBy.CompanyID, "jobs are posted for the poster's company")
		assert.GreaterOrEqual(t, job.Salary, 0.0)
	}

	var apps []models.Application
	require.NoError(t, db.Preload("Job").Find(&apps).Error)
	assert.Len(t, apps, res.Applications)
	for _, app := range apps {
		assert.True(t, app.Job.IsActive)
		assert.True(t, app.Status.IsValid())
	}
}

func TestRunRequiresCompanies(t *testing.T) {
	db := dbtest.New(t)
	_, err := New(1).Run(context.Background(), db, Options{Employers: 1})
	assert.Error(t, err)
}
