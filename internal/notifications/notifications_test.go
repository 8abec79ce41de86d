package notifications

import (
	"context"
	"testing"
	"time"

	"jobboard_backend/internal/email"
	"jobboard_backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishConsume(t *testing.T) {
	b := NewMemoryBroker(2)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, Task{ID: "1"}))
	require.NoError(t, b.Publish(ctx, Task{ID: "2"}))
	assert.ErrorIs(t, b.Publish(ctx, Task{ID: "3"}), ErrQueueFull)

	task, err := b.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", task.ID)
}

func TestMemoryBroker_PublishAfter(t *testing.T) {
	b := NewMemoryBroker(4)
	defer b.Close()

	require.NoError(t, b.PublishAfter(context.Background(), Task{ID: "late"}, 20*time.Millisecond))
	assert.Equal(t, 0, b.Len())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	task, err := b.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", task.ID)
}

func TestMemoryBroker_Close(t *testing.T) {
	b := NewMemoryBroker(4)
	require.NoError(t, b.PublishAfter(context.Background(), Task{ID: "never"}, time.Hour))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := b.Consume(context.Background())
	assert.ErrorIs(t, err, ErrBrokerClosed)
	assert.ErrorIs(t, b.Publish(context.Background(), Task{}), ErrBrokerClosed)
}

func TestMemoryBroker_DelayedTaskWaitsForRoom(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, Task{ID: "first"}))
	require.NoError(t, b.PublishAfter(ctx, Task{ID: "retry", Attempt: 1}, time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, b.Len())

	cctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	task, err := b.Consume(cctx)
	require.NoError(t, err)
	assert.Equal(t, "first", task.ID)

	task, err = b.Consume(cctx)
	require.NoError(t, err)
	assert.Equal(t, "retry", task.ID)
	assert.Equal(t, 1, task.Attempt)
}

func TestMemoryBroker_DrainReturnsBufferedAndDelayed(t *testing.T) {
	b := NewMemoryBroker(4)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, Task{ID: "ready"}))
	require.NoError(t, b.PublishAfter(ctx, Task{ID: "later"}, time.Hour))

	ids := []string{}
	for _, task := range b.Drain() {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []string{"ready", "later"}, ids)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Drain())
}

func TestMemoryBroker_ConsumeHonoursContext(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := b.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newRedisBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisBroker(client, "test"), mr
}

func TestRedisBroker_PublishConsume(t *testing.T) {
	b, _ := newRedisBroker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := Task{ID: "t1", Kind: models.EmailKindStatusUpdate, ApplicationID: "a1", NewStatus: models.ApplicationStatusOffer}
	require.NoError(t, b.Publish(ctx, in))
	require.NoError(t, b.Publish(ctx, Task{ID: "t2"}))

	out, err := b.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, models.ApplicationStatusOffer, out.NewStatus)

	out, err = b.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", out.ID)
}

func TestRedisBroker_DelayedTaskIsPromoted(t *testing.T) {
	b, mr := newRedisBroker(t)
	ctx := context.Background()

	require.NoError(t, b.PublishAfter(ctx, Task{ID: "retry", Attempt: 1}, 10*time.Millisecond))
	members, err := mr.ZMembers(b.delayedKey)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	time.Sleep(20 * time.Millisecond)

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := b.Consume(cctx)
	require.NoError(t, err)
	assert.Equal(t, "retry", out.ID)
	assert.Equal(t, 1, out.Attempt)
}

func TestRedisBroker_PromoteMovesEachTaskOnce(t *testing.T) {
	b, mr := newRedisBroker(t)
	ctx := context.Background()

	require.NoError(t, b.PublishAfter(ctx, Task{ID: "a"}, time.Millisecond))
	require.NoError(t, b.PublishAfter(ctx, Task{ID: "b"}, time.Millisecond))
	require.NoError(t, b.PublishAfter(ctx, Task{ID: "c"}, time.Hour))
	time.Sleep(10 * time.Millisecond)

	moved, err := b.promoteDue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, moved)

	moved, err = b.promoteDue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, moved)

	ready, err := mr.List(b.queueKey)
	require.NoError(t, err)
	assert.Len(t, ready, 2)
	delayed, err := mr.ZMembers(b.delayedKey)
	require.NoError(t, err)
	assert.Len(t, delayed, 1)
}

func TestRedisBroker_Closed(t *testing.T) {
	b, _ := newRedisBroker(t)
	require.NoError(t, b.Close())

	_, err := b.Consume(context.Background())
	assert.ErrorIs(t, err, ErrBrokerClosed)
}

func TestStatusSubject(t *testing.T) {
	tests := []struct {
		status models.ApplicationStatus
		want   string
	}{
		{models.ApplicationStatusUnderReview, "Your application is under review - Dev at Acme"},
		{models.ApplicationStatusInterview, "Interview invitation - Dev at Acme"},
		{models.ApplicationStatusOffer, "Job offer - Dev at Acme"},
		{models.ApplicationStatusRejected, "Application update - Dev at Acme"},
		{models.ApplicationStatusApplied, "Application update - Dev at Acme"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusSubject(tt.status, "Dev", "Acme"))
	}
}

func sampleApplication() *models.Application {
	app := &models.Application{
		CoverLetter: "I love Go",
		Status:      models.ApplicationStatusApplied,
		Candidate:   models.User{Email: "cand@x.io", FirstName: "Jane", LastName: "Doe"},
		Job: models.Job{
			Title:    "Backend Dev",
			JobType:  models.JobTypeFullTime,
			Location: "Berlin",
			Salary:   50000,
			Company:  models.Company{Name: "Acme", Website: "https://acme.example"},
			PostedBy: models.User{Email: "boss@acme.io"},
		},
	}
	app.CreatedAt = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	return app
}

func TestComposer(t *testing.T) {
	tm, err := email.NewDefaultTemplateManager()
	require.NoError(t, err)
	c := NewComposer(tm, "noreply@jobboard.local")
	app := sampleApplication()

	msg, err := c.Compose(Task{Kind: models.EmailKindConfirmation}, app)
	require.NoError(t, err)
	assert.Equal(t, []string{"cand@x.io"}, msg.To)
	assert.Equal(t, "Application Confirmation - Backend Dev at Acme", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Jane Doe")
	assert.Contains(t, msg.Body, "March 05, 2024")

	msg, err = c.Compose(Task{Kind: models.EmailKindNewApplication}, app)
	require.NoError(t, err)
	assert.Equal(t, []string{"boss@acme.io"}, msg.To)
	assert.Equal(t, "New Application Received - Backend Dev", msg.Subject)
	assert.Contains(t, msg.Body, "I love Go")

	msg, err = c.Compose(Task{
		Kind:      models.EmailKindStatusUpdate,
		OldStatus: models.ApplicationStatusApplied,
		NewStatus: models.ApplicationStatusInterview,
	}, app)
	require.NoError(t, err)
	assert.Equal(t, "Interview invitation - Backend Dev at Acme", msg.Subject)
	assert.Contains(t, msg.Body, "from Applied to Interview")

	_, err = c.Compose(Task{Kind: "bogus"}, app)
	assert.Error(t, err)
}
