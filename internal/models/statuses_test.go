package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_RejectedIsTerminal(t *testing.T) {
	all := []ApplicationStatus{
		ApplicationStatusApplied,
		ApplicationStatusUnderReview,
		ApplicationStatusInterview,
		ApplicationStatusOffer,
		ApplicationStatusRejected,
	}

	for _, next := range all {
		if next == ApplicationStatusRejected {
			assert.True(t, ApplicationStatusRejected.CanTransitionTo(next))
			continue
		}
		assert.False(t, ApplicationStatusRejected.CanTransitionTo(next), "REJ -> %s", next)
	}
}

func TestApplicationStatus_LooseTransitions(t *testing.T) {
	// Backward moves are allowed, they are just not forward.
	assert.True(t, ApplicationStatusOffer.CanTransitionTo(ApplicationStatusUnderReview))
	assert.False(t, ApplicationStatusOffer.IsForward(ApplicationStatusUnderReview))

	assert.True(t, ApplicationStatusApplied.IsForward(ApplicationStatusInterview))
	assert.True(t, ApplicationStatusOffer.IsForward(ApplicationStatusRejected))
	assert.False(t, ApplicationStatusApplied.CanTransitionTo("XYZ"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Under Review", ApplicationStatusUnderReview.Label())
	assert.Equal(t, "Full-time", JobTypeFullTime.Label())
	assert.Equal(t, "ZZZ", JobType("ZZZ").Label())
	assert.True(t, JobTypeRemote.IsValid())
	assert.False(t, JobType("XX").IsValid())
	assert.True(t, UserTypeCandidate.IsValid())
	assert.False(t, UserType("recruiter").IsValid())
}

func TestUserFullName(t *testing.T) {
	u := &User{Email: "a@b.c"}
	assert.Equal(t, "a@b.c", u.FullName())
	u.FirstName = "Ada"
	assert.Equal(t, "Ada", u.FullName())
	u.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", u.FullName())
}
