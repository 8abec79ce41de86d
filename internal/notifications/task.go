// Package notifications moves email tasks from the API to the worker pool.
package notifications

import (
	"encoding/json"
	"errors"
	"time"

	"jobboard_backend/internal/models"
)

var (
	ErrBrokerClosed = errors.New("broker closed")
	ErrQueueFull    = errors.New("task queue is full")
)

// Task is one queued email. ID is the EmailTask row that records its outcome.
type Task struct {
	ID            string                   `json:"id"`
	Kind          models.EmailKind         `json:"kind"`
	ApplicationID string                   `json:"application_id"`
	OldStatus     models.ApplicationStatus `json:"old_status,omitempty"`
	NewStatus     models.ApplicationStatus `json:"new_status,omitempty"`
	Attempt       int                      `json:"attempt"`
	EnqueuedAt    time.Time                `json:"enqueued_at"`
}

func (t Task) Encode() ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTask(data []byte) (Task, error) {
	var t Task
	err := json.Unmarshal(data, &t)
	return t, err
}
