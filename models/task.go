package models

import (
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// ScanTask represents an async marketplace scan task. It carries no lock
// of its own: the scheduler's task manager owns all mutation and hands
// out copies to readers.
type ScanTask struct {
	ID          string      `json:"id"`
	Marketplace Marketplace `json:"marketplace,omitempty"` // empty = all marketplaces
	Status      TaskStatus  `json:"status"`
	Progress    int         `json:"progress"` // 0-100
	Message     string      `json:"message"`
	Result      *ScanResult `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// NewScanTask creates a new scan task
func NewScanTask(marketplace Marketplace) *ScanTask {
	return &ScanTask{
		ID:          generateTaskID(),
		Marketplace: marketplace,
		Status:      TaskStatusQueued,
		Progress:    0,
		Message:     "Scan queued for processing",
		CreatedAt:   time.Now(),
	}
}

// UpdateProgress updates the task progress
func (t *ScanTask) UpdateProgress(progress int, message string) {
	t.Progress = progress
	t.Message = message
}

// Start marks the task as processing
func (t *ScanTask) Start() {
	t.Status = TaskStatusProcessing
	t.Progress = 0
	t.Message = "Starting marketplace scan..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with result
func (t *ScanTask) Complete(result *ScanResult) {
	t.Status = TaskStatusCompleted
	t.Progress = 100
	t.Message = "Scan completed successfully"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with error
func (t *ScanTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Progress = 0
	t.Message = "Scan failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *ScanTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still running
func (t *ScanTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns the duration of the task
func (t *ScanTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "task_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
