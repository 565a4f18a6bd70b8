// Package audit records state-mutating task actions for later inspection.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/todo/internal/models"
)

// Actions recorded by the task service.
const (
	ActionCreate   = "task.create"
	ActionComplete = "task.complete"
	ActionClear    = "task.clear"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Writer is the persistence side of the audit trail.
type Writer interface {
	WriteAudit(ctx context.Context, action, inputsHash, outcome, taskID string) (*models.AuditEntry, error)
}

// Recorder writes audit entries.
type Recorder struct {
	w Writer
}

// NewRecorder creates a new audit recorder.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{w: w}
}

// Record writes an entry for action. Inputs are stored only as a hash.
func (r *Recorder) Record(ctx context.Context, action string, inputs any, outcome, taskID string) (*models.AuditEntry, error) {
	return r.w.WriteAudit(ctx, action, HashInputs(inputs), outcome, taskID)
}

// HashInputs returns the hex SHA-256 of the JSON encoding of inputs.
func HashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
