// Package job implements the job state synchronization and
// authorization core: the registry of known jobs, the reconciliation
// loop against the workflow engine and the lifecycle service.
package job

import (
	"fmt"
	"time"
)

// Status is the client-facing lifecycle vocabulary. Engine-native
// phases are translated into it by ParsePhase and never leak to
// callers.
type Status string

const (
	StatusUninitialized Status = "UNINITIALIZED"
	StatusPending       Status = "PENDING"
	StatusRunning       Status = "RUNNING"
	StatusSucceeded     Status = "SUCCEEDED"
	StatusFailed        Status = "FAILED"
)

// Terminal reports whether the status is final for result purposes.
// Deletion is legal in any status.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ParsePhase maps an engine-native phase string onto the stable
// vocabulary. Unknown phases are an error so new engine phases fail
// loudly instead of being miscategorized.
func ParsePhase(phase string) (Status, error) {
	switch phase {
	case "Init", "Pending":
		return StatusPending, nil
	case "Running":
		return StatusRunning, nil
	case "Succeeded":
		return StatusSucceeded, nil
	case "Failed", "Error":
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown engine phase %q", phase)
	}
}

// Record is the registry's view of one job. The secret and display
// name are captured at init and never overwritten by reconciliation.
type Record struct {
	ID            string
	Secret        string
	DisplayName   string
	Status        Status
	ExecutionName string
	ExecutionUID  string
	StartedAt     time.Time
	UpdatedAt     time.Time
	Retired       bool
}

// Credentials is the (id, secret) pair identifying and authorizing a
// job.
type Credentials struct {
	ID     string `json:"jobID"`
	Secret string `json:"secret"`
}

// JobStatus is the public projection of a record.
type JobStatus struct {
	ID      string    `json:"jobID"`
	Status  Status    `json:"jobStatus"`
	Started time.Time `json:"started"`
	Updated time.Time `json:"updated"`
	Name    string    `json:"name"`
}

// FailureReason classifies a rejected list entry.
type FailureReason string

const (
	FailureNotFound     FailureReason = "NOT_FOUND"
	FailureUnauthorized FailureReason = "UNAUTHORIZED"
)

// FailedJobStatus is the list entry for a pair that could not be
// resolved to an authorized record.
type FailedJobStatus struct {
	ID     string        `json:"jobID"`
	Status FailureReason `json:"jobStatus"`
}

// ListResult partitions a batch status query into authorized matches
// and failures. Every requested pair lands in exactly one of the two.
type ListResult struct {
	Jobs   []JobStatus       `json:"jobs"`
	Failed []FailedJobStatus `json:"failedJobs"`
}

// UploadLinks are the presigned input upload URLs handed out at init.
type UploadLinks struct {
	Fasta     string `json:"uploadLinkFasta"`
	Prodigal  string `json:"uploadLinkProdigal"`
	Replicons string `json:"uploadLinkReplicons"`
}

// ResultFiles is the bundle of presigned download URLs, one per
// pipeline output kind.
type ResultFiles struct {
	EMBL            string `json:"EMBL"`
	FAA             string `json:"FAA"`
	FAAHypothetical string `json:"FAAHypothetical"`
	FFN             string `json:"FFN"`
	FNA             string `json:"FNA"`
	GBFF            string `json:"GBFF"`
	GFF3            string `json:"GFF3"`
	JSON            string `json:"JSON"`
	TSV             string `json:"TSV"`
	TSVHypothetical string `json:"TSVHypothetical"`
}

// Results is the payload returned for a succeeded job.
type Results struct {
	ID      string      `json:"jobID"`
	Started time.Time   `json:"started"`
	Updated time.Time   `json:"updated"`
	Name    string      `json:"name"`
	Files   ResultFiles `json:"ResultFiles"`
}

// Version reports the pipeline tool, reference database and backend
// versions.
type Version struct {
	Tool    string `json:"toolVersion"`
	DB      string `json:"dbVersion"`
	Backend string `json:"backendVersion"`
}
