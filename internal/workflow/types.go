// Package workflow implements the HTTP client for the external
// cluster DAG engine that runs the annotation pipeline.
package workflow

import "time"

// Label keys attached to every submitted execution. The engine echoes
// them back on list, which is how executions are matched to jobs.
const (
	LabelJobID  = "jobid"
	LabelName   = "name"
	LabelSecret = "secret"
	LabelOrigin = "origin"
)

// archivedLabel marks executions that moved to the engine's archival
// tier; those need the archived delete/log endpoints.
const archivedLabel = "workflows.argoproj.io/workflow-archiving-status"

// Execution is one workflow run as reported by the engine's list API.
type Execution struct {
	Metadata ExecutionMetadata `json:"metadata"`
	Status   ExecutionStatus   `json:"status"`
}

// ExecutionMetadata carries the execution name, uid and job labels.
type ExecutionMetadata struct {
	Name   string            `json:"name"`
	UID    string            `json:"uid"`
	Labels map[string]string `json:"labels"`
}

// ExecutionStatus is the engine-native phase plus timestamps.
type ExecutionStatus struct {
	Phase      string     `json:"phase"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}

// Archived reports whether the execution has moved to the archival tier.
func (e Execution) Archived() bool {
	_, ok := e.Metadata.Labels[archivedLabel]
	return ok
}

type executionList struct {
	Items []Execution `json:"items"`
}

// SubmitRequest describes a template-based submission.
type SubmitRequest struct {
	TemplateName string
	Labels       map[string]string
	Parameters   map[string]string
	GenerateName string
}

// SubmitResult is the engine's acknowledgement of a submission.
type SubmitResult struct {
	Name      string
	CreatedAt time.Time
}

// Wire format of the submit endpoint.
type submitBody struct {
	Namespace     string        `json:"namespace"`
	ResourceKind  string        `json:"resourceKind"`
	ResourceName  string        `json:"resourceName"`
	SubmitOptions submitOptions `json:"submitOptions"`
}

type submitOptions struct {
	Labels       string   `json:"labels,omitempty"`
	Parameters   []string `json:"parameters,omitempty"`
	GenerateName string   `json:"generateName,omitempty"`
}

type submitResponse struct {
	Metadata struct {
		Name              string    `json:"name"`
		CreationTimestamp time.Time `json:"creationTimestamp"`
	} `json:"metadata"`
}

// One NDJSON line of the log endpoint.
type logLine struct {
	Result struct {
		Content string `json:"content"`
	} `json:"result"`
}
