package job

import (
	"context"

	"github.com/seqcenter/annoserve/internal/workflow"
)

// Engine is the slice of the workflow engine API the core consumes.
// *workflow.Client implements it; tests substitute fakes.
type Engine interface {
	ListExecutions(ctx context.Context) ([]workflow.Execution, error)
	Submit(ctx context.Context, req workflow.SubmitRequest) (workflow.SubmitResult, error)
	DeleteExecution(ctx context.Context, name, uid string, archived bool) error
	ExecutionLogs(ctx context.Context, name, uid string, archived bool) (string, error)
}

// ObjectSigner produces the presigned URL bundles for a job's inputs
// and outputs.
type ObjectSigner interface {
	UploadBundle(jobID string, replicons RepliconTableType) (UploadLinks, error)
	DownloadBundle(jobID string) (ResultFiles, error)
}
