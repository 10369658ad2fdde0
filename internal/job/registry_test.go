package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/apperrors"
	"github.com/seqcenter/annoserve/internal/workflow"
)

// fakeEngine is a scriptable workflow engine shared by the registry
// and service tests.
type fakeEngine struct {
	mu sync.Mutex

	executions []workflow.Execution
	listErr    error

	submitResult workflow.SubmitResult
	submitErr    error
	submitted    []workflow.SubmitRequest

	deleteErr error
	deleted   []string

	logs    string
	logsErr error
}

func (f *fakeEngine) ListExecutions(ctx context.Context) ([]workflow.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.executions, nil
}

func (f *fakeEngine) Submit(ctx context.Context, req workflow.SubmitRequest) (workflow.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return workflow.SubmitResult{}, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return f.submitResult, nil
}

func (f *fakeEngine) DeleteExecution(ctx context.Context, name, uid string, archived bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeEngine) ExecutionLogs(ctx context.Context, name, uid string, archived bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logsErr != nil {
		return "", f.logsErr
	}
	return f.logs, nil
}

func execution(jobID, name, phase string) workflow.Execution {
	return workflow.Execution{
		Metadata: workflow.ExecutionMetadata{
			Name: name,
			UID:  "uid-" + name,
			Labels: map[string]string{
				workflow.LabelJobID:  jobID,
				workflow.LabelName:   "sample-" + name,
				workflow.LabelSecret: "secret-" + name,
			},
		},
		Status: workflow.ExecutionStatus{
			Phase:     phase,
			StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestStartFailsWhenInitialFetchFails(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{listErr: errors.New("engine down")}
	reg := NewRegistry(engine, time.Minute, zap.NewNop())

	err := reg.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial execution fetch")
}

func TestStartPopulatesFromEngine(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	engine := &fakeEngine{executions: []workflow.Execution{
		execution(id, "annotate-job-abc", "Running"),
	}}
	reg := NewRegistry(engine, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reg.Start(ctx))

	rec, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, rec.Status)
	assert.Equal(t, "annotate-job-abc", rec.ExecutionName)
	assert.Equal(t, "secret-annotate-job-abc", rec.Secret)
	assert.Equal(t, "sample-annotate-job-abc", rec.DisplayName)
}

func TestReconcileSkipsBadItems(t *testing.T) {
	t.Parallel()

	good := make([]workflow.Execution, 0, 9)
	ids := make([]string, 0, 9)
	for i := 0; i < 9; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		good = append(good, execution(id, uuid.NewString(), "Succeeded"))
	}
	bad := execution("not-a-uuid", "broken", "Running")
	engine := &fakeEngine{executions: append([]workflow.Execution{bad}, good...)}
	reg := NewRegistry(engine, time.Minute, zap.NewNop())

	require.NoError(t, reg.reconcile(context.Background()))

	for _, id := range ids {
		rec, ok := reg.Get(id)
		require.True(t, ok, "job %s missing", id)
		assert.Equal(t, StatusSucceeded, rec.Status)
	}
	_, ok := reg.Get("not-a-uuid")
	assert.False(t, ok)
}

func TestReconcileSkipsUnknownPhase(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	engine := &fakeEngine{executions: []workflow.Execution{
		execution(id, "weird", "Omikron"),
	}}
	reg := NewRegistry(engine, time.Minute, zap.NewNop())

	require.NoError(t, reg.reconcile(context.Background()))
	_, ok := reg.Get(id)
	assert.False(t, ok)
}

func TestMergeKeepsLocalSecretAndName(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	reg := NewRegistry(&fakeEngine{}, time.Minute, zap.NewNop())
	reg.Insert(Record{
		ID:          id,
		Secret:      "local-secret",
		DisplayName: "Local_name",
		Status:      StatusPending,
	})

	reg.engine = &fakeEngine{executions: []workflow.Execution{
		execution(id, "annotate-job-xyz", "Running"),
	}}
	require.NoError(t, reg.reconcile(context.Background()))

	rec, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "local-secret", rec.Secret)
	assert.Equal(t, "Local_name", rec.DisplayName)
	assert.Equal(t, StatusRunning, rec.Status)
	assert.Equal(t, "annotate-job-xyz", rec.ExecutionName)
}

func TestMergeNeverRegressesTerminalStatus(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	reg := NewRegistry(&fakeEngine{}, time.Minute, zap.NewNop())
	reg.Insert(Record{ID: id, Secret: "s", Status: StatusSucceeded})

	stale := execution(id, "old-view", "Running")
	stale.Metadata.Labels["workflows.argoproj.io/workflow-archiving-status"] = "Archived"
	reg.engine = &fakeEngine{executions: []workflow.Execution{stale}}
	require.NoError(t, reg.reconcile(context.Background()))

	rec, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.True(t, rec.Retired, "archival flag should still be tracked")
}

func TestMergeUsesLabelDefaultsOnColdStart(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	exec := workflow.Execution{
		Metadata: workflow.ExecutionMetadata{
			Name:   "orphan",
			Labels: map[string]string{workflow.LabelJobID: id},
		},
		Status: workflow.ExecutionStatus{Phase: "Pending"},
	}
	reg := NewRegistry(&fakeEngine{executions: []workflow.Execution{exec}}, time.Minute, zap.NewNop())

	require.NoError(t, reg.reconcile(context.Background()))

	rec, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Unknown name", rec.DisplayName)
	assert.Equal(t, "Unknown", rec.Secret)
	assert.Equal(t, StatusPending, rec.Status)
}

func TestMutateUnknownID(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&fakeEngine{}, time.Minute, zap.NewNop())
	err := reg.Mutate(uuid.NewString(), func(*Record) error { return nil })
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRemoveKeepsRecordOnCallbackError(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	reg := NewRegistry(&fakeEngine{}, time.Minute, zap.NewNop())
	reg.Insert(Record{ID: id, Secret: "s"})

	boom := errors.New("engine refused")
	err := reg.Remove(id, func(Record) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, ok := reg.Get(id)
	assert.True(t, ok, "record must survive a failed deletion")

	require.NoError(t, reg.Remove(id, func(Record) error { return nil }))
	_, ok = reg.Get(id)
	assert.False(t, ok)
}
