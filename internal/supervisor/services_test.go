package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

type fakeHTTPServer struct {
	listenErr error
	started   chan struct{}
	stop      chan struct{}
	once      sync.Once
	shutdowns atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.once.Do(func() { close(f.stop) })
	return nil
}

var _ suture.Service = (*HTTPServerService)(nil)
var _ suture.Service = (*ReminderSchedulerService)(nil)

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, int32(1), srv.shutdowns.Load())
	assert.Equal(t, "http-server", svc.String())
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	srv.listenErr = errors.New("address already in use")

	err := NewHTTPServerService(srv, 0).Serve(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.Zero(t, srv.shutdowns.Load())
}

type blockingJob struct {
	runs atomic.Int32
}

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRunsServicesUntilCanceled(t *testing.T) {
	t.Parallel()

	tree := NewTree(nil, TreeConfig{ShutdownTimeout: time.Second})
	srv := newFakeHTTPServer()
	job := &blockingJob{}
	tree.AddAPIService(NewHTTPServerService(srv, time.Second))
	tree.AddJobService(NewReminderSchedulerService(job))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	<-srv.started
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	assert.Equal(t, int32(1), srv.shutdowns.Load())
}

func TestNewTreeDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultTreeConfig(), NewTree(nil, TreeConfig{}).Config())

	custom := NewTree(nil, TreeConfig{FailureThreshold: 2}).Config()
	assert.InDelta(t, 2.0, custom.FailureThreshold, 0)
	assert.Equal(t, 15*time.Second, custom.FailureBackoff)
}
