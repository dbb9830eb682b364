package usecase

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"resume-builder/internal/logger"
	"resume-builder/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func createTestSurface(t *testing.T) *Surface {
	t.Helper()
	s := NewSurface(createTestResolver(t), logger.NewTestLogger(t), nil)
	t.Cleanup(s.Close)
	return s
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("navigation did not settle")
	}
}

// releasable returns a source that only answers once release is closed and
// ignores cancellation, like a slow response that arrives anyway.
func releasable(p Params, release <-chan struct{}) ParamSource {
	return ParamSourceFunc(func(ctx context.Context) (Params, error) {
		<-release
		return p, nil
	})
}

func TestSurface_InitialStateIsLoading(t *testing.T) {
	s := createTestSurface(t)
	assert.Equal(t, StateLoading, s.Snapshot().State)

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	assert.Contains(t, buf.String(), "Loading preview")
}

func TestSurface_LoadingToReady(t *testing.T) {
	s := createTestSurface(t)

	wait(t, s.Navigate(context.Background(), StaticParams{Template: "minimal", Data: url.QueryEscape(adaPayload)}))

	snap := s.Snapshot()
	require.Equal(t, StateReady, snap.State)
	assert.Equal(t, templates.Minimal, snap.Result.Template.ID())
	assert.Equal(t, "Ada", snap.Result.Data.PersonalInfo.Name)

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	assert.Contains(t, buf.String(), "layout-minimal")
	assert.Contains(t, buf.String(), "<h1>Ada</h1>")
	assert.NotContains(t, buf.String(), `contenteditable="true">`)
}

func TestSurface_LoadingToError(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		reason  ErrorKind
		message string
	}{
		{
			name:    "missing data",
			params:  Params{Template: "minimal"},
			reason:  MissingParameter,
			message: "Missing parameters",
		},
		{
			name:    "invalid data",
			params:  Params{Template: "minimal", Data: "%zz"},
			reason:  InvalidPayload,
			message: "Invalid data format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestSurface(t)
			wait(t, s.Navigate(context.Background(), StaticParams(tt.params)))

			snap := s.Snapshot()
			require.Equal(t, StateError, snap.State)
			assert.Equal(t, tt.reason, snap.Reason)
			assert.Error(t, snap.Err)

			var buf bytes.Buffer
			require.NoError(t, s.Render(&buf))
			assert.Contains(t, buf.String(), tt.message)
		})
	}
}

func TestSurface_SourceFailureIsMissingParameter(t *testing.T) {
	s := createTestSurface(t)
	src := ParamSourceFunc(func(context.Context) (Params, error) {
		return Params{}, errors.New("route not matched")
	})

	wait(t, s.Navigate(context.Background(), src))
	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, MissingParameter, snap.Reason)
}

func TestSurface_StaleResultIsDiscarded(t *testing.T) {
	s := createTestSurface(t)
	release := make(chan struct{})

	older := s.Navigate(context.Background(), releasable(Params{Template: "modern", Data: "%zz"}, release))
	newer := s.Navigate(context.Background(), StaticParams{Template: "minimal", Data: url.QueryEscape(adaPayload)})

	wait(t, newer)
	require.Equal(t, StateReady, s.Snapshot().State)

	close(release)
	wait(t, older)

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, templates.Minimal, snap.Result.Template.ID())
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestSurface_NavigateRestartsAtLoading(t *testing.T) {
	s := createTestSurface(t)
	wait(t, s.Navigate(context.Background(), StaticParams{Template: "base", Data: url.QueryEscape(adaPayload)}))
	require.Equal(t, StateReady, s.Snapshot().State)

	release := make(chan struct{})
	done := s.Navigate(context.Background(), releasable(Params{Template: "base"}, release))
	assert.Equal(t, StateLoading, s.Snapshot().State)

	close(release)
	wait(t, done)
	assert.Equal(t, StateError, s.Snapshot().State)
}

func TestSurface_CancelledNavigationStaysLoading(t *testing.T) {
	s := createTestSurface(t)
	ctx, cancel := context.WithCancel(context.Background())

	src := ParamSourceFunc(func(ctx context.Context) (Params, error) {
		<-ctx.Done()
		return Params{}, ctx.Err()
	})
	done := s.Navigate(ctx, src)
	cancel()
	wait(t, done)

	assert.Equal(t, StateLoading, s.Snapshot().State)
}

func TestSurface_CloseDiscardsInFlight(t *testing.T) {
	s := NewSurface(createTestResolver(t), logger.NewNoOpLogger(), nil)

	src := ParamSourceFunc(func(ctx context.Context) (Params, error) {
		<-ctx.Done()
		return Params{Template: "base", Data: url.QueryEscape(adaPayload)}, nil
	})
	done := s.Navigate(context.Background(), src)
	s.Close()
	wait(t, done)

	assert.Equal(t, StateLoading, s.Snapshot().State)

	// navigating an unmounted surface is a no-op
	wait(t, s.Navigate(context.Background(), StaticParams{Template: "base", Data: url.QueryEscape(adaPayload)}))
	assert.Equal(t, StateLoading, s.Snapshot().State)
	s.Close()
}

func TestSurface_CancelDoesNotWait(t *testing.T) {
	s := NewSurface(createTestResolver(t), logger.NewNoOpLogger(), nil)
	release := make(chan struct{})

	done := s.Navigate(context.Background(), releasable(Params{Template: "base", Data: url.QueryEscape(adaPayload)}, release))
	s.Cancel()

	select {
	case <-done:
		t.Fatal("navigation settled before its source answered")
	default:
	}
	assert.Equal(t, StateLoading, s.Snapshot().State)

	close(release)
	wait(t, done)
	assert.Equal(t, StateLoading, s.Snapshot().State)
	s.Close()
}
