package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/upload"
	"github.com/tphakala/retinascan/internal/view"
)

// fakeBackend answers with per-call functions and counts invocations.
type fakeBackend struct {
	checkAuth func(ctx context.Context) (api.AuthStatus, error)
	login     func(ctx context.Context, username, password string) (api.User, error)
	register  func(ctx context.Context, username, email, password string) (api.User, error)
	logout    func(ctx context.Context) error
	predict   func(ctx context.Context, img api.Image) (*api.Prediction, error)
	history   func(ctx context.Context) ([]api.HistoryEntry, error)

	checkAuthCalls atomic.Int32
	loginCalls     atomic.Int32
	registerCalls  atomic.Int32
	logoutCalls    atomic.Int32
	predictCalls   atomic.Int32
	historyCalls   atomic.Int32
}

func (f *fakeBackend) CheckAuth(ctx context.Context) (api.AuthStatus, error) {
	f.checkAuthCalls.Add(1)
	if f.checkAuth == nil {
		return api.AuthStatus{}, nil
	}
	return f.checkAuth(ctx)
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (api.User, error) {
	f.loginCalls.Add(1)
	if f.login == nil {
		return api.User{Message: "Login successful", Username: username}, nil
	}
	return f.login(ctx, username, password)
}

func (f *fakeBackend) Register(ctx context.Context, username, email, password string) (api.User, error) {
	f.registerCalls.Add(1)
	if f.register == nil {
		return api.User{Message: "User registered successfully", Username: username}, nil
	}
	return f.register(ctx, username, email, password)
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

func (f *fakeBackend) Predict(ctx context.Context, img api.Image) (*api.Prediction, error) {
	f.predictCalls.Add(1)
	if f.predict == nil {
		return testPrediction(), nil
	}
	return f.predict(ctx, img)
}

func (f *fakeBackend) History(ctx context.Context) ([]api.HistoryEntry, error) {
	f.historyCalls.Add(1)
	if f.history == nil {
		return nil, nil
	}
	return f.history(ctx)
}

func testPrediction() *api.Prediction {
	return &api.Prediction{
		Label:         "Moderate",
		Confidence:    87.5,
		SeverityLevel: 2,
		Scores: api.Scores{
			{Label: "No DR", Confidence: 2.5},
			{Label: "Mild", Confidence: 5},
			{Label: "Moderate", Confidence: 87.5},
			{Label: "Severe", Confidence: 4},
			{Label: "Proliferative DR", Confidence: 1},
		},
	}
}

func testImage(name string) *upload.PendingImage {
	// minimal PNG signature is enough for content sniffing
	return upload.New(name, []byte("\x89PNG\r\n\x1a\n"+name))
}

func httpFailure(op string, status int, msg string) error {
	return &api.Failure{
		Kind:       api.ApplicationFailure,
		Operation:  op,
		StatusCode: status,
		Message:    msg,
		Err:        fmt.Errorf("unexpected status %d", status),
	}
}

func transportFailure(op string) error {
	return &api.Failure{
		Kind:      api.TransportFailure,
		Operation: op,
		Err:       fmt.Errorf("connection refused"),
	}
}

// newTestController wires a controller to a real page and a long-lived toast
// stack so toasts stay visible for assertions.
func newTestController(t *testing.T, backend Backend) (*ViewController, *view.Page) {
	t.Helper()

	page, err := view.NewPage()
	require.NoError(t, err)

	toasts := notification.NewStack(&notification.StackConfig{Duration: time.Minute, Fade: time.Second})
	c, err := New(Config{Backend: backend, View: page, Toasts: toasts})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		toasts.Stop()
	})
	return c, page
}

// loggedIn returns a controller with an active session for alice.
func loggedIn(t *testing.T, backend *fakeBackend) (*ViewController, *view.Page) {
	t.Helper()
	c, page := newTestController(t, backend)
	require.NoError(t, c.Login(t.Context(), "alice", "pw"))
	c.Wait()
	return c, page
}

func toastMessages(c *ViewController) []string {
	var out []string
	for _, t := range c.Toasts().Visible() {
		out = append(out, string(t.Type)+": "+t.Message)
	}
	return out
}

func lastToast(t *testing.T, c *ViewController) notification.Toast {
	t.Helper()
	visible := c.Toasts().Visible()
	require.NotEmpty(t, visible, "expected a toast")
	return visible[len(visible)-1]
}
