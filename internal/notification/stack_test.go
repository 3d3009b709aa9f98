package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDuration = 60 * time.Millisecond
	testFade     = 20 * time.Millisecond
)

func newTestStack(t *testing.T) *Stack {
	t.Helper()
	s := NewStack(&StackConfig{Duration: testDuration, Fade: testFade})
	t.Cleanup(s.Stop)
	return s
}

// nextEvent waits for one event or fails the test.
func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for toast event")
		return Event{}
	}
}

func TestNewStack_Defaults(t *testing.T) {
	t.Parallel()

	s := NewStack(nil)
	defer s.Stop()
	assert.Equal(t, DefaultDuration+DefaultFade, s.Lifetime())

	toast := s.Info("hello")
	assert.Equal(t, DefaultDuration, toast.Duration)
}

func TestStack_Lifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStack(t)
	events, _ := s.Subscribe()

	start := time.Now()
	toast := s.Success("Login successful!")

	ev := nextEvent(t, events)
	assert.Equal(t, EventShown, ev.Kind)
	assert.Equal(t, toast.ID, ev.Toast.ID)
	assert.Equal(t, 1, s.Len())

	ev = nextEvent(t, events)
	assert.Equal(t, EventFading, ev.Kind)
	assert.GreaterOrEqual(t, time.Since(start), testDuration)
	require.Len(t, s.Visible(), 1, "fading toast still on screen")
	assert.Equal(t, ToastFading, s.Visible()[0].State)

	ev = nextEvent(t, events)
	assert.Equal(t, EventRemoved, ev.Kind)
	assert.Equal(t, ToastRemoved, ev.Toast.State)
	assert.GreaterOrEqual(t, time.Since(start), testDuration+testFade)
	assert.Equal(t, 0, s.Len())
}

func TestStack_RemovedWithinLifetime(t *testing.T) {
	t.Parallel()

	s := newTestStack(t)
	s.Error("Prediction failed")

	assert.Eventually(t, func() bool { return s.Len() == 0 },
		s.Lifetime()+500*time.Millisecond, 5*time.Millisecond)
}

func TestStack_ToastsStack(t *testing.T) {
	t.Parallel()

	s := NewStack(&StackConfig{Duration: time.Minute})
	defer s.Stop()

	first := s.Info("first")
	second := s.Error("second")
	third := s.Success("third")

	visible := s.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID},
		[]string{visible[0].ID, visible[1].ID, visible[2].ID}, "oldest first")
}

func TestStack_CustomDurationPerToast(t *testing.T) {
	t.Parallel()

	s := NewStack(&StackConfig{Duration: time.Minute, Fade: testFade})
	defer s.Stop()

	s.Info("long lived")
	s.Show(NewToast("short lived", ToastTypeInfo).WithDuration(testDuration))

	assert.Eventually(t, func() bool { return s.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "long lived", s.Visible()[0].Message)
}

func TestStack_Dismiss(t *testing.T) {
	t.Parallel()

	s := NewStack(&StackConfig{Duration: time.Minute})
	defer s.Stop()

	toast := s.Info("dismiss me")
	require.NoError(t, s.Dismiss(toast.ID))
	assert.Equal(t, 0, s.Len())

	assert.ErrorIs(t, s.Dismiss(toast.ID), ErrToastNotFound)
}

func TestStack_StopCancelsTimersAndSubscribers(t *testing.T) {
	t.Parallel()

	s := NewStack(&StackConfig{Duration: testDuration, Fade: testFade})
	_, ctx := s.Subscribe()
	s.Info("pending")

	s.Stop()
	s.Stop() // idempotent

	assert.Equal(t, 0, s.Len())
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("subscriber context not cancelled on Stop")
	}

	s.Info("after stop")
	assert.Equal(t, 0, s.Len())
}

func TestStack_Unsubscribe(t *testing.T) {
	t.Parallel()

	s := NewStack(&StackConfig{Duration: time.Minute})
	defer s.Stop()

	ch, ctx := s.Subscribe()
	s.Unsubscribe(ch)
	require.Error(t, ctx.Err())

	s.Info("not delivered")
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event after unsubscribe: %v", ev.Kind)
	default:
	}
}
