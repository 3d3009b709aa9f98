package devserver

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tphakala/retinascan/internal/errors"
)

func newTestStore(t *testing.T, now func() time.Time) *Store {
	t.Helper()
	s, err := NewStore("", bcrypt.MinCost, now)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_Users(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeClock().Now)

	u, err := s.CreateUser("alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	n, err := s.UserCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.CreateUser("alice", "new@example.com", "pw")
	require.ErrorIs(t, err, ErrUserExists)
	_, err = s.CreateUser("bob", "ALICE@example.com", "pw")
	require.ErrorIs(t, err, ErrUserExists, "emails compare case-insensitively")

	got, err := s.Authenticate("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = s.Authenticate("alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, errors.IsCategory(err, errors.CategoryAuth))
	assert.False(t, errors.Is(err, ErrUserExists))

	_, err = s.Authenticate("nobody", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStore_HistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newFakeClock().Now)
	for range 5 {
		_, err := s.AddPrediction("u1", "Mild", 0.5)
		require.NoError(t, err)
	}
	last, err := s.AddPrediction("u1", "Severe", 0.9)
	require.NoError(t, err)
	_, err = s.AddPrediction("u2", "No DR", 0.7)
	require.NoError(t, err)

	got, err := s.History("u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, last.ID, got[0].ID)
	assert.Equal(t, "Severe", got[0].Label)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))

	all, err := s.History("u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	none, err := s.History("u3", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_HistorySameTimestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	s := newTestStore(t, func() time.Time { return fixed })

	first, err := s.AddPrediction("u1", "Mild", 0.5)
	require.NoError(t, err)
	second, err := s.AddPrediction("u1", "Severe", 0.9)
	require.NoError(t, err)

	got, err := s.History("u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID, "later insert first on equal timestamps")
	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, fixed.Equal(got[0].CreatedAt))
}

func TestStore_IsolatedInMemory(t *testing.T) {
	t.Parallel()

	a := newTestStore(t, nil)
	b := newTestStore(t, nil)

	_, err := a.CreateUser("alice", "alice@example.com", "pw")
	require.NoError(t, err)

	n, err := b.UserCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_FilePersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "devserver.db")

	s, err := NewStore(path, bcrypt.MinCost, nil)
	require.NoError(t, err)
	u, err := s.CreateUser("alice", "alice@example.com", "pw")
	require.NoError(t, err)
	_, err = s.AddPrediction(u.ID, "Mild", 0.6)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStore(path, bcrypt.MinCost, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, reopened.Close()) })

	got, err := reopened.Authenticate("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	history, err := reopened.History(u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGradeDistribution(t *testing.T) {
	t.Parallel()

	for _, b := range []float64{0, 0.25, 0.5, 0.75, 1} {
		probs := gradeDistribution(b)
		require.Len(t, probs, 5)
		var total float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			total += p
		}
		assert.InDelta(t, 1, total, 1e-9)
	}
	assert.Equal(t, 0, argmax(gradeDistribution(1)))
	assert.Equal(t, 4, argmax(gradeDistribution(0)))
}

func TestStubClassifier_EmptyImage(t *testing.T) {
	t.Parallel()

	_, err := StubClassifier{}.Classify(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)
}
