package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	return &User{ID: "1", Email: "a@b.com"}
}

func TestSetAndClearTogether(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Set("abc", testUser()))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, testUser(), s.User())

	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestSetRejectsPartialSession(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("abc", testUser()))

	assert.ErrorIs(t, s.Set("", testUser()), ErrPartialSession)
	assert.ErrorIs(t, s.Set("xyz", nil), ErrPartialSession)
	assert.ErrorIs(t, s.Set("xyz", &User{Email: "no-id@b.com"}), ErrPartialSession)

	assert.Equal(t, "abc", s.Token(), "rejected sets must not mutate")
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore()
	flushes := 0
	s.Subscribe(func() error { flushes++; return nil })

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	assert.Zero(t, flushes)
}

func TestUserIsCopied(t *testing.T) {
	s := NewStore()
	u := testUser()
	require.NoError(t, s.Set("abc", u))

	u.Email = "mutated@b.com"
	assert.Equal(t, "a@b.com", s.User().Email)

	got := s.User()
	got.Email = "also-mutated@b.com"
	assert.Equal(t, "a@b.com", s.User().Email)
}

func TestSubscriberErrorSurfacesFromSet(t *testing.T) {
	s := NewStore()
	boom := errors.New("write failed")
	s.Subscribe(func() error { return boom })

	err := s.Set("abc", testUser())
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentReadersNeverSeePartialSession(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Set("tok", testUser())
			_ = s.Clear()
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
			snap := s.Snapshot()
			if (snap.Token == "") != (snap.User == nil) {
				t.Fatalf("observed partial session: %+v", snap)
			}
		}
	}
}

func TestMarshalStateUsesNulls(t *testing.T) {
	s := NewStore()
	data, err := s.MarshalState()
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":null,"user":null}`, string(data))

	require.NoError(t, s.Set("abc", testUser()))
	data, err = s.MarshalState()
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc","user":{"id":"1","email":"a@b.com"}}`, string(data))
}

func TestRestoreStateRoundTrip(t *testing.T) {
	src := NewStore()
	require.NoError(t, src.Set("abc", testUser()))
	data, err := src.MarshalState()
	require.NoError(t, err)

	dst := NewStore()
	require.NoError(t, dst.RestoreState(data))
	assert.True(t, dst.Snapshot().Equal(src.Snapshot()))
}

func TestRestoreStateDiscardsPartialSnapshot(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.RestoreState([]byte(`{"token":"abc","user":null}`)))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())

	require.NoError(t, s.RestoreState([]byte(`{"token":null,"user":{"id":"1","email":"a@b.com"}}`)))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestRestoreStateIsShallowMerge(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Set("old", testUser()))

	require.NoError(t, s.RestoreState([]byte(`{"token":"new"}`)))
	assert.Equal(t, "new", s.Token())
	assert.Equal(t, testUser(), s.User())
}

func TestRestoreStateRejectsGarbage(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.RestoreState([]byte(`not json`)))
}
