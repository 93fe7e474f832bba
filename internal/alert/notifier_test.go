package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-backend/internal/attendance"
)

func TestNotifier_SuppressesRepeatedZone(t *testing.T) {
	n := NewNotifier()

	ev := n.Observe("s1", "Physics", 60, 75)
	require.NotNil(t, ev)
	assert.Equal(t, KindDanger, ev.Kind)
	assert.Equal(t, "Physics", ev.SubjectName)
	assert.Equal(t, 60.0, ev.Percentage)
	assert.Equal(t, 75, ev.MinimumAttendance)

	assert.Nil(t, n.Observe("s1", "Physics", 58, 75), "still danger")
}

func TestNotifier_RearmsAfterLeavingZone(t *testing.T) {
	n := NewNotifier()

	first := n.Observe("s1", "Physics", 50, 75)
	require.NotNil(t, first)
	assert.Nil(t, n.Observe("s1", "Physics", 90, 75), "safe is silent")

	second := n.Observe("s1", "Physics", 50, 75)
	require.NotNil(t, second)
	assert.Equal(t, KindDanger, second.Kind)
}

func TestNotifier_WarningAndTransitions(t *testing.T) {
	n := NewNotifier()

	ev := n.Observe("s1", "Maths", 77, 75)
	require.NotNil(t, ev)
	assert.Equal(t, KindWarning, ev.Kind)

	ev = n.Observe("s1", "Maths", 70, 75)
	require.NotNil(t, ev)
	assert.Equal(t, KindDanger, ev.Kind)

	ev = n.Observe("s1", "Maths", 76, 75)
	require.NotNil(t, ev)
	assert.Equal(t, KindWarning, ev.Kind)
}

func TestNotifier_FirstSafeObservationIsRecorded(t *testing.T) {
	n := NewNotifier()

	assert.Nil(t, n.Observe("s1", "Chemistry", 95, 75))
	z, ok := n.Zone("s1")
	require.True(t, ok)
	assert.Equal(t, attendance.ZoneSafe, z)
}

func TestNotifier_SubjectsAreIndependent(t *testing.T) {
	n := NewNotifier()

	require.NotNil(t, n.Observe("s1", "A", 40, 75))
	require.NotNil(t, n.Observe("s2", "B", 40, 75))
	assert.Equal(t, 2, n.Len())
}

func TestNotifier_IgnoresMissingSubjectID(t *testing.T) {
	n := NewNotifier()

	assert.Nil(t, n.Observe("", "Ghost", 10, 75))
	assert.Zero(t, n.Len())
}

func TestNotifier_Forget(t *testing.T) {
	n := NewNotifier()

	require.NotNil(t, n.Observe("s1", "A", 40, 75))
	n.Forget("s1")
	_, ok := n.Zone("s1")
	assert.False(t, ok)
	assert.NotNil(t, n.Observe("s1", "A", 40, 75), "forgotten subject announces again")
}

func TestEvent_Text(t *testing.T) {
	danger := Event{Kind: KindDanger, SubjectName: "Physics", Percentage: 60, MinimumAttendance: 75}
	assert.Equal(t, "Danger zone!", danger.Title())
	assert.Equal(t, "You are BELOW the minimum attendance in Physics (60%/75%).", danger.Message())

	warn := Event{Kind: KindWarning, SubjectName: "Maths", Percentage: 77.5, MinimumAttendance: 75}
	assert.Equal(t, "Warning!", warn.Title())
	assert.Equal(t, "Your attendance in Maths is getting close to the minimum (77.5%/75%).", warn.Message())
}

func TestRegistry_IsolatesSessions(t *testing.T) {
	r := NewRegistry()

	require.NotNil(t, r.Observe("sess-a", "s1", "A", 40, 75))
	require.NotNil(t, r.Observe("sess-b", "s1", "A", 40, 75), "other session has its own memory")
	assert.Nil(t, r.Observe("sess-a", "s1", "A", 40, 75))
	assert.Equal(t, 2, r.Sessions())

	r.Drop("sess-a")
	assert.Equal(t, 1, r.Sessions())
	assert.NotNil(t, r.Observe("sess-a", "s1", "A", 40, 75))
}

func TestRegistry_ForgetAndEmptySession(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Observe("", "s1", "A", 40, 75))
	assert.Zero(t, r.Sessions())

	require.NotNil(t, r.Observe("sess", "s1", "A", 40, 75))
	s := r.Lock("sess")
	s.Forget("s1")
	s.Unlock()
	assert.NotNil(t, r.Observe("sess", "s1", "A", 40, 75))

	var none *Session
	none.Forget("s1")
	assert.Nil(t, none.Observe("s1", "A", 40, 75))
	none.Unlock()
}

func TestRegistry_ConcurrentSessions(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	events := make([]int, 8)
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := string(rune('a' + i))
			for j := 0; j < 50; j++ {
				if r.Observe(sess, "s1", "A", 40, 75) != nil {
					events[i]++
				}
			}
		}(i)
	}
	wg.Wait()

	for i, n := range events {
		assert.Equal(t, 1, n, "session %d", i)
	}
}

func TestRegistry_SweepDiscardsExpiredSessions(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Open("short", now.Add(time.Minute))
	r.Open("long", now.Add(time.Hour))
	require.NotNil(t, r.Observe("short", "s1", "A", 40, 75))
	require.NotNil(t, r.Observe("long", "s1", "A", 40, 75))

	assert.Zero(t, r.Sweep(), "nothing has expired yet")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Sessions())
	assert.Nil(t, r.Observe("long", "s1", "A", 40, 75), "live session keeps its memory")
	assert.NotNil(t, r.Observe("short", "s1", "A", 40, 75), "expired session starts over")
}

func TestRegistry_UnopenedSessionExpiresAfterTTL(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	require.NotNil(t, r.Observe("sess", "s1", "A", 40, 75))

	now = now.Add(SessionTTL - time.Second)
	assert.Zero(t, r.Sweep())

	now = now.Add(time.Second)
	assert.Equal(t, 1, r.Sweep())
	assert.Zero(t, r.Sessions())
}

func TestRegistry_RunSweepsUntilCancelled(t *testing.T) {
	r := NewRegistry()
	r.Open("gone", time.Now().Add(-time.Second))
	require.Equal(t, 1, r.Sessions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return r.Sessions() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRegistry_LockSerializesSession(t *testing.T) {
	r := NewRegistry()

	first := r.Lock("sess")
	require.NotNil(t, first)

	acquired := make(chan struct{})
	go func() {
		s := r.Lock("sess")
		defer s.Unlock()
		close(acquired)
	}()

	other := r.Lock("other")
	require.NotNil(t, other, "other sessions are not blocked")
	other.Unlock()

	select {
	case <-acquired:
		t.Fatal("second Lock returned while the session was held")
	case <-time.After(20 * time.Millisecond):
	}

	first.Unlock()
	<-acquired

	assert.Nil(t, r.Lock(""))
}
