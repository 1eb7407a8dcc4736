package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

func TestUnknownSessionIsEmpty(t *testing.T) {
	s := New(20, 0, 0)
	defer s.Close()

	assert.Empty(t, s.Context("nope"))
	assert.Zero(t, s.Len("nope"))
}

func TestAppendExchangeOrdering(t *testing.T) {
	s := New(20, 0, 0)
	defer s.Close()

	s.AppendExchange("s1", "first question", "first answer")
	s.AppendExchange("s1", "second question", "second answer")

	turns := s.Context("s1")
	require.Len(t, turns, 4)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "first question", turns[0].Text)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.Equal(t, "first answer", turns[1].Text)
	assert.Equal(t, "second question", turns[2].Text)
	assert.Equal(t, "second answer", turns[3].Text)
}

func TestBoundDropsOldestPairs(t *testing.T) {
	s := New(6, 0, 0)
	defer s.Close()

	for i := 1; i <= 8; i++ {
		s.AppendExchange("s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := s.Context("s1")
	require.Len(t, turns, 6)

	// The three most recent exchanges survive, oldest first.
	assert.Equal(t, "q6", turns[0].Text)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "a8", turns[5].Text)
	assert.Equal(t, domain.RoleAssistant, turns[5].Role)
}

func TestBoundedHistoryStartsWithUserTurn(t *testing.T) {
	s := New(4, 0, 0)
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.AppendExchange("s1", "q", "a")
	}

	turns := s.Context("s1")
	require.NotEmpty(t, turns)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
}

func TestOddMaxTurnsRoundsDown(t *testing.T) {
	s := New(5, 0, 0)
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.AppendExchange("s1", "q", "a")
	}
	assert.Equal(t, 4, s.Len("s1"))
}

func TestZeroMaxTurnsUsesDefault(t *testing.T) {
	s := New(0, 0, 0)
	defer s.Close()

	for i := 0; i < 15; i++ {
		s.AppendExchange("s1", "q", "a")
	}
	assert.Equal(t, domain.DefaultMaxTurns, s.Len("s1"))
}

func TestSessionsAreIsolated(t *testing.T) {
	s := New(20, 0, 0)
	defer s.Close()

	s.AppendExchange("alice", "hello from alice", "hi alice")
	s.AppendExchange("bob", "hello from bob", "hi bob")

	require.Len(t, s.Context("alice"), 2)
	assert.Equal(t, "hello from alice", s.Context("alice")[0].Text)
	assert.Equal(t, "hello from bob", s.Context("bob")[0].Text)
}

func TestContextReturnsCopy(t *testing.T) {
	s := New(20, 0, 0)
	defer s.Close()

	s.AppendExchange("s1", "q", "a")
	turns := s.Context("s1")
	turns[0].Text = "mutated"

	assert.Equal(t, "q", s.Context("s1")[0].Text)
}

func TestConcurrentAppends(t *testing.T) {
	s := New(200, 0, 0)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AppendExchange("s1", fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
		}(i)
	}
	wg.Wait()

	turns := s.Context("s1")
	assert.Len(t, turns, 100)
	// Pairs stay adjacent even under concurrency.
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, domain.RoleUser, turns[i].Role)
		assert.Equal(t, domain.RoleAssistant, turns[i+1].Role)
		assert.Equal(t, turns[i].Text[1:], turns[i+1].Text[1:])
	}
}

func TestJanitorEvictsIdleSessions(t *testing.T) {
	s := New(20, 30*time.Millisecond, 10*time.Millisecond)
	defer s.Close()

	s.AppendExchange("idle", "q", "a")

	require.Eventually(t, func() bool {
		return s.Len("idle") == 0
	}, time.Second, 10*time.Millisecond, "idle session should be evicted")
}

func TestJanitorKeepsActiveSessions(t *testing.T) {
	s := New(20, 80*time.Millisecond, 20*time.Millisecond)
	defer s.Close()

	s.AppendExchange("busy", "q", "a")
	for i := 0; i < 5; i++ {
		time.Sleep(30 * time.Millisecond)
		_ = s.Context("busy") // touches lastAccess
	}

	assert.Equal(t, 2, s.Len("busy"))
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(20, time.Minute, time.Minute)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
