package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/service"
)

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "session_test"
	return config
}

func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewManager(opts...)
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		sess, err := manager.Create("test-session", "classic", config)
		require.NoError(t, err)
		assert.Equal(t, "test-session", sess.ID)
		assert.Equal(t, "classic", sess.ConfigID)
		assert.Equal(t, "session_test", sess.Snapshot().ConfigName)
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		sess, err := manager.Create("", "classic", config)
		require.NoError(t, err)
		assert.Len(t, sess.ID, 4)
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "classic", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "classic", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", "classic", config)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid config", func(t *testing.T) {
		invalid := createTestConfig()
		invalid.BoardLength = 2
		_, err := manager.Create("invalid-test", "broken", invalid)
		assert.Error(t, err)
		assert.False(t, manager.sessionExists("invalid-test"))
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager()
	created, err := manager.Create("Get-Test", "classic", createTestConfig())
	require.NoError(t, err)

	for _, id := range []string{"Get-Test", "get-test", "GET-TEST"} {
		got, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got)
	}

	_, err = manager.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("goc", "classic", config)
	require.NoError(t, err)
	second, err := manager.GetOrCreate("GOC", "classic", config)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager()
	_, err := manager.Create("del", "classic", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("DEL"))
	assert.ErrorIs(t, manager.Delete("del"), ErrSessionNotFound)
	assert.Zero(t, manager.Count())
}

func TestManager_List(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	for _, id := range []string{"one", "two", "three"} {
		_, err := manager.Create(id, "classic", config)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	ids := []string{}
	for _, s := range manager.List() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"one", "two", "three"}, ids)
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	_, err := manager.Create("expired", "classic", config)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = manager.Create("active", "classic", config)
	require.NoError(t, err)

	removed := manager.CleanupExpiredSessions(10 * time.Millisecond)
	assert.Equal(t, 1, removed)

	_, err = manager.Get("expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("active")
	assert.NoError(t, err)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager()
	sess, err := manager.Create("access-test", "classic", createTestConfig())
	require.NoError(t, err)
	original := sess.LastAccessedAt()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, manager.UpdateLastAccessed("ACCESS-TEST"))
	assert.True(t, sess.LastAccessedAt().After(original))

	assert.ErrorIs(t, manager.UpdateLastAccessed("nope"), ErrSessionNotFound)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i%50)
			if _, err := manager.GetOrCreate(id, "classic", config); err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
			_, _ = manager.Get(id)
			_ = manager.UpdateLastAccessed(id)
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error during concurrent access: %v", err)
	}
	assert.Equal(t, 50, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	s1, err := manager.Create("iso-1", "classic", config)
	require.NoError(t, err)
	s2, err := manager.Create("iso-2", "classic", config)
	require.NoError(t, err)

	ok, _, entry, err := s1.Act("deploy", func(g engine.Engine, _ *service.HistoryEntry) (bool, error) {
		return g.Deploy(engine.Warpling, engine.White, 0, 0, true)
	}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, entry.Seq)

	assert.Len(t, s1.Snapshot().Units, 1)
	assert.Empty(t, s2.Snapshot().Units)
	assert.Len(t, s1.History(), 1)
	assert.Empty(t, s2.History())
}

func TestManager_SharedAbilityRegistry(t *testing.T) {
	reg := engine.DefaultAbilities()
	manager := newTestManager(WithAbilities(reg))

	config := createTestConfig()
	config.Abilities = map[string][]string{"warpling": {"shout"}}
	sess, err := manager.Create("abilities", "classic", config)
	require.NoError(t, err)

	// registered after the game was created
	require.NoError(t, reg.Register("shout", engine.AbilityFunc(func(*engine.Game, *engine.Unit, engine.Args) (bool, error) {
		return true, nil
	})))

	ok, _, _, err := sess.Act("ability", func(g engine.Engine, _ *service.HistoryEntry) (bool, error) {
		if _, err := g.Deploy(engine.Warpling, engine.White, 1, 1, true); err != nil {
			return false, err
		}
		return g.UseAbility(1, "shout", nil)
	}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := newTestManager()
	config := createTestConfig()

	generated := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := manager.Create("", "classic", config)
		require.NoError(t, err)
		assert.False(t, generated[sess.ID], "duplicate session ID %s", sess.ID)
		generated[sess.ID] = true
		assert.Regexp(t, `^[0-9a-f]{4}$`, sess.ID)
	}
}
