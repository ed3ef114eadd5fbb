package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func redisStoreForTest(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("GLUA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set GLUA_TEST_REDIS_ADDR to run redis integration test")
	}
	s := NewRedisStore(addr)
	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestShowModalOnPerSession(t *testing.T) {
	s := redisStoreForTest(t)
	ctx := context.Background()
	sessionID := fmt.Sprintf("it-modal-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = s.ResetModal(ctx, sessionID)
	})

	first, err := s.ShowModalOnce(ctx, sessionID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !first {
		t.Fatalf("first call should show the modal")
	}

	second, err := s.ShowModalOnce(ctx, sessionID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second {
		t.Fatalf("second call in the same session must not show the modal again")
	}

	if err := s.ResetModal(ctx, sessionID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	again, err := s.ShowModalOnce(ctx, sessionID)
	if err != nil {
		t.Fatalf("call after reset: %v", err)
	}
	if !again {
		t.Fatalf("reset should behave like a fresh session")
	}
}

func TestPresenceLifecycle(t *testing.T) {
	s := redisStoreForTest(t)
	ctx := context.Background()
	username := fmt.Sprintf("it-user-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = s.ClearPresence(ctx, username)
	})

	if err := s.Touch(ctx, username); err != nil {
		t.Fatalf("touch: %v", err)
	}
	online, err := s.OnlineUsers(ctx)
	if err != nil {
		t.Fatalf("online users: %v", err)
	}
	found := false
	for _, u := range online {
		if u == username {
			found = true
		}
	}
	if !found {
		t.Fatalf("touched user missing from online list: %v", online)
	}

	if err := s.ClearPresence(ctx, username); err != nil {
		t.Fatalf("clear: %v", err)
	}
	online, err = s.OnlineUsers(ctx)
	if err != nil {
		t.Fatalf("online users after clear: %v", err)
	}
	for _, u := range online {
		if u == username {
			t.Fatalf("user still online after clear")
		}
	}
}
