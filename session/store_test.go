package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewStore(rdb, "gg"), mr, rdb
}

func testSession(sid string) *Session {
	now := time.Now()
	return &Session{
		SessionID: sid,
		UserID:    "u-1",
		UserName:  "test",
		Locale:    "ms",
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestStoreSaveGetExists(t *testing.T) {
	store, mr, _ := newSessionStoreTest(t)
	ctx := context.Background()
	sess := testSession("sid-1")

	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("gg:s:sid-1") {
		t.Fatal("expected session key gg:s:sid-1")
	}
	if ttl := mr.TTL("gg:s:sid-1"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	ok, err := store.Exists(ctx, "sid-1")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v; want true", ok, err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SessionID != "sid-1" || got.UserID != "u-1" || got.UserName != "test" || got.Locale != "ms" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestStoreSaveRejectsIncompleteRecords(t *testing.T) {
	store, _, _ := newSessionStoreTest(t)
	ctx := context.Background()

	cases := []struct {
		name string
		sess *Session
		ttl  time.Duration
	}{
		{"nil", nil, time.Hour},
		{"no session id", &Session{UserID: "u"}, time.Hour},
		{"no user id", &Session{SessionID: "s"}, time.Hour},
		{"zero ttl", testSession("s"), 0},
	}
	for _, tc := range cases {
		if err := store.Save(ctx, tc.sess, tc.ttl); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("%s: expected ErrInvalidSession, got %v", tc.name, err)
		}
	}
}

func TestStoreGetMissingAndExpired(t *testing.T) {
	store, _, _ := newSessionStoreTest(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sess := testSession("sid-old")
	sess.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Get(ctx, "sid-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
}

func TestStoreTTLExpiryRemovesSession(t *testing.T) {
	store, mr, _ := newSessionStoreTest(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSession("sid-ttl"), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	ok, err := store.Exists(ctx, "sid-ttl")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expected session to expire with its ttl")
	}
}

func TestDeleteSessionIdempotentAndIndex(t *testing.T) {
	store, mr, _ := newSessionStoreTest(t)
	ctx := context.Background()
	sess := testSession("sid-1")

	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if mr.Exists("gg:s:sid-1") {
		t.Fatal("session key still present")
	}
	members, _ := mr.Members("gg:u:u-1")
	for _, m := range members {
		if m == "sid-1" {
			t.Fatal("user index still references deleted session")
		}
	}
}

func TestDeleteAllForUserAndActiveIDs(t *testing.T) {
	store, mr, _ := newSessionStoreTest(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, testSession(sid), time.Hour); err != nil {
			t.Fatalf("save %s: %v", sid, err)
		}
	}
	mr.Del("gg:s:b")

	ids, err := store.ActiveSessionIDs(ctx, "u-1")
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 live sessions, got %v", ids)
	}
	if ok, _ := mr.SIsMember("gg:u:u-1", "b"); ok {
		t.Fatal("stale index entry was not pruned")
	}

	n, err := store.DeleteAllForUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deletions, got %d", n)
	}
	if mr.Exists("gg:u:u-1") {
		t.Fatal("user index survived DeleteAllForUser")
	}
	if n, err := store.DeleteAllForUser(ctx, "u-1"); err != nil || n != 0 {
		t.Fatalf("second delete all = %d, %v", n, err)
	}
}

func TestStoreRedisDown(t *testing.T) {
	store, mr, _ := newSessionStoreTest(t)
	ctx := context.Background()
	mr.Close()

	if _, err := store.Exists(ctx, "sid"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("exists: expected ErrRedisUnavailable, got %v", err)
	}
	if err := store.Save(ctx, testSession("sid"), time.Hour); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("save: expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := store.Ping(ctx); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("ping: expected ErrRedisUnavailable, got %v", err)
	}
}
