package service

import (
	"context"
	"testing"
	"time"
)

func TestVerificationFlow(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	s := InitScheduler(client, 0)
	defer s.Stop()
	ctx := context.Background()
	const groupID, userA, userB = -9101, 200, 201

	if err := BeginVerification(ctx, client, groupID, userA, "Alice", 60); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if PendingChallenge(groupID, userA) == nil {
		t.Fatal("challenge should be pending after join")
	}
	if IsVerified(groupID, userA) {
		t.Fatal("user should not be verified yet")
	}

	// A third party cannot answer someone else's challenge
	ok, err := SubmitVerification(ctx, client, groupID, userA, userB)
	if err != nil {
		t.Fatalf("submit by wrong user: %v", err)
	}
	if ok {
		t.Fatal("submission by another user must be rejected")
	}
	if IsVerified(groupID, userA) || PendingChallenge(groupID, userA) == nil {
		t.Fatal("rejected submission must not change state")
	}

	// The challenged user verifies
	ok, err = SubmitVerification(ctx, client, groupID, userA, userA)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !ok {
		t.Fatal("submission by the challenged user should succeed")
	}
	if !IsVerified(groupID, userA) {
		t.Fatal("user should be verified")
	}
	if PendingChallenge(groupID, userA) != nil {
		t.Fatal("pending challenge should be cleared on verify")
	}
}

func TestVerificationTimeoutAfterVerifyIsNoop(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	s := InitScheduler(client, 0)
	defer s.Stop()
	ctx := context.Background()
	const groupID, userID = -9102, 200

	if err := BeginVerification(ctx, client, groupID, userID, "Alice", 1); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := SubmitVerification(ctx, client, groupID, userID, userID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Let the timeout fire; the verified user must not be kicked
	time.Sleep(1500 * time.Millisecond)
	if client.kickCount() != 0 {
		t.Error("timeout fired against a verified user")
	}
}

func TestVerificationTimeoutKicks(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	s := InitScheduler(client, 0)
	defer s.Stop()
	ctx := context.Background()
	const groupID, userID = -9103, 200

	if err := BeginVerification(ctx, client, groupID, userID, "Bob", 1); err != nil {
		t.Fatalf("begin: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if client.kickCount() > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if client.kickCount() != 1 {
		t.Fatalf("unverified user should be kicked once, got %d", client.kickCount())
	}
}
