package handler

import (
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/timeparse"
)

func TestFloodTrackerWindow(t *testing.T) {
	tracker := newFloodTracker()
	base := time.Now()

	for i := 0; i < 5; i++ {
		tracker.record(-1, 100, base.Add(time.Duration(i)*time.Second))
	}

	// The first two messages have fallen out of the 5s window by now.
	count := tracker.record(-1, 100, base.Add(6*time.Second))
	if count != 4 {
		t.Errorf("expected 4 messages in window, got %d", count)
	}
}

func TestFloodTrackerReset(t *testing.T) {
	tracker := newFloodTracker()
	now := time.Now()
	tracker.record(-1, 100, now)
	tracker.record(-1, 100, now)
	tracker.reset(-1, 100)

	if count := tracker.record(-1, 100, now); count != 1 {
		t.Errorf("expected fresh count 1 after reset, got %d", count)
	}
}

func TestFloodTrackerIsolatesUsers(t *testing.T) {
	tracker := newFloodTracker()
	now := time.Now()
	tracker.record(-1, 100, now)
	tracker.record(-1, 100, now)

	if count := tracker.record(-1, 200, now); count != 1 {
		t.Errorf("expected independent count for second user, got %d", count)
	}
	if count := tracker.record(-2, 100, now); count != 1 {
		t.Errorf("expected independent count per group, got %d", count)
	}
}

func TestResolveTargetFromReply(t *testing.T) {
	message := telego.Message{
		ReplyToMessage: &telego.Message{From: &telego.User{ID: 42}},
	}

	userID, rest, err := resolveTarget(message, []string{"2h", "spamming"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected target 42, got %d", userID)
	}
	if len(rest) != 2 {
		t.Errorf("reply target must not consume arguments, got %v", rest)
	}
}

func TestResolveTargetFromArgument(t *testing.T) {
	userID, rest, err := resolveTarget(telego.Message{}, []string{"12345", "1h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 12345 {
		t.Errorf("expected target 12345, got %d", userID)
	}
	if len(rest) != 1 || rest[0] != "1h" {
		t.Errorf("expected remaining args [1h], got %v", rest)
	}
}

func TestResolveTargetMissing(t *testing.T) {
	if _, _, err := resolveTarget(telego.Message{}, nil); err == nil {
		t.Error("expected error without reply or user ID")
	}
	if _, _, err := resolveTarget(telego.Message{}, []string{"notanid"}); err == nil {
		t.Error("expected error for non-numeric first argument")
	}
}

func TestParseDurationAndReason(t *testing.T) {
	d, reason := parseDurationAndReason([]string{"2h", "repeated", "spam"})
	if d.Kind != timeparse.Valid || d.Seconds() != 7200 {
		t.Errorf("expected valid 2h duration, got %+v", d)
	}
	if reason != "repeated spam" {
		t.Errorf("expected reason %q, got %q", "repeated spam", reason)
	}

	// A malformed duration token folds into the reason.
	d, reason = parseDurationAndReason([]string{"2x", "spam"})
	if d.Kind == timeparse.Valid {
		t.Error("2x must not parse as a duration")
	}
	if reason != "2x spam" {
		t.Errorf("expected reason %q, got %q", "2x spam", reason)
	}

	d, reason = parseDurationAndReason(nil)
	if d.Seconds() != 0 || reason != "" {
		t.Errorf("expected empty result, got %+v %q", d, reason)
	}
}

func TestNextPreset(t *testing.T) {
	presets := []int{2, 3, 4}
	if got := nextPreset(2, presets); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := nextPreset(4, presets); got != 2 {
		t.Errorf("expected wrap to 2, got %d", got)
	}
	if got := nextPreset(99, presets); got != 2 {
		t.Errorf("off-list value should snap to first preset, got %d", got)
	}
}

func TestMemberTransitions(t *testing.T) {
	if !memberJoined(telego.MemberStatusLeft, telego.MemberStatusMember) {
		t.Error("left -> member should count as a join")
	}
	if memberJoined(telego.MemberStatusMember, telego.MemberStatusAdministrator) {
		t.Error("promotion should not count as a join")
	}
	if !memberLeft(telego.MemberStatusMember, telego.MemberStatusLeft) {
		t.Error("member -> left should count as a leave")
	}
	if memberLeft(telego.MemberStatusLeft, telego.MemberStatusBanned) {
		t.Error("banning a non-member should not count as a leave")
	}
}
