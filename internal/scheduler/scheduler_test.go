package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
)

// fakeClient records platform calls instead of hitting Telegram.
type fakeClient struct {
	mu        sync.Mutex
	unbanned  []int64
	unmuted   []int64
	kicked    []int64
	muted     []int64
	edits     []int
	failUnban bool
	failKick  bool
}

func (c *fakeClient) SendMessage(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) (int, error) {
	return 1, nil
}

func (c *fakeClient) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, messageID)
	return nil
}

func (c *fakeClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (c *fakeClient) RestrictMember(ctx context.Context, chatID, userID int64, untilUnix int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = append(c.muted, userID)
	return nil
}

func (c *fakeClient) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmuted = append(c.unmuted, userID)
	return nil
}

func (c *fakeClient) BanMember(ctx context.Context, chatID, userID int64) error {
	return nil
}

func (c *fakeClient) UnbanMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failUnban {
		return errors.New("user not found")
	}
	c.unbanned = append(c.unbanned, userID)
	return nil
}

func (c *fakeClient) KickMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failKick {
		return errors.New("not enough rights")
	}
	c.kicked = append(c.kicked, userID)
	return nil
}

func (c *fakeClient) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (c *fakeClient) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (c *fakeClient) GetMember(ctx context.Context, chatID, userID int64) (*platform.Member, error) {
	return &platform.Member{UserID: userID, Status: telego.MemberStatusMember}, nil
}

func (c *fakeClient) GetAdministrators(ctx context.Context, chatID int64) ([]*platform.Member, error) {
	return nil, nil
}

func (c *fakeClient) GetMemberCount(ctx context.Context, chatID int64) (int, error) {
	return 0, nil
}

func (c *fakeClient) AnswerCallback(ctx context.Context, queryID, text string, showAlert bool) error {
	return nil
}

func (c *fakeClient) unmuteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unmuted)
}

func (c *fakeClient) kickCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kicked)
}

func (c *fakeClient) unbanCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unbanned)
}

// fakeStore is an in-memory StateStore.
type fakeStore struct {
	mu       sync.Mutex
	mutes    map[int64]int64
	verified map[int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mutes:    make(map[int64]int64),
		verified: make(map[int64]bool),
	}
}

func (s *fakeStore) MuteUntil(groupID, userID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.mutes[userID]
	return until, ok
}

func (s *fakeStore) DeleteMute(groupID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutes, userID)
}

func (s *fakeStore) IsVerified(groupID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified[userID]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestUnmuteExpiryFires(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()
	store.mutes[200] = time.Now().Add(20 * time.Millisecond).Unix()

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnmuteExpiry,
		GroupID: -100,
		UserID:  200,
		FireAt:  time.Now().Add(20 * time.Millisecond),
	})

	waitFor(t, time.Second, func() bool { return client.unmuteCount() == 1 })

	if _, ok := store.MuteUntil(-100, 200); ok {
		t.Error("mute record should be deleted after expiry")
	}
}

func TestManualUnmuteRacesScheduledExpiry(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()
	store.mutes[200] = time.Now().Add(30 * time.Millisecond).Unix()

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnmuteExpiry,
		GroupID: -100,
		UserID:  200,
		FireAt:  time.Now().Add(30 * time.Millisecond),
	})

	// Manual unmute before the timer fires
	store.DeleteMute(-100, 200)
	client.UnrestrictMember(context.Background(), -100, 200)

	waitFor(t, time.Second, func() bool { return client.unmuteCount() >= 2 })

	// No mute was re-applied and nothing errored
	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.muted) != 0 {
		t.Errorf("expiry re-applied a mute: %v", client.muted)
	}
}

func TestReplacedMuteSkipsStaleExpiry(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()
	// Replaced by a longer mute before the first expiry fires
	store.mutes[200] = time.Now().Add(time.Hour).Unix()

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnmuteExpiry,
		GroupID: -100,
		UserID:  200,
		FireAt:  time.Now().Add(10 * time.Millisecond),
	})

	time.Sleep(100 * time.Millisecond)

	if client.unmuteCount() != 0 {
		t.Error("stale expiry should not unmute a user with a live longer mute")
	}
	if _, ok := store.MuteUntil(-100, 200); !ok {
		t.Error("replacement mute record should survive the stale expiry")
	}
}

func TestIndefiniteMuteSurvivesStaleExpiry(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()
	// Escalated to an indefinite mute while a timed expiry is still pending
	store.mutes[200] = 0

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnmuteExpiry,
		GroupID: -100,
		UserID:  200,
		FireAt:  time.Now().Add(10 * time.Millisecond),
	})

	time.Sleep(100 * time.Millisecond)

	if client.unmuteCount() != 0 {
		t.Error("stale expiry must not lift an indefinite mute")
	}
	if until, ok := store.MuteUntil(-100, 200); !ok || until != 0 {
		t.Error("indefinite mute record must survive the stale expiry")
	}
}

func TestVerificationTimeoutKicksPendingUser(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:      models.ActionVerificationTimeout,
		GroupID:   -100,
		UserID:    300,
		MessageID: 42,
		FireAt:    time.Now().Add(10 * time.Millisecond),
	})

	waitFor(t, time.Second, func() bool { return client.kickCount() == 1 })

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.edits) != 1 || client.edits[0] != 42 {
		t.Errorf("challenge message should be edited after kick, got %v", client.edits)
	}
}

func TestVerificationTimeoutNoopWhenVerified(t *testing.T) {
	client := &fakeClient{}
	store := newFakeStore()
	store.verified[300] = true

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionVerificationTimeout,
		GroupID: -100,
		UserID:  300,
		FireAt:  time.Now().Add(10 * time.Millisecond),
	})

	time.Sleep(100 * time.Millisecond)

	if client.kickCount() != 0 {
		t.Error("verified user must not be kicked by a stale timeout")
	}
}

func TestVerificationKickFailureSkipsMessageEdit(t *testing.T) {
	client := &fakeClient{failKick: true}
	store := newFakeStore()

	s := New(client, store, nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:      models.ActionVerificationTimeout,
		GroupID:   -100,
		UserID:    300,
		MessageID: 42,
		FireAt:    time.Now().Add(10 * time.Millisecond),
	})

	time.Sleep(100 * time.Millisecond)

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.edits) != 0 {
		t.Errorf("challenge message must not be edited when the kick fails, got %v", client.edits)
	}
}

func TestUnbanFires(t *testing.T) {
	client := &fakeClient{}
	s := New(client, newFakeStore(), nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnban,
		GroupID: -100,
		UserID:  400,
		FireAt:  time.Now().Add(10 * time.Millisecond),
	})

	waitFor(t, time.Second, func() bool { return client.unbanCount() == 1 })
}

func TestFailingActionDoesNotBlockOthers(t *testing.T) {
	client := &fakeClient{failUnban: true}
	store := newFakeStore()

	s := New(client, store, nil)
	defer s.Stop()

	now := time.Now()
	s.Schedule(Action{Kind: models.ActionUnban, GroupID: -100, UserID: 1, FireAt: now.Add(10 * time.Millisecond)})
	s.Schedule(Action{Kind: models.ActionUnmuteExpiry, GroupID: -100, UserID: 2, FireAt: now.Add(10 * time.Millisecond)})

	waitFor(t, time.Second, func() bool { return client.unmuteCount() == 1 })
}

func TestOverdueActionFiresImmediately(t *testing.T) {
	client := &fakeClient{}
	s := New(client, newFakeStore(), nil)
	defer s.Stop()

	s.Schedule(Action{
		Kind:    models.ActionUnban,
		GroupID: -100,
		UserID:  500,
		FireAt:  time.Now().Add(-time.Minute),
	})

	waitFor(t, time.Second, func() bool { return client.unbanCount() == 1 })
}
