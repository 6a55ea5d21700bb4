package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/config"
	"tg-moderator/internal/platform"
)

// fakeClient records platform calls for assertions.
type fakeClient struct {
	mu           sync.Mutex
	restricted   []int64
	unrestricted []int64
	banned       []int64
	unbanned     []int64
	kicked       []int64
	sent         []string
	edited       []string
	failRestrict bool
	failBan      bool
}

func (c *fakeClient) SendMessage(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return len(c.sent), nil
}

func (c *fakeClient) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edited = append(c.edited, text)
	return nil
}

func (c *fakeClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (c *fakeClient) RestrictMember(ctx context.Context, chatID, userID int64, untilUnix int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failRestrict {
		return errors.New("not enough rights")
	}
	c.restricted = append(c.restricted, userID)
	return nil
}

func (c *fakeClient) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unrestricted = append(c.unrestricted, userID)
	return nil
}

func (c *fakeClient) BanMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failBan {
		return errors.New("not enough rights")
	}
	c.banned = append(c.banned, userID)
	return nil
}

func (c *fakeClient) UnbanMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unbanned = append(c.unbanned, userID)
	return nil
}

func (c *fakeClient) KickMember(ctx context.Context, chatID, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
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
	return 10, nil
}

func (c *fakeClient) AnswerCallback(ctx context.Context, queryID, text string, showAlert bool) error {
	return nil
}

func (c *fakeClient) restrictCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.restricted)
}

func (c *fakeClient) unrestrictCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unrestricted)
}

func (c *fakeClient) kickCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kicked)
}

func testConfig() *config.Config {
	return &config.Config{
		Moderation: config.ModerationConfig{
			WarnLimit:          3,
			FloodLimit:         5,
			CaptchaTimeout:     60,
			EnableAntiSpam:     true,
			EnableWelcome:      true,
			EnableGoodbye:      true,
			EnableFilter:       true,
			EnableVerification: false,
		},
	}
}

func TestGetGroupConfigIsIdempotent(t *testing.T) {
	Initialize(testConfig())
	const groupID = -9001

	first := GetGroupConfig(groupID)
	second := GetGroupConfig(groupID)

	if first != second {
		t.Error("repeated calls should return the same record")
	}
	if first.WarnLimit != 3 || first.FloodLimit != 5 || first.CaptchaTimeout != 60 {
		t.Errorf("unexpected defaults: %+v", first)
	}
	if first.VerificationEnabled {
		t.Error("verification should default to off")
	}
}

func TestWarnEscalation(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	ctx := context.Background()
	const groupID, userID, adminID = -9002, 200, 100

	for want := 1; want <= 2; want++ {
		result, err := Warn(ctx, client, groupID, userID, adminID, "spam")
		if err != nil {
			t.Fatalf("warn %d: %v", want, err)
		}
		if result.Count != want || result.Escalated {
			t.Fatalf("warn %d: got %+v", want, result)
		}
	}

	result, err := Warn(ctx, client, groupID, userID, adminID, "spam")
	if err != nil {
		t.Fatalf("third warn: %v", err)
	}
	if !result.Escalated || result.Count != 3 {
		t.Fatalf("third warn should escalate, got %+v", result)
	}

	if client.restrictCount() != 1 {
		t.Error("escalation should apply exactly one platform mute")
	}

	until, ok := MuteUntil(groupID, userID)
	if !ok || until != 0 {
		t.Errorf("escalation should record an indefinite mute, got until=%d ok=%v", until, ok)
	}

	if count := WarningCount(groupID, userID); count != 0 {
		t.Errorf("warning count should reset after escalation, got %d", count)
	}

	// A fourth warn starts a fresh cycle
	result, err = Warn(ctx, client, groupID, userID, adminID, "again")
	if err != nil {
		t.Fatalf("fourth warn: %v", err)
	}
	if result.Count != 1 || result.Escalated {
		t.Errorf("fourth warn should count from 1, got %+v", result)
	}
}

func TestWarnEscalationPlatformFailure(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{failRestrict: true}
	ctx := context.Background()
	const groupID, userID, adminID = -9003, 200, 100

	Warn(ctx, client, groupID, userID, adminID, "1")
	Warn(ctx, client, groupID, userID, adminID, "2")
	if _, err := Warn(ctx, client, groupID, userID, adminID, "3"); err == nil {
		t.Fatal("escalation with failing platform should report an error")
	}

	// The count stays at the limit so the next warn retries escalation
	if count := WarningCount(groupID, userID); count != 3 {
		t.Errorf("count should remain at limit after failed escalation, got %d", count)
	}
	if _, ok := MuteUntil(groupID, userID); ok {
		t.Error("no mute record should be written when the platform call fails")
	}
}

func TestUnmuteIsIdempotent(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	ctx := context.Background()
	const groupID, userID = -9004, 200

	if _, ok := MuteUntil(groupID, userID); ok {
		t.Fatal("user should start unmuted")
	}

	if err := Mute(ctx, client, groupID, userID, 0); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if _, ok := MuteUntil(groupID, userID); !ok {
		t.Fatal("mute record missing")
	}

	if err := Unmute(ctx, client, groupID, userID); err != nil {
		t.Fatalf("first unmute: %v", err)
	}
	if err := Unmute(ctx, client, groupID, userID); err != nil {
		t.Fatalf("second unmute should not error: %v", err)
	}

	if _, ok := MuteUntil(groupID, userID); ok {
		t.Error("mute record should be absent after unmute")
	}
}

func TestTimedMuteSchedulesExpiry(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	s := InitScheduler(client, 0)
	defer s.Stop()
	ctx := context.Background()
	const groupID, userID = -9005, 200

	if err := Mute(ctx, client, groupID, userID, 1); err != nil {
		t.Fatalf("mute: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if client.unrestrictCount() > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if client.unrestrictCount() == 0 {
		t.Fatal("expiry never unrestricted the user")
	}
	if _, ok := MuteUntil(groupID, userID); ok {
		t.Error("mute record should be deleted after expiry")
	}
}

func TestBanPlatformFailureBlocksLedger(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{failBan: true}
	ctx := context.Background()
	const groupID, userID, adminID = -9006, 200, 100

	before := GetStat(groupID, "total_bans")
	if err := Ban(ctx, client, groupID, userID, adminID, "spam", 0); err == nil {
		t.Fatal("ban should report the platform failure")
	}
	if after := GetStat(groupID, "total_bans"); after != before {
		t.Error("failed ban must not increment the ban counter")
	}
}

func TestBanIncrementsStat(t *testing.T) {
	Initialize(testConfig())
	client := &fakeClient{}
	ctx := context.Background()
	const groupID, userID, adminID = -9007, 200, 100

	if err := Ban(ctx, client, groupID, userID, adminID, "spam", 0); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if got := GetStat(groupID, "total_bans"); got != 1 {
		t.Errorf("total_bans = %d, want 1", got)
	}
}
