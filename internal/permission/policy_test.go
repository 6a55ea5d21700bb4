package permission

import (
	"testing"

	"github.com/mymmrac/telego"
)

func TestCanActDeniesSelf(t *testing.T) {
	d := CanAct(100, Target{UserID: 100, Status: telego.MemberStatusMember}, false)
	if d != SelfTarget {
		t.Errorf("got %v, want SelfTarget", d)
	}
	if d.Allow() {
		t.Error("SelfTarget should not allow")
	}
}

func TestCanActDeniesBot(t *testing.T) {
	d := CanAct(100, Target{UserID: 200, IsBot: true, Status: telego.MemberStatusMember}, false)
	if d != BotTarget {
		t.Errorf("got %v, want BotTarget", d)
	}
}

func TestCanActNonOwnerVersusAdmin(t *testing.T) {
	d := CanAct(100, Target{UserID: 200, Status: telego.MemberStatusAdministrator}, false)
	if d != TargetIsAdmin {
		t.Errorf("got %v, want TargetIsAdmin", d)
	}
}

func TestCanActNonOwnerVersusCreator(t *testing.T) {
	d := CanAct(100, Target{UserID: 200, Status: telego.MemberStatusCreator}, false)
	if d != TargetIsOwner {
		t.Errorf("got %v, want TargetIsOwner", d)
	}
}

func TestCanActOwnerMayTargetAnyone(t *testing.T) {
	targets := []Target{
		{UserID: 200, Status: telego.MemberStatusMember},
		{UserID: 201, Status: telego.MemberStatusAdministrator},
		{UserID: 202, Status: telego.MemberStatusCreator},
	}
	for _, target := range targets {
		if d := CanAct(100, target, true); !d.Allow() {
			t.Errorf("owner acting on %+v denied with %v", target, d)
		}
	}
}

func TestCanActAllowsRegularMember(t *testing.T) {
	if d := CanAct(100, Target{UserID: 200, Status: telego.MemberStatusMember}, false); !d.Allow() {
		t.Errorf("non-owner admin acting on regular member denied with %v", d)
	}
}

func TestDenialReasons(t *testing.T) {
	for _, d := range []Decision{SelfTarget, BotTarget, TargetIsOwner, TargetIsAdmin} {
		if d.Reason() == "" {
			t.Errorf("decision %v has empty reason", d)
		}
	}
	if Allowed.Reason() != "" {
		t.Error("Allowed should have no denial reason")
	}
}
