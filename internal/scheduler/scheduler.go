// Package scheduler runs deferred moderation actions: timed unbans, mute
// expiries and verification timeouts. Every action fires at most once, no
// earlier than its deadline, and re-validates ledger state at fire time so
// that firing against since-reversed state reduces to a no-op.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tg-moderator/internal/crash"
	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/storage"
)

const platformCallTimeout = 10 * time.Second

// Action is a scheduled unit of future work. Actions have no cancellation
// handle: reversing the underlying ledger record is enough, the fired
// callback re-checks state and becomes a no-op.
type Action struct {
	Kind      string
	GroupID   int64
	UserID    int64
	MessageID int
	FireAt    time.Time

	// recordID links the action to its durable row, 0 when memory-only.
	recordID uint
}

// StateStore is the ledger view the scheduler consults at fire time.
type StateStore interface {
	// MuteUntil returns the tracked mute deadline and whether a mute
	// record exists for the user.
	MuteUntil(groupID, userID int64) (int64, bool)
	// DeleteMute removes the mute record; absence is not an error.
	DeleteMute(groupID, userID int64)
	// IsVerified reports whether the user completed verification.
	IsVerified(groupID, userID int64) bool
}

// Scheduler owns all pending deferred actions. The platform client and the
// state store are injected at construction; background timers must never
// reach into ambient state.
type Scheduler struct {
	client platform.Client
	store  StateStore
	repo   *storage.PendingActionRepository
	cron   *cron.Cron

	mu      sync.Mutex
	tracked map[uint]struct{}

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a scheduler. repo may be nil, in which case actions live only
// in process memory and are lost on restart.
func New(client platform.Client, store StateStore, repo *storage.PendingActionRepository) *Scheduler {
	return &Scheduler{
		client:  client,
		store:   store,
		repo:    repo,
		cron:    cron.New(),
		tracked: make(map[uint]struct{}),
		stopCh:  make(chan struct{}),
	}
}

// Start restores persisted actions and begins the periodic catch-up sweep.
// The sweep picks up rows scheduled by a previous process whose timers
// never got to fire.
func (s *Scheduler) Start(sweepInterval time.Duration) {
	if s.repo == nil {
		return
	}

	s.restoreAll()

	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", sweepInterval), s.sweep); err != nil {
		logger.Errorf("Failed to register pending action sweep: %v", err)
		return
	}
	s.cron.Start()
}

// Stop halts timers without firing them. Durable rows remain and are
// re-scheduled on the next start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.cron.Stop()
}

// Schedule registers an action. Each action is independent; a failure in
// one fired action never blocks or cancels others.
func (s *Scheduler) Schedule(action Action) {
	if s.repo != nil {
		row := &models.PendingAction{
			Kind:      action.Kind,
			GroupID:   action.GroupID,
			UserID:    action.UserID,
			MessageID: action.MessageID,
			FireAt:    action.FireAt,
		}
		if err := s.repo.Add(row); err != nil {
			logger.Warningf("Failed to persist %s action for user %d in group %d: %v",
				action.Kind, action.UserID, action.GroupID, err)
		} else {
			action.recordID = row.ID
			s.track(row.ID)
		}
	}

	s.spawn(action)
}

// restoreAll re-schedules every persisted action; overdue deadlines fire
// immediately through the same re-validation path as live timers.
func (s *Scheduler) restoreAll() {
	actions, err := s.repo.GetAll()
	if err != nil {
		logger.Warningf("Failed to load pending actions: %v", err)
		return
	}

	for _, row := range actions {
		s.scheduleRow(row)
	}

	if len(actions) > 0 {
		logger.Infof("Restored %d pending deferred actions", len(actions))
	}
}

// sweep schedules due rows that have no live timer in this process.
func (s *Scheduler) sweep() {
	due, err := s.repo.GetDue(time.Now())
	if err != nil {
		logger.Warningf("Pending action sweep failed: %v", err)
		return
	}

	for _, row := range due {
		s.scheduleRow(row)
	}
}

func (s *Scheduler) scheduleRow(row *models.PendingAction) {
	if !s.track(row.ID) {
		// A timer for this row is already running
		return
	}
	s.spawn(Action{
		Kind:      row.Kind,
		GroupID:   row.GroupID,
		UserID:    row.UserID,
		MessageID: row.MessageID,
		FireAt:    row.FireAt,
		recordID:  row.ID,
	})
}

// track marks a durable row as owned by a live timer. Returns false if the
// row was already tracked.
func (s *Scheduler) track(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracked[id]; ok {
		return false
	}
	s.tracked[id] = struct{}{}
	return true
}

func (s *Scheduler) untrack(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracked, id)
}

func (s *Scheduler) spawn(action Action) {
	crash.SafeGoroutine(fmt.Sprintf("deferred-%s", action.Kind), func() {
		timer := time.NewTimer(time.Until(action.FireAt))
		defer timer.Stop()

		select {
		case <-s.stopCh:
			// Shutting down; the durable row survives for the next start
			return
		case <-timer.C:
		}

		s.fire(action)
	})
}

// fire executes one action. Platform errors on this path are best-effort:
// logged, never retried, never surfaced to any user.
func (s *Scheduler) fire(action Action) {
	ctx, cancel := context.WithTimeout(context.Background(), platformCallTimeout)
	defer cancel()

	switch action.Kind {
	case models.ActionUnban:
		s.fireUnban(ctx, action)
	case models.ActionUnmuteExpiry:
		s.fireUnmuteExpiry(ctx, action)
	case models.ActionVerificationTimeout:
		s.fireVerificationTimeout(ctx, action)
	default:
		logger.Warningf("Unknown deferred action kind: %s", action.Kind)
	}

	if action.recordID != 0 {
		if err := s.repo.Remove(action.recordID); err != nil {
			logger.Warningf("Failed to remove pending action %d: %v", action.recordID, err)
		}
		s.untrack(action.recordID)
	}
}

func (s *Scheduler) fireUnban(ctx context.Context, action Action) {
	if err := s.client.UnbanMember(ctx, action.GroupID, action.UserID); err != nil {
		logger.Warningf("Scheduled unban of user %d in group %d failed: %v",
			action.UserID, action.GroupID, err)
		return
	}
	logger.Infof("Ban expired: unbanned user %d in group %d", action.UserID, action.GroupID)
}

func (s *Scheduler) fireUnmuteExpiry(ctx context.Context, action Action) {
	// Re-check the current record: a manual unmute already removed it, and
	// a newer mute must not be cut short by a stale timer. An until of 0
	// marks an indefinite mute that only a manual unmute may lift.
	if until, ok := s.store.MuteUntil(action.GroupID, action.UserID); ok && (until == 0 || until > time.Now().Unix()) {
		logger.Debugf("Mute for user %d in group %d was replaced, skipping expiry",
			action.UserID, action.GroupID)
		return
	}

	if err := s.client.UnrestrictMember(ctx, action.GroupID, action.UserID); err != nil {
		logger.Warningf("Scheduled unmute of user %d in group %d failed: %v",
			action.UserID, action.GroupID, err)
	}

	// Deleting an absent record is a harmless no-op
	s.store.DeleteMute(action.GroupID, action.UserID)
}

func (s *Scheduler) fireVerificationTimeout(ctx context.Context, action Action) {
	if s.store.IsVerified(action.GroupID, action.UserID) {
		logger.Debugf("User %d verified in group %d before timeout", action.UserID, action.GroupID)
		return
	}

	if err := s.client.KickMember(ctx, action.GroupID, action.UserID); err != nil {
		logger.Warningf("Verification kick of user %d in group %d failed: %v",
			action.UserID, action.GroupID, err)
		return
	}

	logger.Infof("Kicked unverified user %d from group %d", action.UserID, action.GroupID)

	if action.MessageID != 0 {
		if err := s.client.EditMessageText(ctx, action.GroupID, action.MessageID,
			"User removed: verification was not completed in time.", nil); err != nil {
			logger.Warningf("Failed to update verification message %d in group %d: %v",
				action.MessageID, action.GroupID, err)
		}
	}
}
