package service

import (
	"time"

	"tg-moderator/internal/config"
	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/scheduler"
	"tg-moderator/internal/storage"
)

var (
	groupConfigManager  = models.NewGroupConfigManager()
	warningManager      = models.NewWarningManager()
	muteManager         = models.NewMuteManager()
	statManager         = models.NewStatManager()
	verificationManager = models.NewVerificationManager()
	commandManager      = models.NewCustomCommandManager()

	groupRepository         *storage.GroupRepository
	warningRepository       *storage.WarningRepository
	muteRepository          *storage.MuteRepository
	banRepository           *storage.BanRepository
	statRepository          *storage.StatRepository
	verificationRepository  *storage.VerificationRepository
	pendingActionRepository *storage.PendingActionRepository
	commandRepository       *storage.CommandRepository

	globalConfig *config.Config
	sched        *scheduler.Scheduler
)

// Initialize initializes the service with configuration
func Initialize(cfg *config.Config) {
	globalConfig = cfg
}

// InitRepositories initializes the repositories if database is enabled and
// warms the in-memory state from persisted rows.
func InitRepositories() {
	if storage.DB == nil {
		return
	}

	groupRepository = storage.NewGroupRepository(storage.DB)
	if err := groupRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating GroupConfig table: %v", err)
	}
	warningRepository = storage.NewWarningRepository(storage.DB)
	if err := warningRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating WarningEntry table: %v", err)
	}
	muteRepository = storage.NewMuteRepository(storage.DB)
	if err := muteRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating MuteRecord table: %v", err)
	}
	banRepository = storage.NewBanRepository(storage.DB)
	if err := banRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating BanRecord table: %v", err)
	}
	statRepository = storage.NewStatRepository(storage.DB)
	if err := statRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating StatCounter table: %v", err)
	}
	verificationRepository = storage.NewVerificationRepository(storage.DB)
	if err := verificationRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating VerificationRecord table: %v", err)
	}
	pendingActionRepository = storage.NewPendingActionRepository(storage.DB)
	if err := pendingActionRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating PendingAction table: %v", err)
	}
	commandRepository = storage.NewCommandRepository(storage.DB)
	if err := commandRepository.MigrateTable(); err != nil {
		logger.Warningf("Error migrating CustomCommand table: %v", err)
	}

	warmCaches()
}

// warmCaches loads persisted moderation state into the in-memory managers.
func warmCaches() {
	if groups, err := groupRepository.GetAllGroupConfigs(); err != nil {
		logger.Warningf("Error loading group configs: %v", err)
	} else {
		for _, group := range groups {
			groupConfigManager.Put(group)
		}
		logger.Infof("Loaded %d group configs from database", len(groups))
	}

	if entries, err := warningRepository.GetAll(); err != nil {
		logger.Warningf("Error loading warnings: %v", err)
	} else {
		for _, entry := range entries {
			warningManager.Add(entry)
		}
	}

	if records, err := muteRepository.GetAll(); err != nil {
		logger.Warningf("Error loading mute records: %v", err)
	} else {
		for _, record := range records {
			muteManager.Upsert(record.GroupID, record.UserID, record.Until)
		}
	}

	if counters, err := statRepository.GetAll(); err != nil {
		logger.Warningf("Error loading stat counters: %v", err)
	} else {
		for _, counter := range counters {
			statManager.Set(counter.GroupID, counter.Key, counter.Value)
		}
	}

	if records, err := verificationRepository.GetAll(); err != nil {
		logger.Warningf("Error loading verification records: %v", err)
	} else {
		for _, record := range records {
			verificationManager.MarkVerified(record.GroupID, record.UserID, record.VerifiedAt)
		}
	}

	if cmds, err := commandRepository.GetAll(); err != nil {
		logger.Warningf("Error loading custom commands: %v", err)
	} else {
		for _, cmd := range cmds {
			commandManager.Put(cmd.GroupID, cmd.Name, cmd.Response)
		}
	}
}

// ledgerStore adapts the service state to the scheduler's fire-time view.
type ledgerStore struct{}

func (ledgerStore) MuteUntil(groupID, userID int64) (int64, bool) {
	return muteManager.Until(groupID, userID)
}

func (ledgerStore) DeleteMute(groupID, userID int64) {
	muteManager.Delete(groupID, userID)
	if muteRepository != nil {
		if err := muteRepository.Delete(groupID, userID); err != nil {
			logger.Warningf("Error deleting mute record: %v", err)
		}
	}
}

func (ledgerStore) IsVerified(groupID, userID int64) bool {
	return verificationManager.IsVerified(groupID, userID)
}

// InitScheduler builds the deferred-action scheduler with the platform
// client injected, restores persisted actions and starts the catch-up
// sweep. Must be called before any moderation operation schedules work.
func InitScheduler(client platform.Client, sweepInterval time.Duration) *scheduler.Scheduler {
	sched = scheduler.New(client, ledgerStore{}, pendingActionRepository)
	sched.Start(sweepInterval)
	return sched
}
