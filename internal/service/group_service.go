package service

import (
	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
)

// GetGroupConfig returns the settings for a group, materializing a record
// with configured defaults the first time the group is seen. Repeated calls
// return the same record.
func GetGroupConfig(groupID int64) *models.GroupConfig {
	groupConfig := groupConfigManager.Get(groupID)
	if groupConfig != nil {
		return groupConfig
	}

	if groupRepository != nil {
		dbConfig, err := groupRepository.GetGroupConfig(groupID)
		if err != nil {
			logger.Warningf("Error fetching group config from database: %v", err)
		} else if dbConfig != nil {
			groupConfigManager.Put(dbConfig)
			return dbConfig
		}
	}

	logger.Infof("Creating group config with defaults for group %d", groupID)
	groupConfig = newGroupConfig(groupID)

	groupConfigManager.Put(groupConfig)

	if groupRepository != nil {
		if err := groupRepository.CreateOrUpdateGroupConfig(groupConfig); err != nil {
			logger.Warningf("Error saving group config to database: %v", err)
		}
	}

	return groupConfig
}

func newGroupConfig(groupID int64) *models.GroupConfig {
	cfg := &models.GroupConfig{
		GroupID:             groupID,
		WarnLimit:           3,
		FloodLimit:          5,
		CaptchaTimeout:      60,
		AntiSpamEnabled:     true,
		WelcomeEnabled:      true,
		GoodbyeEnabled:      true,
		FilterEnabled:       true,
		VerificationEnabled: false,
	}

	if globalConfig != nil {
		m := globalConfig.Moderation
		cfg.WarnLimit = m.WarnLimit
		cfg.FloodLimit = m.FloodLimit
		cfg.CaptchaTimeout = m.CaptchaTimeout
		cfg.AntiSpamEnabled = m.EnableAntiSpam
		cfg.WelcomeEnabled = m.EnableWelcome
		cfg.GoodbyeEnabled = m.EnableGoodbye
		cfg.FilterEnabled = m.EnableFilter
		cfg.VerificationEnabled = m.EnableVerification
	}

	return cfg
}

// UpdateGroupConfig updates group settings in cache and database
func UpdateGroupConfig(groupConfig *models.GroupConfig) {
	groupConfigManager.Put(groupConfig)

	if groupRepository != nil {
		if err := groupRepository.CreateOrUpdateGroupConfig(groupConfig); err != nil {
			logger.Warningf("Error updating group config in database: %v", err)
		}
	}
}
