package service

import (
	"tg-moderator/internal/logger"
)

// IncrementStat bumps a per-group counter. Counters only ever grow.
func IncrementStat(groupID int64, key string, delta int64) {
	statManager.Increment(groupID, key, delta)
	if statRepository != nil {
		if err := statRepository.Increment(groupID, key, delta); err != nil {
			logger.Warningf("Error persisting stat %s for group %d: %v", key, groupID, err)
		}
	}
}

// GetStat returns a single counter value.
func GetStat(groupID int64, key string) int64 {
	return statManager.Get(groupID, key)
}

// GetAllStats returns every counter for a group.
func GetAllStats(groupID int64) map[string]int64 {
	return statManager.All(groupID)
}
