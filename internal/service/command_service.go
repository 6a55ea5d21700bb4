package service

import (
	"sort"
	"strings"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
)

// AddCustomCommand stores an admin-defined command for a group.
func AddCustomCommand(groupID int64, name, response string) {
	name = strings.ToLower(name)
	commandManager.Put(groupID, name, response)
	if commandRepository != nil {
		if err := commandRepository.Upsert(&models.CustomCommand{GroupID: groupID, Name: name, Response: response}); err != nil {
			logger.Warningf("Error persisting custom command /%s: %v", name, err)
		}
	}
}

// RemoveCustomCommand deletes a custom command.
func RemoveCustomCommand(groupID int64, name string) {
	name = strings.ToLower(name)
	commandManager.Remove(groupID, name)
	if commandRepository != nil {
		if err := commandRepository.Remove(groupID, name); err != nil {
			logger.Warningf("Error removing custom command /%s: %v", name, err)
		}
	}
}

// GetCustomCommand looks up the response for a custom command.
func GetCustomCommand(groupID int64, name string) (string, bool) {
	return commandManager.Get(groupID, strings.ToLower(name))
}

// ListCustomCommands returns the group's custom command names, sorted.
func ListCustomCommands(groupID int64) []string {
	names := commandManager.Names(groupID)
	sort.Strings(names)
	return names
}
