package auth

import "skywatch/crewdeck/internal/constants"

// Action names a capability that can be granted to a role
type Action string

const (
	ActionUpdateOwnProfile       Action = "profile:update_own"
	ActionViewTeamRoster         Action = "profile:list"
	ActionManageOwnAvailability  Action = "availability:manage_own"
	ActionCreateMission          Action = "mission:create"
	ActionUpdateMission          Action = "mission:update"
	ActionDeleteMission          Action = "mission:delete"
	ActionLogFlight              Action = "flight:log"
	ActionManageAnyFlight        Action = "flight:manage_any"
	ActionManageTrainings        Action = "training:manage"
	ActionManageCertifications   Action = "certification:manage"
	ActionManageSafetyGuidelines Action = "safety:manage"
)

var pilotActions = []Action{
	ActionUpdateOwnProfile,
	ActionManageOwnAvailability,
	ActionLogFlight,
}

var chiefActions = []Action{
	ActionUpdateOwnProfile,
	ActionViewTeamRoster,
	ActionManageOwnAvailability,
	ActionCreateMission,
	ActionUpdateMission,
	ActionDeleteMission,
	ActionLogFlight,
	ActionManageAnyFlight,
	ActionManageTrainings,
	ActionManageCertifications,
	ActionManageSafetyGuidelines,
}

// Capabilities lists every action the role may perform
func Capabilities(role constants.Role) []Action {
	switch role {
	case constants.RoleChief:
		return append([]Action(nil), chiefActions...)
	case constants.RolePilot:
		return append([]Action(nil), pilotActions...)
	}
	return nil
}

// CanPerform is the single source of truth for role gating. The HTTP layer
// uses it to hide chief-only routes and the repositories call it again
// before every write.
func CanPerform(role constants.Role, action Action) bool {
	for _, a := range Capabilities(role) {
		if a == action {
			return true
		}
	}
	return false
}
