package realtime

import (
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
)

// Subscriptions scoped to one user or one mission.

func AvailabilitiesForUser(userID string) Spec {
	return Spec{
		Table:  constants.TableAvailabilities,
		Filter: Eq("user_id", userID),
		Invalidate: []cache.Key{
			cache.NewKey(constants.KeyAvailabilities, userID),
			cache.NewKey(constants.KeyTeamAvailability),
			cache.NewKey(constants.KeyTeamStats),
		},
	}
}

func FlightsForMission(missionID string) Spec {
	return Spec{
		Table:  constants.TableFlights,
		Filter: Eq("mission_id", missionID),
		Invalidate: []cache.Key{
			cache.NewKey(constants.KeyFlights, missionID),
			cache.NewKey(constants.KeyTeamStats),
		},
	}
}

func CertificationsForUser(userID string) Spec {
	return Spec{
		Table:  constants.TableUserTrainings,
		Filter: Eq("user_id", userID),
		Invalidate: []cache.Key{
			cache.NewKey(constants.KeyUserTrainings, userID),
			cache.NewKey(constants.KeyTrainingsWithStatus),
		},
	}
}

func ProfileForUser(userID string) Spec {
	return Spec{
		Table:  constants.TableProfiles,
		Filter: Eq("id", userID),
		Invalidate: []cache.Key{
			cache.NewKey(constants.KeyProfile, userID),
			cache.NewKey(constants.KeyProfiles),
		},
	}
}

// GlobalSpecs are mounted once per process for the unfiltered tables
func GlobalSpecs() []Spec {
	return []Spec{
		{
			Table:      constants.TableAvailabilities,
			Invalidate: []cache.Key{cache.NewKey(constants.KeyTeamAvailability)},
		},
		{
			Table: constants.TableMissions,
			Invalidate: []cache.Key{
				cache.NewKey(constants.KeyMissions),
				cache.NewKey(constants.KeyMission),
				cache.NewKey(constants.KeyUpcomingMissions),
				cache.NewKey(constants.KeyTeamStats),
			},
		},
		{
			Table:      constants.TableFlights,
			Invalidate: []cache.Key{cache.NewKey(constants.KeyTeamStats)},
		},
		{
			Table: constants.TableTrainings,
			Invalidate: []cache.Key{
				cache.NewKey(constants.KeyTrainings),
				cache.NewKey(constants.KeyTrainingsWithStatus),
			},
		},
		{
			Table:      constants.TableSafetyGuidelines,
			Invalidate: []cache.Key{cache.NewKey(constants.KeySafetyGuidelines)},
		},
	}
}
