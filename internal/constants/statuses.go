package constants

type (
	AvailabilityStatus string
	MissionStatus      string
	GuidelinePriority  string
	GuidelineCategory  string
)

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityTentative   AvailabilityStatus = "tentative"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityTentative:
		return true
	}
	return false
}

const (
	MissionPlanned    MissionStatus = "planned"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionCancelled  MissionStatus = "cancelled"
)

// Valid only checks the label. Any valid label may follow any other.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionPlanned, MissionInProgress, MissionCompleted, MissionCancelled:
		return true
	}
	return false
}

const (
	PriorityLow      GuidelinePriority = "low"
	PriorityMedium   GuidelinePriority = "medium"
	PriorityHigh     GuidelinePriority = "high"
	PriorityCritical GuidelinePriority = "critical"
)

// Rank orders priorities, higher is more urgent. Unknown values rank 0.
func (p GuidelinePriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

func (p GuidelinePriority) Valid() bool { return p.Rank() > 0 }

const (
	CategoryPreFlight   GuidelineCategory = "pre_flight"
	CategoryFlight      GuidelineCategory = "flight"
	CategoryEmergency   GuidelineCategory = "emergency"
	CategoryMaintenance GuidelineCategory = "maintenance"
	CategoryGeneral     GuidelineCategory = "general"
)

// GuidelineCategories lists the categories in display order
var GuidelineCategories = []GuidelineCategory{
	CategoryPreFlight,
	CategoryFlight,
	CategoryEmergency,
	CategoryMaintenance,
	CategoryGeneral,
}
