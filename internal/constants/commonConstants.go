package constants

type (
	APIStatus string
	Table     string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// Tables of the relational store. Change feed events carry these names.
const (
	TableProfiles         Table = "profiles"
	TableAvailabilities   Table = "availabilities"
	TableMissions         Table = "missions"
	TableFlights          Table = "flights"
	TableTrainings        Table = "trainings"
	TableUserTrainings    Table = "user_trainings"
	TableSafetyGuidelines Table = "safety_guidelines"
)

func (t Table) String() string { return string(t) }

// Cache key roots. The first element of every cache key is one of these.
const (
	KeyProfile             = "profile"
	KeyProfiles            = "profiles"
	KeyAvailabilities      = "availabilities"
	KeyTeamAvailability    = "team-availability"
	KeyTeamStats           = "team-stats"
	KeyMissions            = "missions"
	KeyMission             = "mission"
	KeyUpcomingMissions    = "upcoming-missions"
	KeyFlights             = "flights"
	KeyTrainings           = "trainings"
	KeyUserTrainings       = "user-trainings"
	KeyTrainingsWithStatus = "trainings-with-status"
	KeySafetyGuidelines    = "safety-guidelines"
)

// Storage buckets
const (
	BucketAvatars   = "avatars"
	BucketDocuments = "documents"
)

// DateLayout is the calendar-date format used for every date column
const DateLayout = "2006-01-02"

// MonthLayout keys team availability by month
const MonthLayout = "2006-01"
