package constants

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment variables
	EnvTimezone             = "HABITUAL_TIMEZONE"
	EnvDBConnection         = "HABITUAL_DB_CONNECTION"
	EnvFirestoreCredentials = "HABITUAL_FIRESTORE_CREDENTIALS"
	EnvFirestoreCredsFile   = "HABITUAL_FIRESTORE_CREDENTIALS_FILE"

	// Firestore collection holding habit documents
	HabitsCollection = "habits"

	// Rolling window used to decide whether a habit is on track
	OnTrackWindowDays = 30
)
