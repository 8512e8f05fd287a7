package constants

import "time"

const (
	AppName            = "threethings"
	Version            = "v0.1.0"
	DefaultConfigPath  = "~/.config/threethings/threethings.db"
	DefaultKeyringUser = "database-connection"
	GeneratorKeyUser   = "generator-api-key"

	// DateFormat is the calendar date key for day records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DocumentID is the fixed key of the shared application-state document
	DocumentID = "user-data"
	// LocalStorageKey is the key used by the local-only fallback store
	LocalStorageKey = "memo_app_data"
	// NotifyChannel is the Postgres LISTEN/NOTIFY channel for document changes
	NotifyChannel = "threethings_document"

	// BigTaskCount is the number of inbox entries promoted as big tasks
	BigTaskCount = 3

	// SchemaVersion is the current AppState document schema
	SchemaVersion = 2

	// Store retry constants
	SaveMaxRetries  = 4
	SaveRetryBase   = 50 * time.Millisecond
	PollInterval    = 2 * time.Second
	DayCheckEvery   = time.Minute
	MaxBackups      = 14
	BackupDirName   = "backups"
	BackupPrefix    = "threethings-"
	BackupSuffix    = ".db"
	LogFileName     = "threethings.log"
	LogDirName      = "logs"
	EnvFileName     = ".env"
	EnvPrefix       = "THREETHINGS_"
	TrayLockfile    = "threethings-notifier.lock"
	TrayIdentifier  = "com.julianstephens.threethings"
	NotificationMs  = 5000
	DefaultGenModel = "deepseek-chat"
	DefaultGenBase  = "https://api.deepseek.com"
	GenMaxTokens    = 200
	GenTemperature  = 0.7
	GenTimeout      = 20 * time.Second
)
