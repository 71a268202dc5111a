package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultDBDriver   = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultPGPort     = 5432
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "mood_journal"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultPGSSLMode  = "disable"
	defaultSQLitePath = "journal.db"

	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultAITimeout          = 60 * time.Second
	defaultAIMaxInFlight      = 8
	defaultAIBackfillInterval = 10 * time.Minute
	defaultRateRequests       = 30
	defaultRateWindow         = time.Minute

	defaultExportPrefix = "journal-exports"

	defaultServiceName = "mood-journal"
)
