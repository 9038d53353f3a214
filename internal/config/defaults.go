package config

const (
	defaultDataDir                   = "~/.local/share/filmtrack"
	defaultDatabaseFile              = "film.db"
	defaultQuarantineDirName         = ".sync-conflicts"
	defaultSynchronous               = "NORMAL"
	defaultBusyTimeoutMS             = 5000
	defaultCacheSizeKiB              = 32000
	defaultMmapSizeBytes             = 268435456
	defaultPageSize                  = 4096
	defaultWALAutocheckpointPages    = 1000
	defaultCheckpointIntervalSeconds = 300
	defaultLockFileName              = "film.db.lock"
	defaultLockHeartbeatSeconds      = 10
	defaultLockStaleSeconds          = 60
	defaultListLimit                 = 100
	defaultMaxListLimit              = 1000
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultLogMaxSizeMB              = 10
	defaultLogMaxBackups             = 5
	defaultLogMaxAgeDays             = 30
)

var defaultIgnorePatterns = []string{"*backup*"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		// DataDir and LogDir stay empty so normalize can apply the
		// FILMTRACK_DATA_DIR override and derive the log directory from it.
		Paths: Paths{
			DatabaseFile: defaultDatabaseFile,
		},
		Storage: Storage{
			Synchronous:               defaultSynchronous,
			BusyTimeoutMS:             defaultBusyTimeoutMS,
			CacheSizeKiB:              defaultCacheSizeKiB,
			MmapSizeBytes:             defaultMmapSizeBytes,
			PageSize:                  defaultPageSize,
			WALAutocheckpointPages:    defaultWALAutocheckpointPages,
			CheckpointIntervalSeconds: defaultCheckpointIntervalSeconds,
		},
		Lock: Lock{
			FileName:                 defaultLockFileName,
			HeartbeatIntervalSeconds: defaultLockHeartbeatSeconds,
			StaleThresholdSeconds:    defaultLockStaleSeconds,
		},
		Sync: Sync{
			AutoCleanup:    true,
			IgnorePatterns: append([]string(nil), defaultIgnorePatterns...),
		},
		Inventory: Inventory{
			DefaultListLimit: defaultListLimit,
			MaxListLimit:     defaultMaxListLimit,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
