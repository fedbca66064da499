package config

const (
	EnvConfig = "TOLLGATE_CONFIG"
	EnvDB     = "TOLLGATE_DB"

	defaultConfigPath         = "~/.tollgate/config.toml"
	defaultDBPath             = "~/.tollgate/tollgate.db"
	defaultLockPath           = "~/.tollgate/tollgate.lock"
	defaultAPIBind            = "127.0.0.1:7488"
	defaultAPIReadTimeout     = 10
	defaultAPIWriteTimeout    = 30
	defaultAPIShutdownTimeout = 5
	defaultSweepInterval      = 300
	defaultNtfyTimeout        = 10
	defaultLogFormat          = "text"
	defaultLogLevel           = "info"
	defaultServiceName        = "tollgate"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Database: Database{Path: defaultDBPath},
		Workflow: Workflow{
			EligibilityCheck:  true,
			SupersedeSiblings: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Inbox:          true,
			Log:            true,
		},
		SLA: SLA{SweepInterval: defaultSweepInterval},
		API: API{
			Bind:            defaultAPIBind,
			ReadTimeout:     defaultAPIReadTimeout,
			WriteTimeout:    defaultAPIWriteTimeout,
			ShutdownTimeout: defaultAPIShutdownTimeout,
		},
		Daemon:  Daemon{LockPath: defaultLockPath},
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
		Tracing: Tracing{ServiceName: defaultServiceName},
	}
}
