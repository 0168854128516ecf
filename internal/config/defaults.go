package config

const (
	defaultDataDir             = "~/.local/share/rookery"
	defaultLogDir              = "~/.local/share/rookery/logs"
	defaultAPIBind             = "127.0.0.1:7393"
	defaultUser                = "local"
	defaultFetchLimit          = 50
	defaultFetchTimeoutSeconds = 15
	defaultEngineDepth         = 18
	defaultEngineTimeout       = 600
	defaultPollSeconds         = 2
	defaultWorkers             = 1
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Profile: Profile{
			User: defaultUser,
		},
		ChessCom: SourceConfig{
			FetchLimit:     defaultFetchLimit,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Lichess: SourceConfig{
			FetchLimit:     defaultFetchLimit,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Engine: Engine{
			DefaultDepth:   defaultEngineDepth,
			TimeoutSeconds: defaultEngineTimeout,
		},
		Dispatcher: Dispatcher{
			PollIntervalSeconds: defaultPollSeconds,
			Workers:             defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
