package config

const (
	defaultDataDir         = "./data"
	defaultStoreType       = StoreOpenList
	defaultTMDBLanguage    = "zh-CN"
	defaultTMDBBaseURL     = "https://api.themoviedb.org/3"
	defaultIntervalSeconds = 120
	defaultRequestTimeout  = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 20
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 3
	defaultWecomUserID     = "@all"
)

// Store backends.
const (
	StoreOpenList = "openlist"
	StoreLocal    = "local"
)

// Push channels. An empty channel disables notifications.
const (
	ChannelNone     = ""
	ChannelTelegram = "telegram"
	ChannelWecom    = "wecom"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Type:    defaultStoreType,
			Refresh: true,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			Language:     defaultTMDBLanguage,
			IncludeAdult: true,
		},
		Push: Push{
			Params: map[string]string{},
		},
		Sync: Sync{
			IntervalSeconds: defaultIntervalSeconds,
			RequestTimeout:  defaultRequestTimeout,
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
