package constants

import "time"

const (
	DirectoryCacheTTL  = 5 * time.Minute
	PlayerCacheTTL     = 1 * time.Minute
	CacheIdleEviction  = 10 * time.Minute
	CacheSweepInterval = 1 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// Extra attempts on top of the initial upstream call, with
	// exponential delay between them.
	RetryMaxAttempts = 2
	RetryBaseDelay   = 1 * time.Second
	RetryMaxDelay    = 5 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DirectoryPageSize = 20
)
