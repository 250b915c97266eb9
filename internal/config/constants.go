package config

import "time"

// Application metadata
const (
	AppName = "barracuda"
	Version = "0.1.0"

	ConfigFile = "barracuda.yaml"
)

// Logging defaults
const (
	LogLevel  = "info"
	LogFormat = "console"
)

// Boot supervisor barrier timeouts
const (
	SyncBarrierTimeout = 5 * time.Second
	LLIBarrierTimeout  = 2500 * time.Millisecond
	HLIBarrierTimeout  = 2500 * time.Millisecond
)

// Timer service defaults
const (
	TimerIdleSleep = 10 * time.Second
)

// Passageway command defaults
const (
	DefaultAutoswitchMs uint32 = 5000
	DefaultTooLongMs    uint32 = 30000
	SigGrantedMs        uint32 = 3000
	SigDeniedMs         uint32 = 1000
)

// Whitelist evaluator defaults
const (
	AccessDeniedSignalMs = 1000
)

// Profile ticker interval
const (
	ProfileTickInterval = 5 * time.Second
)

// Bus / queue defaults
const (
	DeadRefGCThreshold = 10
	EventLogDrainMax   = 20
)

// Health sampler interval
const (
	HealthSampleInterval = 30 * time.Second
)

// Event log ring buffer capacity
const (
	EventLogCapacity = 256
)

// File watch debounce for hot-reloaded persisted stores
const (
	FileWatchDebounce = 500 * time.Millisecond
)
