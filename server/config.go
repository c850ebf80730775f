package server

import "time"

// Config is the web front end configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// UploadLimit caps request bodies, and with them uploaded images, in bytes.
	UploadLimit int

	// UploadRoot is the parent directory for per-session upload directories.
	// Empty uses the system temp dir.
	UploadRoot string

	// SessionIdle ends sessions that have not submitted anything for this long.
	// Zero keeps sessions until they are ended explicitly or the server stops.
	SessionIdle time.Duration
}

// Defaults applied by New for zero values.
const (
	DefaultListenAddr  = ":8080"
	DefaultUploadLimit = 10 << 20
)
