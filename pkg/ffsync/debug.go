package ffsync

import "os"

// DebugEnabled controls whether debug-level logging is enabled. It is set
// automatically based on the FFSYNC_DEBUG environment variable, mirroring the
// teacher's MUTAGEN_DEBUG convention.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("FFSYNC_DEBUG") == "1"
}
