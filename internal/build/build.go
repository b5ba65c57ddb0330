package build

// Overridden at build time via -ldflags.
var (
	ShortVersion = "unknown"
	LongVersion  = "unknown"
)
