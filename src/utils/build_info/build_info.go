package build_info

// Set during build with ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
)
