package finddups

// Defaults
const (
	DefaultHashAlgorithm = "md5"
	DefaultHashWorkers   = 4
	DefaultHashBuffer    = "2MiB"
	DefaultOutputFormat  = FormatHuman
	DefaultColorMode     = ColorAuto
)

// Output formats
const (
	FormatHuman  = "human"
	FormatFdupes = "fdupes"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
)

// Colour modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Exit statuses
const (
	ExitOK          = 0
	ExitReadFailure = 1
	ExitUsage       = 2
	ExitAborted     = 130 // 128 + SIGINT
)

// Failure reasons, worded as the shell would report them
const (
	ReasonNotFound    = "File not found"
	ReasonIsDirectory = "Is a directory"
	ReasonPermission  = "Permission denied"
)

// Debug flag names accepted by SetDebugFlags
const (
	DebugExpand  = "expand"
	DebugHash    = "hash"
	DebugWorkers = "workers"
	DebugReport  = "report"
)

// Worker bounds
const (
	MinHashWorkers = 1
	MaxHashWorkers = 64
)

// maxIovecs is the conservative IOV_MAX used when writing reports (golang/go#58623)
const maxIovecs = 1024
