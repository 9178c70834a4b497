package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshot storage.
	DatabaseBackend string

	// DiffKind represents how a route changed between baseline and current.
	DiffKind string

	// Severity represents how serious a size increase is.
	Severity string
)

// All output modes supported.
const (
	MarkdownOut OutputMode = "markdown" // default
	TextOut     OutputMode = "text"
	JSONOut     OutputMode = "json"
	YAMLOut     OutputMode = "yaml"
	CSVOut      OutputMode = "csv"
	ParquetOut  OutputMode = "parquet"
)

// All snapshot store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All diff kinds supported.
const (
	NewKind       DiffKind = "new"
	RemovedKind   DiffKind = "removed"
	UnchangedKind DiffKind = "unchanged"
	DecreaseKind  DiffKind = "decrease"
	IncreaseKind  DiffKind = "increase"
)

// All severities supported. Only increases carry one.
const (
	NoSeverity       Severity = ""
	WarningSeverity  Severity = "warning"
	CriticalSeverity Severity = "critical"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	MarkdownOut: {},
	TextOut:     {},
	JSONOut:     {},
	YAMLOut:     {},
	CSVOut:      {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid snapshot store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// InternalChunkNames are substrings identifying bundler runtime chunks.
// Any chunk group whose name contains one of them is not a route.
var InternalChunkNames = []string{
	"webpack",
	"main-app",
	"main",
	"polyfills",
	"react-refresh",
	"edge-wrapper",
}
