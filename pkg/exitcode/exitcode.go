// Package exitcode provides standardized exit codes for apv
package exitcode

// Exit codes for the apv CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	FileSystemError = 4
	NetworkError    = 5
	PermissionError = 6
	NotInitialized  = 7
	DataError       = 8
	AlreadyExists   = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case PermissionError:
		return "Permission error"
	case NotInitialized:
		return "Record not initialized"
	case DataError:
		return "Malformed record"
	case AlreadyExists:
		return "Record already exists"
	default:
		return "Unknown error"
	}
}
