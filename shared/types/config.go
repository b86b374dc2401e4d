package types

import "time"

// Config contains the configuration for the admin handler and the dev API.
type Config struct {
	// HTTPPort is the port the admin UI listens on
	HTTPPort int
	// BasePath is the mount path of the admin handler
	BasePath string
	// ActionParam is the query parameter used for actions
	ActionParam string
	// SessionSecret signs CSRF tokens
	SessionSecret string

	// APIBaseURL is the address of the /db backend
	APIBaseURL string
	// APITimeout bounds each backend request. Zero disables the timeout.
	APITimeout time.Duration

	// FileManagement enables upload, delete and clear
	FileManagement bool
	// UnionColumns builds record headers from all rows
	UnionColumns bool
	// DisplayTimezone is an IANA zone name for upload timestamps
	DisplayTimezone string

	DevAPIPort   int
	DevAPIDriver string
	DevAPIDSN    string
}
