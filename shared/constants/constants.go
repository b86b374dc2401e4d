package constants

// Action names for the single-endpoint router.
const (
	ActionPageBrowser = "page_browser"
	ActionAPIView     = "api_view"
	ActionAssetCSS    = "asset_css"
	ActionAssetJS     = "asset_js"
	ActionHealthz     = "healthz"
	ActionReadyz      = "readyz"
)

// Defaults shared by the handler and the CLI.
const (
	DefaultActionParam = "action"
	DefaultBasePath    = "/"
	DefaultHTTPPort    = 8080
	DefaultAPIBaseURL  = "http://localhost:5000"
	DefaultDevAPIPort  = 5000
	DefaultDevDriver   = DriverSQLite
	DefaultDevDSN      = "file:slidebase.db?_foreign_keys=on"
)

// Supported database drivers for the dev API.
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "slidebase"
