package constant

// Request context keys
const (
	RequestIDKey = "request_id"
)

// HTTP header names
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
)

// Session cookie
const (
	SessionCookieName = "qrstudio_session"
	SessionNamespace  = "SESSION"
	CLISessionID      = "cli"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain     = "domain"
	CtxGenerate   = "Generate"
	CtxDownload   = "Download"
	CtxClear      = "Clear"
	CtxRestore    = "Restore"
	CtxUpdateForm = "UpdateForm"
	CtxSessions   = "Sessions"

	// Infrastructure context names
	CtxDB     = "db"
	CtxGet    = "Get"
	CtxSet    = "Set"
	CtxClose  = "Close"
	CtxEncode = "Encode"
	CtxAPI    = "api"

	// General context names
	CtxRouter      = "Router"
	CtxMain        = "Main"
	CtxGenerateCLI = "GenerateCLI"
	CtxPage        = "Page"
	CtxState       = "State"
)

// Data field keys
const (
	// Service data fields
	DataService    = "service"
	DataSessionID  = "session_id"
	DataSessions   = "sessions"
	DataText       = "text"
	DataTextLength = "text_length"
	DataSize       = "size"
	DataForeground = "foreground"
	DataBackground = "background"
	DataLevel      = "level"
	DataFilename   = "filename"
	DataBytes      = "bytes"
	DataPreview    = "preview"
	DataRevision   = "revision"

	DataLastRevision = "last_revision"

	// Database data fields
	DataPath         = "path"
	DataElapsed      = "elapsed"
	DataRows         = "rows"
	DataSQL          = "sql"
	DataData         = "data"
	DataScope        = "scope"
	DataKey          = "key"
	DataRowsAffected = "rows_affected"

	// API data fields
	DataMethod      = "method"
	DataStatus      = "status"
	DataLatency     = "latency"
	DataRemoteAddr  = "remote_addr"
	DataUserAgent   = "user_agent"
	DataHost        = "host"
	DataPort        = "port"
	DataDBPath      = "db_path"
	DataEnvironment = "environment"
	DataOutput      = "output"
)

// User-facing messages
const (
	ErrEmptyText    = "Please enter text or URL to generate a QR code."
	ErrNoResult     = "no QR code has been generated"
	ErrInvalidImage = "stored image is not a PNG data URI"

	MsgPlaceholder   = "Your QR preview will appear here"
	MsgGenerating    = "Generating…"
	MsgGenerateError = "Failed to generate QR"
	MsgNoContent     = "No content"
	MsgPreviewing    = "Previewing: "
)

// Error codes
const (
	ErrCodeAPIDecodeRequest  = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAPIDownload       = "API003"
	ErrCodeAppDBInit         = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
	ErrCodeAppWriteFile      = "APP004"
)

// Error types
const (
	ErrTypeDomain = "domain"
	ErrTypeAPI    = "api"
	ErrTypeApp    = "application"
)

// API routes
const (
	RouteIndex       = "/"
	RouteState       = "/api/state"
	RouteForm        = "/api/form"
	RouteGenerate    = "/api/generate"
	RouteDownload    = "/api/download"
	RouteClear       = "/api/clear"
	RouteHealthcheck = "/health"
)

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStdout    = "stdout"
	LogOutputStderr    = "stderr"
)

// Message constants for application
const (
	MsgApplicationStarting = "Application starting"
	MsgFailedToInitDB      = "Failed to initialize database"
	MsgServerStarting      = "Server starting"
	MsgServerFailedToStart = "Server failed to start"
	MsgServerShuttingDown  = "Server shutting down"
	MsgServerShutdownError = "Error during server shutdown"
	MsgServerStopped       = "Server stopped"
	MsgRequestReceived     = "Request received"
	MsgRequestCompleted    = "Request completed"
	MsgSettingUpRoutes     = "Setting up API routes"
	MsgHealthcheckRequest  = "Handling healthcheck request"
	MsgHealthy             = "Healthy"
	MsgImageSaved          = "QR image saved"
)
