package constant

// Domain service error codes
const (
	// Studio service - Validation errors (0xx)
	ErrCodeEmptyText = "SVC001"

	// Studio service - Encoder errors (1xx)
	ErrCodeEncodeFailure = "SVC101"

	// Studio service - Download errors (2xx)
	ErrCodeNoResult      = "SVC201"
	ErrCodeInvalidResult = "SVC202"

	// Studio service - Persistence errors (3xx)
	ErrCodePersistText = "SVC301"
	ErrCodeRestoreText = "SVC302"
)

// Encoder error codes
const (
	ErrCodeQRNew    = "QR001"
	ErrCodeQRRender = "QR002"
)

// Database error codes
const (
	// General DB errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Get operation errors (1xx)
	ErrCodeDBLookup = "DB101"

	// Set operation errors (2xx)
	ErrCodeDBUpsert = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// Error types for categorization
const (
	// Domain error types
	ErrTypeValidation  = "validation"
	ErrTypeEncoder     = "encoder"
	ErrTypeDownload    = "download"
	ErrTypePersistence = "persistence"

	// Infrastructure error types
	ErrTypeDB = "db"
	ErrTypeQR = "qrcode"
)
