package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldMonth      = "month"
	FieldAmount     = "amount"
	FieldSymbol     = "symbol"
	FieldBackend    = "backend"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentSheets    = "sheets"
	ComponentMarket    = "market"
	ComponentAMQP      = "amqp"
	ComponentBackend   = "backend"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentCLI       = "cli"
)

// Operations
const (
	OpCreate      = "create"
	OpList        = "list"
	OpDelete      = "delete"
	OpSetBudget   = "set_budget"
	OpSummary     = "summary"
	OpProjections = "projections"
	OpRender      = "render"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
