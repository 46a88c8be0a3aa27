package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldExpenseID  = "expense_id"
	FieldEventType  = "event_type"
)

// Components
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentExpense = "expense"
	ComponentCatalog = "catalog"
	ComponentStorage = "storage"
	ComponentEvents  = "events"
	ComponentSweeper = "sweeper"
)

// Operations
const (
	OpCreate   = "create"
	OpList     = "list"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpTotal    = "total"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpRegister = "register"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
