package logging

// Field names
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBudgetID   = "budget_id"
	FieldCount      = "count"
	FieldEvent      = "event"
)

// Components
const (
	ComponentCLI    = "cli"
	ComponentAPI    = "api"
	ComponentStore  = "store"
	ComponentDaemon = "daemon"
	ComponentAMQP   = "amqp"
	ComponentTUI    = "tui"
)

// Operations
const (
	OpSync    = "sync"
	OpPublish = "publish"
	OpMigrate = "migrate"
	OpLoad    = "load"
	OpSave    = "save"
	OpLogin   = "login"
)
