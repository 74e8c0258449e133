package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTxnID       = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldWindow      = "window"
	FieldSaveName    = "save_name"
	FieldDBPath      = "db_path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)
