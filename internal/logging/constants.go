package logging

// Standardized field names for structured logging. Using the same keys across
// the pipeline keeps log output easy to filter.
const (
	FieldParser        = "parser"
	FieldInstitution   = "institution"
	FieldTransactionID = "transaction_id"
	FieldLiabilityID   = "liability_id"
	FieldPaymentID     = "payment_id"
	FieldRuleID        = "rule_id"
	FieldMerchant      = "merchant"
	FieldCategory      = "category"
	FieldStatus        = "status"
	FieldReason        = "reason"
	FieldCount         = "count"
	FieldAccountID     = "account_id"
)
