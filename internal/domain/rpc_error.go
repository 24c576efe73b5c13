package domain

import "fmt"

// Payme merchant API error codes. The values are fixed by the Payme protocol.
const (
	CodeInvalidHTTPMethod = -32300
	CodeParseError        = -32700
	CodeInvalidRequest    = -32600
	CodeMethodNotFound    = -32601
	CodeInsufficientPriv  = -32504
	CodeSystemError       = -32400

	CodeInvalidAmount         = -31001
	CodeTransactionNotFound   = -31003
	CodeCannotPerform         = -31008
	CodeUnexpectedState       = -31000
	CodeInvalidAccount        = -31050
	CodeOrderAlreadyPaid      = -31051
	CodeOrderCancelled        = -31052
	CodeOrderFailed           = -31053
	CodeOrderRefunded         = -31054
	CodeInvalidOrderStatus    = -31055
	CodeTransactionInProgress = -31099
)

// RPCError is the single error shape returned to Payme.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("payme rpc error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("payme rpc error %d: %s", e.Code, e.Message)
}

func NewRPCError(code int, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

// WithData returns a copy of e carrying the offending field name.
func (e *RPCError) WithData(field string) *RPCError {
	cp := *e
	cp.Data = field
	return &cp
}

// ErrAuthorization is the only error ever returned for a failed authorization,
// whatever the underlying cause was.
func ErrAuthorization() *RPCError {
	return NewRPCError(CodeInsufficientPriv, "Authorization invalid")
}
