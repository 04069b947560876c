package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// ErrorCode identifies a cart engine failure class. The set is closed;
// UI collaborators switch on it to pick copy and placement.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeGetCart      ErrorCode = "GET_CART_ERROR"
	CodeAddToCart    ErrorCode = "ADD_TO_CART_ERROR"
	CodeUpdateItem   ErrorCode = "UPDATE_ITEM_ERROR"
	CodeRemoveItem   ErrorCode = "REMOVE_ITEM_ERROR"
	CodeClearCart    ErrorCode = "CLEAR_CART_ERROR"
	CodeLoadCart     ErrorCode = "LOAD_CART_ERROR"
	CodeMigrateCart  ErrorCode = "MIGRATE_CART_ERROR"
	CodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"
)

// CartError is the single error shape the engine exposes. Transport and
// validation failures are wrapped into it before they reach the store.
type CartError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *CartError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewCartError(code ErrorCode, message string) *CartError {
	return &CartError{Code: code, Message: message}
}

// AsCartError unwraps err into a *CartError, or wraps it under the
// given fallback code when it is some other error.
func AsCartError(err error, fallback ErrorCode) *CartError {
	if err == nil {
		return nil
	}
	var ce *CartError
	if errors.As(err, &ce) {
		return ce
	}
	return &CartError{Code: fallback, Message: err.Error()}
}
