package service

import "errors"

// Kind classifies service errors for callers that need to react to the
// category rather than the exact failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnprocessable
	KindConflict
	KindUnauthorized
	KindForbidden
)

// Error is a classified service error. Values are compared by identity, so
// wrap them with fmt.Errorf("%w: ...") to add detail.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

// Validation errors
var (
	ErrInvalidQuantity      = newError(KindValidation, "INVALID_QUANTITY", "quantity must be at least 1")
	ErrMissingCustomer      = newError(KindValidation, "MISSING_CUSTOMER", "customer name is required")
	ErrInvalidPayment       = newError(KindValidation, "INVALID_PAYMENT", "initial payment cannot be negative")
	ErrPaymentExceedsTotal  = newError(KindValidation, "PAYMENT_EXCEEDS_TOTAL", "initial payment exceeds sale total")
	ErrInvalidAmount        = newError(KindValidation, "INVALID_AMOUNT", "payment amount must be positive")
	ErrAmountExceedsBalance = newError(KindValidation, "AMOUNT_EXCEEDS_BALANCE", "payment amount exceeds sale balance")
	ErrInvalidFilter        = newError(KindValidation, "INVALID_FILTER", "invalid filter")
	ErrInvalidDish          = newError(KindValidation, "INVALID_DISH", "dish name is required and price must be positive")
	ErrInvalidInventoryItem = newError(KindValidation, "INVALID_INVENTORY_ITEM", "invalid inventory item")
	ErrInvalidRegistration  = newError(KindValidation, "INVALID_REGISTRATION", "a valid email and a password of at least 6 characters are required")
	ErrInvalidRole          = newError(KindValidation, "INVALID_ROLE", "unknown role")
)

// Reference errors
var (
	ErrDishNotFound          = newError(KindNotFound, "DISH_NOT_FOUND", "dish not found")
	ErrDishInactive          = newError(KindUnprocessable, "DISH_INACTIVE", "dish is not active")
	ErrSaleNotFound          = newError(KindNotFound, "SALE_NOT_FOUND", "sale not found")
	ErrInventoryItemNotFound = newError(KindNotFound, "INVENTORY_ITEM_NOT_FOUND", "inventory item not found")
	ErrProfileNotFound       = newError(KindNotFound, "PROFILE_NOT_FOUND", "user not found")
)

// Access errors
var (
	ErrEmailTaken         = newError(KindConflict, "EMAIL_TAKEN", "email is already registered")
	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	ErrAccountInactive    = newError(KindForbidden, "ACCOUNT_INACTIVE", "account is pending approval or deactivated")
	ErrAdminProtected     = newError(KindForbidden, "ADMIN_PROTECTED", "administrators cannot be deactivated, demoted or deleted")
)

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal for store and other unexpected failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err, or "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
