package services

import "errors"

// Business errors surfaced by the service layer. Handlers map these to
// HTTP statuses and stable error codes.
var (
	ErrDuplicateEmail         = errors.New("email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDeactivated     = errors.New("account has been deactivated")
	ErrNotVerified            = errors.New("email address is not verified")
	ErrApprovalPending        = errors.New("mentor application is still under review")
	ErrApprovalRejected       = errors.New("mentor application was rejected")
	ErrLoginPaused            = errors.New("account login has been paused by an administrator")
	ErrInvalidOrExpiredCode   = errors.New("invalid or expired verification code")
	ErrAlreadyVerified        = errors.New("account is already verified")
	ErrOAuthAccount           = errors.New("password reset is not available for social login accounts")
	ErrNoResetRequest         = errors.New("no password reset request found")
	ErrResetCodeUsed          = errors.New("reset code has already been used")
	ErrResetCodeExpired       = errors.New("reset code has expired")
	ErrTooManyAttempts        = errors.New("too many incorrect attempts")
	ErrBelowMinimumWithdrawal = errors.New("withdrawal amount is below the minimum")
	ErrInsufficientBalance    = errors.New("insufficient available balance")
	ErrMethodNotFound         = errors.New("payout method not found")
	ErrInvalidPayoutState     = errors.New("payout request is not in a processable state")
	ErrAlreadyCompleted       = errors.New("payout request has already been completed")
	ErrInvalidStatus          = errors.New("invalid status value")
	ErrNotFound               = errors.New("record not found")
)

var errorCodes = map[error]string{
	ErrDuplicateEmail:         "DUPLICATE_EMAIL",
	ErrInvalidCredentials:     "INVALID_CREDENTIALS",
	ErrAccountDeactivated:     "ACCOUNT_DEACTIVATED",
	ErrNotVerified:            "NOT_VERIFIED",
	ErrApprovalPending:        "APPROVAL_PENDING",
	ErrApprovalRejected:       "APPROVAL_REJECTED",
	ErrLoginPaused:            "LOGIN_PAUSED",
	ErrInvalidOrExpiredCode:   "INVALID_OR_EXPIRED_CODE",
	ErrAlreadyVerified:        "ALREADY_VERIFIED",
	ErrOAuthAccount:           "OAUTH_ACCOUNT",
	ErrNoResetRequest:         "NO_RESET_REQUEST",
	ErrResetCodeUsed:          "RESET_CODE_USED",
	ErrResetCodeExpired:       "RESET_CODE_EXPIRED",
	ErrTooManyAttempts:        "TOO_MANY_ATTEMPTS",
	ErrBelowMinimumWithdrawal: "BELOW_MINIMUM_WITHDRAWAL",
	ErrInsufficientBalance:    "INSUFFICIENT_BALANCE",
	ErrMethodNotFound:         "METHOD_NOT_FOUND",
	ErrInvalidPayoutState:     "INVALID_PAYOUT_STATE",
	ErrAlreadyCompleted:       "ALREADY_COMPLETED",
	ErrInvalidStatus:          "INVALID_STATUS",
	ErrNotFound:               "NOT_FOUND",
}

// ErrorCode returns the stable machine-readable code for a business
// error, or VALIDATION_ERROR for anything unrecognized.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "VALIDATION_ERROR"
}
