package usecase

import "errors"

// DomainError é erro de regra de negócio (vira 4xx).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura ou integração (vira 5xx).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// Códigos usados pelos handlers para escolher o status HTTP.
const (
	CodeValidation         = "validation_error"
	CodeInvalidStatus      = "invalid_status"
	CodeDealNotFound       = "deal_not_found"
	CodeChatNotFound       = "chat_not_found"
	CodeInviteNotFound     = "invite_not_found"
	CodeInviteNotPending   = "invite_not_pending"
	CodeInvalidModule      = "invalid_module"
	CodeInvalidCredentials = "invalid_credentials"
	CodeProfileNotFound    = "profile_not_found"
	CodeNotConfigured      = "not_configured"
	CodeDocumentNotFound   = "document_not_found"
	CodeUnsupportedFile    = "unsupported_file"
	CodeThreadNotFound     = "thread_not_found"
	CodeThreadArchived     = "thread_archived"

	CodeGatewayUnavailable  = "gateway_unavailable"
	CodeGatewayUnauthorized = "gateway_unauthorized"
	CodeIntegration         = "integration_error"
	CodeDatabase            = "database_error"
)

func validationError(msg string) error {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func databaseError(msg string, err error) error {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}
