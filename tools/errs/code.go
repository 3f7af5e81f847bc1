package errs

// Business error codes. 1xxx auth, 2xxx user, 3xxx conversation/message.
const (
	CodeTokenInvalid         = 1001
	CodeTokenExpired         = 1002
	CodeInvalidCredentials   = 1003
	CodeEmailTaken           = 1004
	CodeUserNotFound         = 2001
	CodeNoFieldsToUpdate     = 2002
	CodeConversationNotFound = 3001
	CodeNotParticipant       = 3002
	CodeEmptyMessage         = 3003
	CodeReceiverNotFound     = 3004
)

var (
	ErrTokenInvalid         = NewCodeError(CodeTokenInvalid, "invalid token")
	ErrTokenExpired         = NewCodeError(CodeTokenExpired, "token expired")
	ErrInvalidCredentials   = NewCodeError(CodeInvalidCredentials, "invalid credentials")
	ErrEmailTaken           = NewCodeError(CodeEmailTaken, "email is already in use")
	ErrUserNotFound         = NewCodeError(CodeUserNotFound, "user not found")
	ErrNoFieldsToUpdate     = NewCodeError(CodeNoFieldsToUpdate, "no fields to update")
	ErrConversationNotFound = NewCodeError(CodeConversationNotFound, "conversation not found")
	ErrNotParticipant       = NewCodeError(CodeNotParticipant, "you are not a participant in this conversation")
	ErrEmptyMessage         = NewCodeError(CodeEmptyMessage, "content or media is required")
	ErrReceiverNotFound     = NewCodeError(CodeReceiverNotFound, "receiver user not found")
)
