package errs

import "net/http"

// HTTPStatus maps a business code to the response status the handlers
// use; anything unknown is a server error.
func HTTPStatus(code int) int {
	switch code {
	case CodeTokenInvalid, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeInvalidCredentials, CodeEmailTaken, CodeNoFieldsToUpdate, CodeEmptyMessage:
		return http.StatusBadRequest
	case CodeNotParticipant:
		return http.StatusForbidden
	case CodeUserNotFound, CodeConversationNotFound, CodeReceiverNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
