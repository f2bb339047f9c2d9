package service

import (
	"errors"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/repository"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/http/api"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/http/middleware"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/pkg/validator"
)

var (
	ErrUnauthenticated  = errors.New("not signed in")
	ErrPermissionDenied = errors.New("photo library permission denied")
	ErrSessionActive    = errors.New("chat session already started")
	ErrSessionStopped   = errors.New("chat session stopped")
	ErrCannotChatSelf   = errors.New("cannot start a conversation with yourself")
)

// isAuthError reports whether err means the stored credential is missing,
// expired or rejected by the server.
func isAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, api.ErrUnauthenticated) ||
		errors.Is(err, middleware.ErrNoToken) ||
		errors.Is(err, repository.ErrNoCredential) ||
		errors.Is(err, repository.ErrCorruptCredential) ||
		errors.Is(err, ws.ErrCredentialExpired)
}

// userMessage picks the text shown to the user for err.
func userMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	if errors.Is(err, ErrPermissionDenied) {
		return "Please allow access to your photo library to send images."
	}
	return api.GenericErrorMessage
}
