package ws

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
)

var (
	ErrClosed            = errors.New("socket closed")
	ErrSendBufferFull    = errors.New("socket send buffer full")
	ErrCredentialExpired = errors.New("stored credential has expired")
)

// Socket is the shared chat connection as seen by its users. Listeners
// receive the raw json.RawMessage payload; wrap them with Typed to decode.
type Socket interface {
	On(evt EventType, h eventbus.Handler) eventbus.Subscription
	Off(sub eventbus.Subscription) bool
	Emit(evt EventType, payload any) error
	Connected() bool
}

// Typed adapts fn into a listener that decodes the raw payload into T. An
// absent payload yields the zero T; a malformed one is logged and dropped.
func Typed[T any](logger *zap.Logger, evt EventType, fn func(T)) eventbus.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(payload any) {
		var v T
		raw, _ := payload.(json.RawMessage)
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &v); err != nil {
				logger.Warn("ws: dropping malformed payload",
					zap.String("event", string(evt)),
					zap.Error(err),
				)
				return
			}
		}
		fn(v)
	}
}
