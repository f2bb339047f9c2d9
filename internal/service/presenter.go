package service

import (
	"context"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
)

// Presenter receives the UI side effects of a ChatSession. Calls arrive from
// the caller's goroutine, the socket reader and timers, never while the
// session holds its lock.
type Presenter interface {
	StateChanged(state ChatState)
	ScrollToEnd()
	Alert(title, message string)
	RedirectToLogin()
	NavigateBack()
}

// ImagePicker asks the user for an image. Pick returns nil when the user
// cancelled.
type ImagePicker interface {
	RequestPermission(ctx context.Context) (bool, error)
	Pick(ctx context.Context) (*domain.Image, error)
}

type nopPresenter struct{}

func (nopPresenter) StateChanged(ChatState) {}
func (nopPresenter) ScrollToEnd()           {}
func (nopPresenter) Alert(string, string)   {}
func (nopPresenter) RedirectToLogin()       {}
func (nopPresenter) NavigateBack()          {}

type deniedPicker struct{}

func (deniedPicker) RequestPermission(context.Context) (bool, error) { return false, nil }
func (deniedPicker) Pick(context.Context) (*domain.Image, error)      { return nil, nil }
