package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
)

type emitted struct {
	Type    ws.EventType
	Payload any
}

// fakeSocket stands in for ws.Conn. deliver runs listeners synchronously on
// the caller's goroutine, the way the read pump does.
type fakeSocket struct {
	listeners *eventbus.Emitter[ws.EventType]

	mu        sync.Mutex
	connected bool
	emits     []emitted
	emitErr   error
}

func newFakeSocket(connected bool) *fakeSocket {
	return &fakeSocket{
		listeners: eventbus.NewEmitter[ws.EventType](nil, nil),
		connected: connected,
	}
}

func (f *fakeSocket) On(evt ws.EventType, h eventbus.Handler) eventbus.Subscription {
	return f.listeners.Subscribe(evt, h)
}

func (f *fakeSocket) Off(sub eventbus.Subscription) bool {
	return f.listeners.Unsubscribe(sub)
}

func (f *fakeSocket) Emit(evt ws.EventType, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emitErr != nil {
		return f.emitErr
	}
	f.emits = append(f.emits, emitted{Type: evt, Payload: payload})
	return nil
}

func (f *fakeSocket) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeSocket) deliver(t *testing.T, evt ws.EventType, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	f.listeners.Publish(evt, json.RawMessage(data))
}

func (f *fakeSocket) count(evt ws.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emits {
		if e.Type == evt {
			n++
		}
	}
	return n
}

func (f *fakeSocket) last(evt ws.EventType) (emitted, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.emits) - 1; i >= 0; i-- {
		if f.emits[i].Type == evt {
			return f.emits[i], true
		}
	}
	return emitted{}, false
}

func (f *fakeSocket) types() []ws.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ws.EventType, 0, len(f.emits))
	for _, e := range f.emits {
		out = append(out, e.Type)
	}
	return out
}

type fakeSockets struct {
	socket *fakeSocket
	err    error
}

func (f *fakeSockets) Acquire(context.Context) (ws.Socket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.socket, nil
}

type fakeAPI struct {
	mu sync.Mutex

	me    *domain.User
	meErr error
	calls map[string]int

	conv    *domain.Conversation
	convErr error
	// pages is keyed by cursor, 0 for the newest page.
	pages    map[int64]*domain.MessagePage
	pagesErr error
	// pageGate, when set, blocks Messages until it is closed.
	pageGate chan struct{}

	themeErr  error
	deleteErr error
	uploadURL string
	uploadErr error
	uploaded  []domain.Image
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		me:    &domain.User{ID: "u1", Name: "Me"},
		calls: map[string]int{},
		conv: &domain.Conversation{
			ID: "42",
			Participants: []domain.Participant{
				{ConversationID: "42", UserID: "u1"},
				{ConversationID: "42", UserID: "u2", User: domain.UserProfile{Name: "Ann"}},
			},
		},
		pages: map[int64]*domain.MessagePage{},
	}
}

func (f *fakeAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) Me(context.Context) (*domain.User, error) {
	f.record("me")
	return f.me, f.meErr
}

func (f *fakeAPI) Conversation(context.Context, domain.ID) (*domain.Conversation, error) {
	f.record("conversation")
	return f.conv, f.convErr
}

func (f *fakeAPI) Messages(ctx context.Context, _ domain.ID, _ int, cursor *int64) (*domain.MessagePage, error) {
	f.record("messages")
	if f.pageGate != nil {
		<-f.pageGate
	}
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	var key int64
	if cursor != nil {
		key = *cursor
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pages[key]; ok {
		return p, nil
	}
	return &domain.MessagePage{}, nil
}

func (f *fakeAPI) UpdateTheme(context.Context, domain.ID, string) error {
	f.record("theme")
	return f.themeErr
}

func (f *fakeAPI) DeleteConversation(context.Context, domain.ID) error {
	f.record("delete")
	return f.deleteErr
}

func (f *fakeAPI) UploadImage(_ context.Context, _ domain.ID, img domain.Image) (string, error) {
	f.record("upload")
	f.mu.Lock()
	f.uploaded = append(f.uploaded, img)
	f.mu.Unlock()
	return f.uploadURL, f.uploadErr
}

type alert struct {
	Title, Message string
}

type fakePresenter struct {
	mu        sync.Mutex
	states    int
	scrolls   int
	alerts    []alert
	redirects int
	backs     int
}

func (p *fakePresenter) StateChanged(ChatState) {
	p.mu.Lock()
	p.states++
	p.mu.Unlock()
}

func (p *fakePresenter) ScrollToEnd() {
	p.mu.Lock()
	p.scrolls++
	p.mu.Unlock()
}

func (p *fakePresenter) Alert(title, message string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, alert{title, message})
	p.mu.Unlock()
}

func (p *fakePresenter) RedirectToLogin() {
	p.mu.Lock()
	p.redirects++
	p.mu.Unlock()
}

func (p *fakePresenter) NavigateBack() {
	p.mu.Lock()
	p.backs++
	p.mu.Unlock()
}

func (p *fakePresenter) alertCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alerts)
}

func (p *fakePresenter) redirectCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.redirects
}

type fakePicker struct {
	granted bool
	image   *domain.Image
}

func (p fakePicker) RequestPermission(context.Context) (bool, error) { return p.granted, nil }
func (p fakePicker) Pick(context.Context) (*domain.Image, error)     { return p.image, nil }
