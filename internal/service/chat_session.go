package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/eventbus"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/transport/ws"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/pkg/validator"
)

const (
	DefaultPageSize         = 20
	DefaultTypingIdle       = 800 * time.Millisecond
	DefaultReadReceiptDelay = 500 * time.Millisecond
	DefaultTheme            = "default"

	// ImagePlaceholderBody is the text sent alongside an image message.
	ImagePlaceholderBody = "[image]"
)

// ChatAPI is the slice of the REST client a ChatSession needs.
type ChatAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	Conversation(ctx context.Context, id domain.ID) (*domain.Conversation, error)
	Messages(ctx context.Context, conversationID domain.ID, limit int, cursor *int64) (*domain.MessagePage, error)
	UpdateTheme(ctx context.Context, conversationID domain.ID, theme string) error
	DeleteConversation(ctx context.Context, conversationID domain.ID) error
	UploadImage(ctx context.Context, conversationID domain.ID, img domain.Image) (string, error)
}

// SocketProvider hands out the process wide chat connection.
type SocketProvider interface {
	Acquire(ctx context.Context) (ws.Socket, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseJoining
	PhaseActive
	PhaseLeaving
)

func (p Phase) String() string {
	switch p {
	case PhaseJoining:
		return "joining"
	case PhaseActive:
		return "active"
	case PhaseLeaving:
		return "leaving"
	default:
		return "idle"
	}
}

// ChatState is a snapshot of one conversation as the UI renders it.
type ChatState struct {
	Phase        Phase
	CurrentUser  *domain.User
	Conversation *domain.Conversation
	Peer         *domain.Participant
	// Messages is ascending by id without duplicates.
	Messages    []domain.Message
	HasMore     bool
	LoadingMore bool
	Input       string
	Theme       string

	PeerTyping bool
	PeerOnline bool
	// PresenceKnown is false until a presence event for the peer arrived.
	PresenceKnown bool
	// LastMessageRead is set by a peer read receipt and cleared whenever the
	// current user sends.
	LastMessageRead bool
}

type ChatSessionOptions struct {
	API       ChatAPI
	Sockets   SocketProvider
	Bus       *eventbus.Bus
	Presenter Presenter
	Picker    ImagePicker
	Clock     clockwork.Clock
	Logger    *zap.Logger

	PageSize         int
	TypingIdle       time.Duration
	ReadReceiptDelay time.Duration
}

// ChatSession coordinates one open conversation: it joins the room on the
// shared socket, merges history and live messages, tracks the peer's
// presence and typing, and sends on the user's behalf.
//
// Public methods never panic and report failures to the Presenter as well as
// returning them.
type ChatSession struct {
	conversationID domain.ID
	api            ChatAPI
	sockets        SocketProvider
	bus            *eventbus.Bus
	presenter      Presenter
	picker         ImagePicker
	clock          clockwork.Clock
	logger         *zap.Logger

	pageSize         int
	typingIdle       time.Duration
	readReceiptDelay time.Duration

	mu    sync.Mutex
	state ChatState
	me    *domain.User

	socket     ws.Socket
	socketSubs []eventbus.Subscription
	busSubs    []eventbus.Subscription

	// joined is the one-shot join guard for the current connection cycle.
	joined bool
	// mounted is false once Stop began; late async results are dropped.
	mounted    bool
	generation uint64
	redirected bool

	receipts    map[uint64]clockwork.Timer
	nextReceipt uint64

	stopTyping clockwork.Timer
	typingSeq  uint64
}

func NewChatSession(conversationID domain.ID, opts ChatSessionOptions) *ChatSession {
	s := &ChatSession{
		conversationID:   conversationID,
		api:              opts.API,
		sockets:          opts.Sockets,
		bus:              opts.Bus,
		presenter:        opts.Presenter,
		picker:           opts.Picker,
		clock:            opts.Clock,
		logger:           opts.Logger,
		pageSize:         opts.PageSize,
		typingIdle:       opts.TypingIdle,
		readReceiptDelay: opts.ReadReceiptDelay,
		receipts:         make(map[uint64]clockwork.Timer),
	}
	if s.presenter == nil {
		s.presenter = nopPresenter{}
	}
	if s.picker == nil {
		s.picker = deniedPicker{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.bus == nil {
		s.bus = eventbus.New(s.logger, nil)
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.typingIdle <= 0 {
		s.typingIdle = DefaultTypingIdle
	}
	if s.readReceiptDelay <= 0 {
		s.readReceiptDelay = DefaultReadReceiptDelay
	}
	s.logger = s.logger.Named("chat").With(zap.String("conversation_id", conversationID.String()))
	s.state.Theme = DefaultTheme
	return s
}

func (s *ChatSession) ConversationID() domain.ID {
	return s.conversationID
}

// State returns a copy of the current state.
func (s *ChatSession) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// PendingReadReceipts is the number of deferred mark_read emissions that
// have not fired yet.
func (s *ChatSession) PendingReadReceipts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts)
}

// Start moves the session from Idle to Active: resolve who we are, attach to
// the shared socket, join the room and load the first page of history.
func (s *ChatSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Phase != PhaseIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.state.Phase = PhaseJoining
	s.mounted = true
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	s.notify()

	me, err := s.identity(ctx)
	if err != nil {
		s.abortStart()
		if isAuthError(err) {
			s.redirectToLogin(err)
			return ErrUnauthenticated
		}
		s.fail("Chat unavailable", err)
		return err
	}

	sock, err := s.sockets.Acquire(ctx)
	if err != nil {
		s.abortStart()
		if isAuthError(err) {
			s.redirectToLogin(err)
			return ErrUnauthenticated
		}
		s.fail("Chat unavailable", err)
		return err
	}

	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	s.state.CurrentUser = me
	s.socket = sock
	s.installListeners(sock)
	// Join is fire and forget, so the session is active as soon as it is
	// requested.
	s.state.Phase = PhaseActive
	s.mu.Unlock()

	if sock.Connected() {
		s.join()
	}
	s.notify()

	return s.loadInitial(ctx, gen)
}

func (s *ChatSession) abortStart() {
	s.mu.Lock()
	s.state.Phase = PhaseIdle
	s.mounted = false
	s.mu.Unlock()
	s.notify()
}

// identity resolves the current user once per session.
func (s *ChatSession) identity(ctx context.Context) (*domain.User, error) {
	s.mu.Lock()
	me := s.me
	s.mu.Unlock()
	if me != nil {
		return me, nil
	}

	me, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if me == nil || me.ID.IsZero() {
		return nil, ErrUnauthenticated
	}

	s.mu.Lock()
	s.me = me
	s.mu.Unlock()
	return me, nil
}

// loadInitial fetches the newest history page and the conversation detail
// side by side and applies whatever arrived.
func (s *ChatSession) loadInitial(ctx context.Context, gen uint64) error {
	var (
		page    *domain.MessagePage
		conv    *domain.Conversation
		pageErr error
		convErr error
		g       errgroup.Group
	)
	g.Go(func() error {
		page, pageErr = s.api.Messages(ctx, s.conversationID, s.pageSize, nil)
		return pageErr
	})
	g.Go(func() error {
		conv, convErr = s.api.Conversation(ctx, s.conversationID)
		return convErr
	})
	err := g.Wait()

	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return nil
	}
	if convErr == nil && conv != nil {
		s.applyConversation(conv)
		for _, m := range conv.Messages {
			s.insertMessage(m)
		}
	}
	if pageErr == nil && page != nil {
		for _, m := range page.Items {
			s.insertMessage(m)
		}
		s.state.HasMore = page.HasMore()
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.fail("Could not load messages", err)
		return err
	}
	s.presenter.ScrollToEnd()
	return nil
}

func (s *ChatSession) applyConversation(conv *domain.Conversation) {
	s.state.Conversation = conv
	s.state.Theme = conv.ThemeOrDefault(DefaultTheme)
	if s.me != nil {
		s.state.Peer = conv.Peer(s.me.ID)
	}
}

// installListeners registers this session's handlers. The socket handlers
// are kept by reference so Stop removes exactly these and nothing else.
func (s *ChatSession) installListeners(sock ws.Socket) {
	s.socketSubs = append(s.socketSubs,
		sock.On(ws.EventMessageNew, ws.Typed(s.logger, ws.EventMessageNew, s.onMessage)),
		sock.On(ws.EventMessageRead, ws.Typed(s.logger, ws.EventMessageRead, s.onMessageRead)),
		sock.On(ws.EventThemeUpdated, ws.Typed(s.logger, ws.EventThemeUpdated, s.onThemeUpdated)),
	)
	s.busSubs = append(s.busSubs,
		eventbus.On(s.bus, eventbus.Connected, func(eventbus.ConnectionPayload) { s.join() }),
		eventbus.On(s.bus, eventbus.Disconnected, s.onDisconnected),
		eventbus.On(s.bus, eventbus.PeerOnline, func(p eventbus.PresencePayload) { s.onPresence(p, true) }),
		eventbus.On(s.bus, eventbus.PeerOffline, func(p eventbus.PresencePayload) { s.onPresence(p, false) }),
		eventbus.On(s.bus, eventbus.Typing, func(p eventbus.TypingPayload) { s.onTyping(p, true) }),
		eventbus.On(s.bus, eventbus.StopTyping, func(p eventbus.TypingPayload) { s.onTyping(p, false) }),
	)
}

// join emits join_conversation at most once per connection cycle.
func (s *ChatSession) join() {
	s.mu.Lock()
	if s.joined || !s.mounted || s.socket == nil {
		s.mu.Unlock()
		return
	}
	s.joined = true
	sock := s.socket
	s.mu.Unlock()

	if err := sock.Emit(ws.EventJoinConversation, s.conversationID); err != nil {
		s.logger.Warn("join failed", zap.Error(err))
		s.mu.Lock()
		s.joined = false
		s.mu.Unlock()
		return
	}
	s.logger.Debug("joined conversation")
	s.scheduleReadReceipt()
}

// onDisconnected re-arms the join guard so the next connect rejoins the room
// the server forgot about.
func (s *ChatSession) onDisconnected(p eventbus.ConnectionPayload) {
	s.mu.Lock()
	s.joined = false
	s.mu.Unlock()
	s.logger.Debug("socket disconnected", zap.String("reason", p.Reason))
}

func (s *ChatSession) onMessage(m domain.Message) {
	if !m.ConversationID.IsZero() && m.ConversationID != s.conversationID {
		return
	}

	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	inserted := s.insertMessage(m)
	fromPeer := s.me == nil || m.SenderID != s.me.ID
	s.mu.Unlock()

	if !inserted {
		return
	}
	s.notify()
	s.presenter.ScrollToEnd()
	if fromPeer {
		s.scheduleReadReceipt()
	}
}

func (s *ChatSession) onMessageRead(p ws.UserPayload) {
	s.mu.Lock()
	if !s.mounted || s.isSelf(p.UserID) || !s.ownsConversation(p.ConversationID) {
		s.mu.Unlock()
		return
	}
	s.state.LastMessageRead = true
	s.mu.Unlock()
	s.notify()
}

func (s *ChatSession) onThemeUpdated(p ws.ThemePayload) {
	if p.ConversationID != s.conversationID || p.Theme == "" {
		return
	}
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	s.setTheme(p.Theme)
	s.mu.Unlock()
	s.notify()
}

func (s *ChatSession) onPresence(p eventbus.PresencePayload, online bool) {
	s.mu.Lock()
	if !s.mounted || !s.isPeer(p.UserID) {
		s.mu.Unlock()
		return
	}
	s.state.PeerOnline = online
	s.state.PresenceKnown = true
	s.mu.Unlock()
	s.notify()
}

func (s *ChatSession) onTyping(p eventbus.TypingPayload, typing bool) {
	s.mu.Lock()
	if !s.mounted || !s.isPeer(p.UserID) || !s.ownsConversation(p.ConversationID) {
		s.mu.Unlock()
		return
	}
	s.state.PeerTyping = typing
	s.mu.Unlock()
	s.notify()
	if typing {
		s.presenter.ScrollToEnd()
	}
}

// isSelf must be called with mu held.
func (s *ChatSession) isSelf(userID domain.ID) bool {
	return s.me != nil && userID == s.me.ID
}

// isPeer accepts any other user until the conversation detail tells us who
// the peer is. Must be called with mu held.
func (s *ChatSession) isPeer(userID domain.ID) bool {
	if userID.IsZero() || s.isSelf(userID) {
		return false
	}
	return s.state.Peer == nil || s.state.Peer.UserID == userID
}

// ownsConversation treats a missing id as ours, since room scoped events do
// not always carry one. Must be called with mu held.
func (s *ChatSession) ownsConversation(id domain.ID) bool {
	return id.IsZero() || id == s.conversationID
}

// insertMessage keeps Messages sorted by id and free of duplicates. It
// reports whether m was new. Must be called with mu held.
func (s *ChatSession) insertMessage(m domain.Message) bool {
	i, found := slices.BinarySearchFunc(s.state.Messages, m.ID, func(e domain.Message, id int64) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		}
		return 0
	})
	if found {
		return false
	}
	s.state.Messages = slices.Insert(s.state.Messages, i, m)
	return true
}

// setTheme must be called with mu held.
func (s *ChatSession) setTheme(theme string) {
	s.state.Theme = theme
	if s.state.Conversation != nil {
		conv := *s.state.Conversation
		conv.Theme = &theme
		s.state.Conversation = &conv
	}
}

func (s *ChatSession) scheduleReadReceipt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return
	}

	s.nextReceipt++
	id := s.nextReceipt
	s.receipts[id] = s.clock.AfterFunc(s.readReceiptDelay, func() {
		s.mu.Lock()
		_, pending := s.receipts[id]
		delete(s.receipts, id)
		sock := s.socket
		s.mu.Unlock()

		if !pending || sock == nil {
			return
		}
		if err := sock.Emit(ws.EventMarkRead, s.conversationID); err != nil {
			s.logger.Warn("deferred read receipt failed", zap.Error(err))
		}
	})
}

// SetInput records the composer text, tells the peer we are typing and
// pushes the trailing stop_typing back by the idle window.
func (s *ChatSession) SetInput(text string) {
	s.mu.Lock()
	s.state.Input = text
	sock := s.socket
	active := s.mounted && sock != nil
	if active {
		if s.stopTyping != nil {
			s.stopTyping.Stop()
		}
		s.typingSeq++
		seq := s.typingSeq
		s.stopTyping = s.clock.AfterFunc(s.typingIdle, func() { s.fireStopTyping(seq) })
	}
	s.mu.Unlock()
	s.notify()

	if active {
		if err := sock.Emit(ws.EventTyping, s.conversationID); err != nil {
			s.logger.Debug("typing signal failed", zap.Error(err))
		}
	}
}

func (s *ChatSession) fireStopTyping(seq uint64) {
	s.mu.Lock()
	if seq != s.typingSeq || s.stopTyping == nil || !s.mounted {
		s.mu.Unlock()
		return
	}
	s.stopTyping = nil
	sock := s.socket
	s.mu.Unlock()

	if sock != nil {
		if err := sock.Emit(ws.EventStopTyping, s.conversationID); err != nil {
			s.logger.Debug("stop typing signal failed", zap.Error(err))
		}
	}
}

// cancelStopTyping drops the pending stop_typing and reports whether one was
// pending. Must be called with mu held.
func (s *ChatSession) cancelStopTyping() bool {
	if s.stopTyping == nil {
		return false
	}
	s.stopTyping.Stop()
	s.stopTyping = nil
	s.typingSeq++
	return true
}

// SendText sends the composer text. The message shows up once the server
// echoes it back as message:new.
func (s *ChatSession) SendText() error {
	s.mu.Lock()
	body := strings.TrimSpace(s.state.Input)
	if body == "" {
		s.mu.Unlock()
		return nil
	}
	if errs := validator.ValidateMessage(body); errs.HasErrors() {
		s.mu.Unlock()
		s.fail("Message not sent", errs)
		return errs
	}
	sock := s.socket
	if !s.mounted || sock == nil {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	s.state.Input = ""
	s.state.LastMessageRead = false
	wasTyping := s.cancelStopTyping()
	s.mu.Unlock()
	s.notify()

	if wasTyping {
		if err := sock.Emit(ws.EventStopTyping, s.conversationID); err != nil {
			s.logger.Debug("stop typing signal failed", zap.Error(err))
		}
	}

	err := sock.Emit(ws.EventSendMessage, ws.SendMessagePayload{
		ConversationID: s.conversationID,
		Body:           body,
		Nonce:          uuid.NewString(),
	})
	if err != nil {
		s.mu.Lock()
		if s.state.Input == "" {
			s.state.Input = body
		}
		s.mu.Unlock()
		s.notify()
		s.fail("Message not sent", err)
		return err
	}
	return nil
}

// SendImage asks for library access, lets the user pick an image, uploads
// it and sends the resulting URL.
func (s *ChatSession) SendImage(ctx context.Context) error {
	s.mu.Lock()
	sock := s.socket
	gen := s.generation
	active := s.mounted && sock != nil
	s.mu.Unlock()
	if !active {
		return ErrSessionStopped
	}

	granted, err := s.picker.RequestPermission(ctx)
	if err != nil {
		s.fail("Image not sent", err)
		return err
	}
	if !granted {
		s.fail("Permission required", ErrPermissionDenied)
		return ErrPermissionDenied
	}

	img, err := s.picker.Pick(ctx)
	if err != nil {
		s.fail("Image not sent", err)
		return err
	}
	if img == nil {
		return nil
	}

	url, err := s.api.UploadImage(ctx, s.conversationID, *img)
	if err != nil {
		s.fail("Image upload failed", err)
		return err
	}

	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	s.state.LastMessageRead = false
	s.mu.Unlock()
	s.notify()

	err = sock.Emit(ws.EventSendMessage, ws.SendMessagePayload{
		ConversationID: s.conversationID,
		Body:           ImagePlaceholderBody,
		ImageURL:       url,
		Nonce:          uuid.NewString(),
	})
	if err != nil {
		s.fail("Image not sent", err)
		return err
	}
	return nil
}

// LoadMore prepends the page older than the oldest held message. It is a
// no-op while a load is running, when history is exhausted or when nothing
// has been loaded yet.
func (s *ChatSession) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.mounted || s.state.LoadingMore || !s.state.HasMore || len(s.state.Messages) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.state.LoadingMore = true
	cursor := s.state.Messages[0].ID
	gen := s.generation
	s.mu.Unlock()
	s.notify()

	page, err := s.api.Messages(ctx, s.conversationID, s.pageSize, &cursor)

	s.mu.Lock()
	s.state.LoadingMore = false
	if err == nil && s.current(gen) {
		for _, m := range page.Items {
			s.insertMessage(m)
		}
		s.state.HasMore = page.HasMore()
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.fail("Could not load older messages", err)
		return err
	}
	return nil
}

// UpdateTheme saves the theme, applies it locally and tells the other
// participants' sessions about it.
func (s *ChatSession) UpdateTheme(ctx context.Context, theme string) error {
	theme = strings.TrimSpace(theme)
	if errs := validator.ValidateTheme(theme); errs.HasErrors() {
		s.fail("Theme not changed", errs)
		return errs
	}

	if err := s.api.UpdateTheme(ctx, s.conversationID, theme); err != nil {
		s.fail("Theme not changed", err)
		return err
	}

	s.mu.Lock()
	s.setTheme(theme)
	sock := s.socket
	s.mu.Unlock()
	s.notify()

	if sock != nil {
		err := sock.Emit(ws.EventThemeChanged, ws.ThemePayload{ConversationID: s.conversationID, Theme: theme})
		if err != nil {
			s.logger.Warn("theme broadcast failed", zap.Error(err))
		}
	}
	return nil
}

// DeleteConversation removes the conversation on the server and navigates
// away.
func (s *ChatSession) DeleteConversation(ctx context.Context) error {
	if err := s.api.DeleteConversation(ctx, s.conversationID); err != nil {
		s.fail("Conversation not deleted", err)
		return err
	}
	s.presenter.NavigateBack()
	return nil
}

// MarkRead emits mark_read right away, independent of deferred receipts.
func (s *ChatSession) MarkRead() error {
	s.mu.Lock()
	sock := s.socket
	s.mu.Unlock()
	if sock == nil {
		return ErrSessionStopped
	}
	if err := sock.Emit(ws.EventMarkRead, s.conversationID); err != nil {
		s.fail("Could not mark as read", err)
		return err
	}
	return nil
}

// Stop leaves the room and removes every listener this session installed.
// The shared socket itself stays open.
func (s *ChatSession) Stop() {
	s.mu.Lock()
	if s.state.Phase == PhaseIdle || s.state.Phase == PhaseLeaving {
		s.mu.Unlock()
		return
	}
	s.state.Phase = PhaseLeaving
	s.mounted = false
	s.joined = false
	sock := s.socket
	socketSubs, busSubs := s.socketSubs, s.busSubs
	s.socketSubs, s.busSubs = nil, nil
	for id, t := range s.receipts {
		t.Stop()
		delete(s.receipts, id)
	}
	s.cancelStopTyping()
	s.state.PeerTyping = false
	s.state.LoadingMore = false
	s.mu.Unlock()
	s.notify()

	for _, sub := range busSubs {
		s.bus.Unsubscribe(sub)
	}
	if sock != nil {
		for _, sub := range socketSubs {
			sock.Off(sub)
		}
		if err := sock.Emit(ws.EventLeaveConversation, s.conversationID); err != nil {
			s.logger.Debug("leave failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.socket = nil
	s.state.Phase = PhaseIdle
	s.mu.Unlock()
	s.notify()
}

// current reports whether results started in generation gen still apply.
// Must be called with mu held.
func (s *ChatSession) current(gen uint64) bool {
	return s.mounted && gen == s.generation
}

// snapshot must be called with mu held.
func (s *ChatSession) snapshot() ChatState {
	st := s.state
	st.Messages = slices.Clone(s.state.Messages)
	return st
}

func (s *ChatSession) notify() {
	s.mu.Lock()
	st := s.snapshot()
	s.mu.Unlock()
	s.presenter.StateChanged(st)
}

func (s *ChatSession) redirectToLogin(err error) {
	s.mu.Lock()
	already := s.redirected
	s.redirected = true
	s.mu.Unlock()

	s.logger.Warn("not authenticated", zap.Error(err))
	if !already {
		s.presenter.RedirectToLogin()
	}
}

// fail logs err and surfaces it to the user. Authentication failures send
// the user to sign in instead.
func (s *ChatSession) fail(title string, err error) {
	if isAuthError(err) {
		s.redirectToLogin(err)
		return
	}
	s.logger.Error(strings.ToLower(title), zap.Error(err))
	s.presenter.Alert(title, userMessage(err))
}
