package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/service"
)

// terminalPresenter renders session updates as plain lines. It prints each
// message once, whatever order history and live pushes arrive in.
type terminalPresenter struct {
	out  io.Writer
	done context.CancelFunc

	mu      sync.Mutex
	printed map[int64]bool
	typing  bool
	online  bool
	known   bool
	theme   string
}

func newTerminalPresenter(out io.Writer, done context.CancelFunc) *terminalPresenter {
	return &terminalPresenter{out: out, done: done, printed: map[int64]bool{}}
}

func (p *terminalPresenter) StateChanged(st service.ChatState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var me domain.ID
	if st.CurrentUser != nil {
		me = st.CurrentUser.ID
	}
	peerName := "peer"
	if st.Peer != nil && st.Peer.User.Name != "" {
		peerName = st.Peer.User.Name
	}

	for _, m := range st.Messages {
		if p.printed[m.ID] {
			continue
		}
		p.printed[m.ID] = true
		who := peerName
		if m.SenderID == me {
			who = "you"
		}
		body := m.Body
		if m.ImageURL != nil {
			body = fmt.Sprintf("%s %s", body, *m.ImageURL)
		}
		fmt.Fprintf(p.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), who, body)
	}

	if st.PresenceKnown && (!p.known || st.PeerOnline != p.online) {
		state := "offline"
		if st.PeerOnline {
			state = "online"
		}
		fmt.Fprintf(p.out, "* %s is %s\n", peerName, state)
	}
	p.known, p.online = st.PresenceKnown, st.PeerOnline

	if st.PeerTyping && !p.typing {
		fmt.Fprintf(p.out, "* %s is typing...\n", peerName)
	}
	p.typing = st.PeerTyping

	if p.theme != "" && st.Theme != p.theme {
		fmt.Fprintf(p.out, "* theme changed to %s\n", st.Theme)
	}
	p.theme = st.Theme
}

func (p *terminalPresenter) ScrollToEnd() {}

func (p *terminalPresenter) Alert(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "! %s: %s\n", title, message)
}

func (p *terminalPresenter) RedirectToLogin() {
	p.mu.Lock()
	fmt.Fprintln(p.out, "! session expired, run `chat login <token>`")
	p.mu.Unlock()
	p.done()
}

func (p *terminalPresenter) NavigateBack() {
	p.done()
}

// filePicker hands the session the file queued by the /image command.
type filePicker struct {
	mu   sync.Mutex
	next string
}

func (f *filePicker) queue(path string) {
	f.mu.Lock()
	f.next = path
	f.mu.Unlock()
}

func (f *filePicker) RequestPermission(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next != "", nil
}

func (f *filePicker) Pick(context.Context) (*domain.Image, error) {
	f.mu.Lock()
	path := f.next
	f.next = ""
	f.mu.Unlock()

	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("image %s does not exist", path)
		}
		return nil, fmt.Errorf("reading image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.Image{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        bytes.NewReader(data),
	}, nil
}
