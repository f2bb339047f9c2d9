package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/service"
)

const chatHelp = `/more           load older messages
/theme <token>  change the conversation theme
/image <path>   send an image file
/read           mark the conversation read
/delete         delete the conversation
/quit           leave`

// chat runs an interactive session until the user quits, the input ends or
// the session navigates away.
func chat(ctx context.Context, a *app, cmd *cobra.Command, id domain.ID) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	presenter := newTerminalPresenter(out, cancel)
	picker := &filePicker{}
	session := a.newSession(id, presenter, picker)

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	st := session.State()
	if st.Peer != nil {
		fmt.Fprintf(out, "chatting with %s (type /help for commands)\n", st.Peer.User.Name)
	}

	lines := make(chan string)
	go readLines(ctx, cmd.InOrStdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit := handleLine(ctx, a, session, picker, out, line)
			if quit {
				return nil
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

// handleLine applies one line of input. Failures are already shown by the
// presenter, so they are only logged here.
func handleLine(ctx context.Context, a *app, s *service.ChatSession, picker *filePicker, out io.Writer, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch cmd {
	case "":
		return false
	case "/quit", "/q":
		return true
	case "/help":
		fmt.Fprintln(out, chatHelp)
	case "/more":
		err = s.LoadMore(ctx)
	case "/theme":
		err = s.UpdateTheme(ctx, arg)
	case "/image":
		picker.queue(arg)
		err = s.SendImage(ctx)
	case "/read":
		if err = s.MarkRead(); err == nil {
			err = a.conversations.MarkRead(ctx, s.ConversationID())
		}
	case "/delete":
		err = s.DeleteConversation(ctx)
	default:
		s.SetInput(line)
		err = s.SendText()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Debug("chat command failed", zap.String("command", cmd), zap.Error(err))
	}
	return false
}
