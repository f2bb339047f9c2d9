package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/domain"
	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/service"
)

var (
	configPath string
	inboxLimit int

	rootCmd = &cobra.Command{
		Use:           "chat",
		Short:         "Terminal client for PetZone shop chat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	loginCmd = &cobra.Command{
		Use:   "login [token]",
		Short: "Store the bearer token used for chat",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runLogin),
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and local notifications",
		Args:  cobra.NoArgs,
		RunE:  withApp(runLogout),
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE:  withApp(runWhoami),
	}
	conversationsCmd = &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE:    withApp(runConversations),
	}
	startCmd = &cobra.Command{
		Use:   "start [userId]",
		Short: "Open or create the conversation with a user and chat",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runStart),
	}
	openCmd = &cobra.Command{
		Use:   "open [conversationId]",
		Short: "Chat in an existing conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runOpen),
	}
	inboxCmd = &cobra.Command{
		Use:   "inbox",
		Short: "Show locally stored unread notifications",
		Args:  cobra.NoArgs,
		RunE:  withApp(runInbox),
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CHAT_CONFIG"), "path to a YAML config file")
	inboxCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 20, "maximum notifications to show")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, conversationsCmd, startCmd, openCmd, inboxCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp builds the component graph for one command and tears it down
// afterwards.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, cmd, args)
	}
}

func runLogin(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := a.auth.Login(ctx, args[0])
	if err != nil {
		return err
	}
	if id.Subject.IsZero() {
		fmt.Fprintln(cmd.OutOrStdout(), "token stored")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", id.Subject)
	return nil
}

func runLogout(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	id, err := a.auth.Identity(ctx)
	if err != nil {
		return err
	}
	if id.ExpiresAt != nil {
		fmt.Fprintf(out, "token expires %s\n", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}

	me, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s <%s> id=%s\n", me.Name, me.Email, me.ID)
	return nil
}

func runConversations(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	rows, err := a.conversations.ListConversations(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWITH\tUNREAD\tLAST MESSAGE")
	for _, r := range rows {
		peer := "-"
		if r.Peer != nil {
			peer = r.Peer.User.Name
		}
		last := ""
		if r.LastMessage != nil {
			last = r.LastMessage.Body
			if last == "" && r.LastMessage.ImageURL != nil {
				last = service.ImagePlaceholderBody
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Conversation.ID, peer, r.Unread, last)
	}
	return tw.Flush()
}

func runStart(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	conv, err := a.conversations.GetOrCreateConversation(ctx, domain.ID(args[0]))
	if err != nil {
		return err
	}
	return chat(ctx, a, cmd, conv.ID)
}

func runOpen(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	return chat(ctx, a, cmd, domain.ID(args[0]))
}

func runInbox(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	items, err := a.inbox.List(ctx, inboxLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "no notifications")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONVERSATION\tUNREAD\tWHEN\tMESSAGE")
	for _, n := range items {
		unread := fmt.Sprint(n.UnreadCount)
		if n.Read {
			unread = "read"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ConversationID, unread, n.CreatedAt.Local().Format("01-02 15:04"), n.Body)
	}
	return tw.Flush()
}
