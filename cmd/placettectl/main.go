package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/placette/messaging/internal/client"
	"github.com/placette/messaging/internal/config"
	"github.com/placette/messaging/internal/home"
	"github.com/placette/messaging/internal/messaging"
	"github.com/placette/messaging/internal/wire"
	"go.uber.org/zap"
)

func main() {
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides PLACETTE_HOME and ~/.placette)")
	urlFlag := flag.String("url", "", "backend base URL (overrides config)")
	tokenFlag := flag.String("token", "", "bearer token (overrides config)")
	userFlag := flag.Int64("user", 0, "current user id (for send/start identity checks)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = home.BaseDir()
	}
	cfg, err := config.Load(home.ConfigPath(dataDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	baseURL := cfg.Client.BaseURL
	if *urlFlag != "" {
		baseURL = *urlFlag
	}
	token := cfg.Client.Token
	if *tokenFlag != "" {
		token = *tokenFlag
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	gw := client.New(baseURL, token, cfg.Client.Timeout())
	session := messaging.Session{UserID: *userFlag}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "register":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: placettectl register <firstName> [lastName]")
			os.Exit(1)
		}
		last := ""
		if len(args) > 2 {
			last = args[2]
		}
		cmdRegister(ctx, gw, args[1], last, *jsonFlag)
	case "conversations":
		cmdConversations(ctx, gw, *jsonFlag)
	case "start":
		targetID := parseID(args, 1, "placettectl start <targetUserID>")
		cmdStart(ctx, gw, session, targetID, *jsonFlag)
	case "open":
		convID := parseID(args, 1, "placettectl open <conversationID>")
		cmdOpen(ctx, gw, session, convID, *jsonFlag)
	case "send":
		convID := parseID(args, 1, "placettectl send <conversationID> <text>")
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: placettectl send <conversationID> <text>")
			os.Exit(1)
		}
		cmdSend(ctx, gw, session, convID, strings.Join(args[2:], " "), *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: placettectl [--url <base>] [--token <tok>] [--user <id>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  register <first> [last]   Create a user, print its token")
	fmt.Fprintln(os.Stderr, "  conversations             List conversations")
	fmt.Fprintln(os.Stderr, "  start <targetUserID>      Find or create a conversation")
	fmt.Fprintln(os.Stderr, "  open <conversationID>     Show a thread (marks it read)")
	fmt.Fprintln(os.Stderr, "  send <conversationID> <text>  Send a message")
}

func parseID(args []string, idx int, usage string) int64 {
	if len(args) <= idx {
		fmt.Fprintf(os.Stderr, "usage: %s\n", usage)
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[idx], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %q is not a numeric id\n", args[idx])
		os.Exit(1)
	}
	return id
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdRegister(ctx context.Context, gw *client.Client, first, last string, jsonOut bool) {
	resp, err := gw.Register(ctx, first, last)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("User:  %d (%s %s)\n", resp.User.ID, resp.User.FirstName, resp.User.LastName)
	fmt.Printf("Token: %s\n", resp.Token)
}

func cmdConversations(ctx context.Context, gw *client.Client, jsonOut bool) {
	dir := messaging.NewDirectory(gw, nil, zap.NewNop())
	listings, err := dir.List(ctx)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(listings)
		return
	}
	if len(listings) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, l := range listings {
		preview := ""
		if l.LastMessage != nil {
			preview = l.LastMessage.Content
		}
		badge := ""
		if l.UnreadCount > 0 {
			badge = fmt.Sprintf(" (%d unread)", l.UnreadCount)
		}
		fmt.Printf("#%-5d %s %s%s\n       %s\n",
			l.Conversation.ID, l.OtherUser.FirstName, l.OtherUser.LastName, badge, preview)
	}
}

func cmdStart(ctx context.Context, gw *client.Client, session messaging.Session, targetID int64, jsonOut bool) {
	starter := messaging.NewStarter(gw, session)
	conv, err := starter.Start(ctx, targetID)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(conv)
		return
	}
	fmt.Printf("Conversation: %d (users %d and %d)\n", conv.ID, conv.UserAID, conv.UserBID)
}

func cmdOpen(ctx context.Context, gw *client.Client, session messaging.Session, convID int64, jsonOut bool) {
	thread := messaging.NewThread(gw, session, nil, zap.NewNop())
	if err := thread.Open(ctx, convID); err != nil {
		fatal(err)
	}
	entries := thread.Messages()
	if jsonOut {
		msgs := make([]wire.Message, 0, len(entries))
		for _, e := range entries {
			msgs = append(msgs, e.Message)
		}
		outputJSON(msgs)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, e := range entries {
		fmt.Printf("[%s] %d: %s\n",
			e.Message.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Message.SenderID, e.Message.Content)
	}
}

func cmdSend(ctx context.Context, gw *client.Client, session messaging.Session, convID int64, text string, jsonOut bool) {
	thread := messaging.NewThread(gw, session, nil, zap.NewNop())
	if err := thread.Open(ctx, convID); err != nil {
		fatal(err)
	}
	composer := messaging.NewComposer(thread, gw, nil, zap.NewNop())
	msg, err := composer.Send(ctx, text)
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(msg)
		return
	}
	fmt.Printf("Sent message %d to conversation %d\n", msg.ID, msg.ConversationID)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
