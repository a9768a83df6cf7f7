package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"firechat/internal/client"
	"firechat/internal/config"
	"firechat/internal/notify"
	"firechat/internal/stats"
	"firechat/internal/store"
	"firechat/internal/term"
)

var (
	projectID   string
	credentials string
	username    string
	pageSize    int
	roomWindow  int
	heartbeat   time.Duration
	opTimeout   time.Duration
	debugAddr   string
	logLevel    string
)

func main() {
	// Optional .env for local development, flags still win.
	_ = godotenv.Load()

	flag.StringVar(&projectID, "project", os.Getenv("FIRECHAT_PROJECT_ID"), "firestore project id")
	flag.StringVar(&credentials, "credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "service account credentials file")
	flag.StringVar(&username, "username", os.Getenv("FIRECHAT_USERNAME"), "chat username")
	flag.IntVar(&pageSize, "page-size", config.DefaultPageSize, "messages per history page")
	flag.IntVar(&roomWindow, "room-window", config.DefaultRoomWindow, "live room subscription window")
	flag.DurationVar(&heartbeat, "heartbeat", config.DefaultHeartbeatInterval, "presence heartbeat interval")
	flag.DurationVar(&opTimeout, "op-timeout", config.DefaultOpTimeout, "timeout for one-shot store operations")
	flag.StringVar(&debugAddr, "debug-addr", "", "address for the stats endpoint, disabled when empty")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if username == "" {
		logger.Fatal().Msg("username cannot be empty")
	}

	cfg, err := config.NewConfig(projectID, credentials, pageSize, roomWindow, heartbeat, opTimeout, debugAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	var st store.Store
	fs, err := store.NewFirestoreStore(ctx, cfg.ProjectID, cfg.CredentialsFile, logger)
	if err != nil {
		logger.Error().Err(err).Msg("firestore unavailable, starting without realtime features")
		st = store.Unavailable{}
	} else {
		st = fs
		defer func() {
			if err := fs.Close(); err != nil {
				logger.Error().Err(err).Msg("firestore close")
			}
		}()
	}

	mux := http.NewServeMux()
	statsUpdater := stats.NewStatsUpdater(mux)
	statsUpdater.Run()
	defer statsUpdater.Stop()

	if cfg.DebugAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.DebugAddr, mux); err != nil {
				logger.Error().Err(err).Msg("debug server")
			}
		}()
	}

	ui := term.NewTerminal(os.Stdout, username)
	notifier := notify.NewDesktopNotifier(logger)

	sess, err := client.NewSession(logger, st, ui, notifier, statsUpdater, cfg, username)
	if err != nil {
		logger.Fatal().Err(err).Msg("new session")
	}

	go sess.Run()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	printHelp()

loop:
	for {
		select {
		case sig := <-sigs:
			logger.Info().Str("signal", sig.String()).Msg("received signal")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if quit := dispatch(ctx, sess, line); quit {
				break loop
			}
		}
	}

	sess.Teardown(true)
	sess.Close()
	logger.Info().Msg("shutdown complete")
}

func dispatch(ctx context.Context, sess *client.Session, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if err := sess.Send(ctx, line); err != nil {
			fmt.Println("send:", err)
		}
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/dm":
		if arg == "" {
			fmt.Println("usage: /dm <username>")
			return false
		}
		if err := sess.SwitchChannel(arg); err != nil {
			fmt.Println("switch:", err)
		}
	case "/lobby":
		if err := sess.SwitchChannel(client.LobbyChannel); err != nil {
			fmt.Println("switch:", err)
		}
	case "/older":
		if err := sess.LoadOlder(); err != nil {
			fmt.Println("load older:", err)
		}
	case "/delete-history":
		n, err := sess.DeleteRoomHistory(ctx, arg)
		if err != nil {
			fmt.Println("delete history:", err)
			return false
		}
		fmt.Printf("deleted %d messages\n", n)
	case "/delete-chat":
		if arg == "" {
			fmt.Println("usage: /delete-chat <username>")
			return false
		}
		n, err := sess.DeleteRoomAndHistory(ctx, arg)
		if err != nil {
			fmt.Println("delete chat:", err)
			return false
		}
		fmt.Printf("removed chat, deleted %d messages\n", n)
	case "/quit":
		return true
	case "/help":
		printHelp()
	default:
		fmt.Println("unknown command:", cmd)
	}
	return false
}

func printHelp() {
	fmt.Println(`commands:
  /dm <user>             open a direct message conversation
  /lobby                 return to the lobby
  /older                 load older messages
  /delete-history [user] delete a room's message history
  /delete-chat <user>    delete a conversation and its history
  /quit                  exit`)
}
