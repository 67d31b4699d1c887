package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/skilledge/skilledge-server/internal/client"
	"github.com/skilledge/skilledge-server/internal/client/store"
	"github.com/skilledge/skilledge-server/internal/config"
	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/realtime"
)

const usage = `usage: skilledge [-name NAME] <command> [args]

commands:
  complete <module>      mark a module completed
  lab <lab> <file>       submit lab code from file
  interview <score>      record a mock interview score
  goal <goal>            set the learning goal
  flush                  deliver queued changes now
  queue                  list queued changes
  status                 show cached progress and queue size
  clear                  drop queued changes
  courses                list courses, from the local cache when offline
  leaderboard            show the leaderboard
  watch                  follow realtime updates and flush on reconnect
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewClientConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	flags := flag.NewFlagSet("skilledge", flag.ExitOnError)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	name := flags.String("name", cfg.Name, "user to sync for")
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}
	if *name == "" {
		log.Fatal("user name is required: pass -name or set CLIENT_NAME")
	}

	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Fatal("failed to create data dir", "error", err, "dir", cfg.DataDir)
	}
	local, err := store.Open(ctx, filepath.Join(cfg.DataDir, "local.db"))
	if err != nil {
		logger.Fatal("failed to open local store", "error", err)
	}
	defer local.Close()

	transport := client.NewHTTPTransport(cfg.ServerURL, cfg.SyncTimeout)
	c := client.New(*name, local, local, transport, cfg.SyncTimeout, logger)

	if err := run(ctx, cfg, c, transport, local, logger, args); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Client, c *client.Client, transport *client.HTTPTransport, local *store.Store, logger *logger.Logger, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "complete":
		if len(rest) != 1 {
			return model.NewValidationError("", "complete takes one module id")
		}
		return submit(ctx, c, model.CompleteModule{ModuleID: rest[0]})
	case "lab":
		if len(rest) != 2 {
			return model.NewValidationError("", "lab takes a lab id and a code file")
		}
		code, err := os.ReadFile(rest[1])
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}
		return submit(ctx, c, model.SubmitLab{LabID: rest[0], Code: string(code)})
	case "interview":
		if len(rest) != 1 {
			return model.NewValidationError("", "interview takes a score")
		}
		score, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return model.NewValidationError("score", "must be a number")
		}
		return submit(ctx, c, model.CompleteInterview{Score: score})
	case "goal":
		if len(rest) != 1 {
			return model.NewValidationError("", "goal takes one goal")
		}
		return submit(ctx, c, model.SetGoal{Goal: rest[0]})
	case "flush":
		res, err := c.Flush(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("delivered %d change(s), %d points\n", res.Sent, res.User.Points)
		return nil
	case "queue":
		pending, err := c.Pending(ctx)
		if err != nil {
			return err
		}
		for _, e := range pending {
			raw, _ := model.EncodeChange(e.Change)
			fmt.Printf("%d\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), raw)
		}
		fmt.Printf("%d pending\n", len(pending))
		return nil
	case "status":
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d points, %d badge(s)\n", st.User.Name, st.User.Points, len(st.User.Badges))
		for _, m := range st.Completed {
			fmt.Printf("  completed %s\n", m.ID)
		}
		fmt.Printf("%d change(s) waiting to sync\n", st.Pending)
		return nil
	case "clear":
		n, err := c.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("dropped %d change(s)\n", n)
		return nil
	case "courses":
		courses, cached, err := client.NewCatalog(transport, local, logger).Courses(ctx)
		if err != nil {
			return err
		}
		if cached {
			fmt.Println("server unreachable, showing cached courses")
		}
		for _, course := range courses {
			fmt.Printf("%s\t%s\t%d module(s)\n", course.Slug, course.Title, len(course.Modules))
		}
		return nil
	case "leaderboard":
		entries, err := transport.Leaderboard(ctx)
		if err != nil {
			return err
		}
		printLeaderboard(entries)
		return nil
	case "watch":
		return watch(ctx, cfg, c, logger)
	default:
		return model.NewValidationError("", fmt.Sprintf("unknown command %q", cmd))
	}
}

func submit(ctx context.Context, c *client.Client, change model.Change) error {
	res, err := c.Submit(ctx, change)
	if err != nil {
		return err
	}
	if res.Synced {
		fmt.Printf("synced: %d points, %d badge(s)\n", res.User.Points, len(res.User.Badges))
	} else {
		fmt.Printf("saved offline as #%d, will sync when the server is reachable\n", res.Entry.ID)
	}
	return nil
}

func watch(ctx context.Context, cfg *config.Client, c *client.Client, logger *logger.Logger) error {
	w, err := client.NewWatcher(cfg.ServerURL, c, logger)
	if err != nil {
		return err
	}

	go c.Run(ctx, cfg.FlushInterval)

	err = w.Watch(ctx, func(ev realtime.Event) {
		switch ev.Event {
		case realtime.EventLeaderboardUpdate:
			var entries []model.LeaderboardEntry
			if json.Unmarshal(ev.Data, &entries) == nil {
				printLeaderboard(entries)
			}
		case realtime.EventProgressBroadcast:
			var p model.ProgressBroadcast
			if json.Unmarshal(ev.Data, &p) == nil {
				fmt.Printf("%s completed %s (%d points)\n", p.Name, p.ModuleID, p.Points)
			}
		default:
			fmt.Printf("%s %s\n", ev.Event, ev.Data)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printLeaderboard(entries []model.LeaderboardEntry) {
	for i, e := range entries {
		fmt.Printf("%2d. %-20s %d\n", i+1, e.Name, e.Points)
	}
}
