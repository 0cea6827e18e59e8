package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshsymonds/maildigest/internal/config"
	"github.com/joshsymonds/maildigest/internal/digest"
	"github.com/joshsymonds/maildigest/internal/gemini"
	"github.com/joshsymonds/maildigest/internal/journal"
	"github.com/joshsymonds/maildigest/internal/mailsource"
	"github.com/joshsymonds/maildigest/internal/pipeline"
	"github.com/joshsymonds/maildigest/internal/runtime"
	"github.com/joshsymonds/maildigest/internal/schedule"
	"github.com/joshsymonds/maildigest/internal/todoist"
)

const (
	configFile  = "config.yaml"
	journalFile = "maildigest.db"
	logDir      = "logs"
)

func main() {
	initFlag := flag.Bool("init", false, "run interactive setup")
	updateFlag := flag.Bool("update", false, "update one setting: --update KEY VALUE")
	showFlag := flag.Bool("show", false, "show current configuration")
	flag.Parse()

	log := runtime.FileLogger(logDir)
	store := config.NewStore(configFile, log)

	// Any configuration flag short-circuits the daemon.
	switch {
	case *initFlag:
		if err := store.RunInteractiveSetup(); err != nil {
			log.Error("interactive setup failed", "error", err)
			os.Exit(1)
		}
		return
	case *updateFlag:
		if flag.NArg() != 2 {
			flag.Usage()
			return
		}
		key, value := flag.Arg(0), flag.Arg(1)
		if store.Update(key, value) {
			fmt.Printf("Successfully updated %s\n", key)
		} else {
			fmt.Printf("Failed to update %s\n", key)
		}
		return
	case *showFlag:
		if err := store.PrintCurrent(); err != nil {
			log.Error("show configuration failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if flag.NArg() > 0 {
		flag.Usage()
		return
	}

	if err := run(log, store); err != nil {
		log.Error("maildigest failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, store *config.Store) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !store.IsConfigured(config.RequiredKeys()) {
		fmt.Println("Initial configuration required.")
		if err := store.RunInteractiveSetup(); err != nil {
			return fmt.Errorf("interactive setup: %w", err)
		}
	}

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	jnl, err := journal.Open(journalFile)
	if err != nil {
		return fmt.Errorf("open run journal: %w", err)
	}
	defer jnl.Close()

	source := mailsource.New(&runtime.Connector{
		CredentialsPath: store.ValueOrDefault(settings, config.KeyGmailCredentialsPath),
		TokenPath:       store.ValueOrDefault(settings, config.KeyGmailTokenPath),
		Log:             log,
	}, log)
	composer := &digest.Composer{
		Backend: gemini.NewClient(settings[config.KeyGeminiAPIKey]),
		Log:     log,
	}
	filer := todoist.NewClient(settings[config.KeyTodoistAPIKey], log)
	orch := pipeline.NewOrchestrator(source, composer, filer, store, log)

	loop := &schedule.Loop{
		ScanTime: store.ValueOrDefault(settings, config.KeyScanTime),
		Log:      log,
		Run: func(ctx context.Context) {
			out := orch.Execute(ctx)
			entry := journal.Entry{
				StartedAt:  out.StartedAt,
				FinishedAt: out.FinishedAt,
				Outcome:    "failed",
				Messages:   out.Messages,
				Cause:      out.Cause,
			}
			if out.Done {
				entry.Outcome = "done"
			}
			if err := jnl.Record(ctx, entry); err != nil {
				log.Error("record run in journal", "error", err)
			}
		},
	}

	log.Info("maildigest started")
	return loop.Start(ctx)
}
