// Command undelete re-publishes messages from a telegram-export archive into
// a live chat, resuming from the migration ledger across runs.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/fx"

	"github.com/shouya/telegram-undelete/internal/app"
	"github.com/shouya/telegram-undelete/internal/config"
)

type botList []string

func (b *botList) String() string { return strings.Join(*b, ",") }

func (b *botList) Set(v string) error {
	*b = append(*b, v)
	return nil
}

func main() {
	var bots botList
	configPath := flag.String("config", "", "path to config.toml")
	dbPath := flag.String("db", "", "telegram-export sqlite archive")
	chatID := flag.Int64("chat-id", 0, "destination chat id")
	mediaDir := flag.String("media-dir", "", "root directory of exported media files")
	retryCeiling := flag.Int("retry-ceiling", -1, "max retries before a message is abandoned")
	logFile := flag.String("log-file", "", "optional JSON log file")
	flag.Var(&bots, "bot", "bot token as token or token/user_id, repeatable (example: --bot 123:abcde/100000)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flags override the config file.
	if *dbPath != "" {
		cfg.Archive = *dbPath
	}
	if *chatID != 0 {
		cfg.ChatID = *chatID
	}
	if *mediaDir != "" {
		cfg.MediaDir = *mediaDir
	}
	if *retryCeiling >= 0 {
		cfg.RetryCeiling = *retryCeiling
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	for _, spec := range bots {
		b, err := config.ParseBot(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg.Bots = append(cfg.Bots, b)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		app.Module(app.Params{Config: cfg}),
	)

	fxApp.Run()
}
