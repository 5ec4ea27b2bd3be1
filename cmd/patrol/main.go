package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/export"
	"github.com/raxnet/patrol/internal/setup"
	"github.com/raxnet/patrol/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrUserRequired = errors.New("--user is required")

// usageErrors are caller mistakes reported like business rule violations.
var usageErrors = []error{
	ErrUserRequired,
	ErrNameRequired,
	ErrInvalidID,
	ErrFileRequired,
	ErrCodeRequired,
	ErrSaltRequired,
	export.ErrUnsupportedFormat,
	export.ErrInvalidHashType,
}

func main() {
	if err := run(); err != nil {
		code := exitCode(err)
		if code == 2 {
			fmt.Fprintf(os.Stderr, "Rejected: %v\n", err)
		} else {
			log.Printf("Error: %v", err)
		}
		os.Exit(code)
	}
}

// exitCode returns 2 for business rule violations and usage mistakes and 1
// for everything else.
func exitCode(err error) int {
	if types.IsBusinessError(err) {
		return 2
	}
	for _, target := range usageErrors {
		if errors.Is(err, target) {
			return 2
		}
	}
	return 1
}

func run() error {
	app := &cli.Command{
		Name:  "patrol",
		Usage: "Task exchange with peer-verified completions",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "ID of the member acting",
			},
			&cli.StringFlag{
				Name:  "lang",
				Value: "id",
				Usage: "Language tag used to format numbers",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Directory for session logs (defaults to storage.log_dir)",
			},
		},
		Commands: []*cli.Command{
			userCommand(),
			taskCommand(),
			proofCommand(),
			patrolCommand(),
			bonusCommand(),
			leaderboardCommand(),
			onboardCommand(),
		},
	}

	return app.Run(context.Background(), os.Args)
}

// actionFunc is a command body that receives the initialized application.
type actionFunc func(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error

// withApp initializes the application around a command body.
func withApp(serviceType telemetry.ServiceType, fn actionFunc) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		ctx, cancel := context.WithTimeout(ctx, serviceType.RequestTimeout())
		defer cancel()

		app, err := setup.InitializeApp(ctx, serviceType, c.String("log-dir"))
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.Cleanup(ctx)

		return fn(ctx, c, app, newPrinter(c.String("lang")))
	}
}

// actingUser returns the --user flag.
func actingUser(c *cli.Command) (uint64, error) {
	userID := c.Uint("user")
	if userID == 0 {
		return 0, ErrUserRequired
	}
	return userID, nil
}

// newPrinter creates an output printer for a language tag, falling back to
// Indonesian formatting.
func newPrinter(tag string) *printer {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Indonesian
	}
	return &printer{p: message.NewPrinter(lang), w: os.Stdout}
}
