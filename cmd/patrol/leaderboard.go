package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/raxnet/patrol/internal/export"
	"github.com/raxnet/patrol/internal/setup"
	"github.com/raxnet/patrol/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
)

var (
	ErrFileRequired = errors.New("FILE argument required")
	ErrCodeRequired = errors.New("CODE argument required")
	ErrSaltRequired = errors.New("--salt is required when anonymizing")
)

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "Member ranking by points",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the top members",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 10},
				},
				Action: withApp(telemetry.ServiceCLI, handleLeaderboard),
			},
			{
				Name:  "export",
				Usage: "Export the leaderboard to csv, sqlite and a chart",
				Description: `Writes a timestamped directory under the output directory.

Examples:
  patrol leaderboard export                                   # All formats
  patrol leaderboard export --format csv --format chart       # Selected formats
  patrol leaderboard export --anonymize --salt s3cret -t argon2id -i 16 -m 16`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base output directory (defaults to storage.export_dir)",
					},
					&cli.StringSliceFlag{
						Name:  "format",
						Usage: "Formats to write (sqlite, csv, chart)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of members to export (0 for the configured size)",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Value:   "Patrol leaderboard",
					},
					&cli.BoolFlag{
						Name:  "anonymize",
						Usage: "Replace member IDs with salted hashes and drop names",
					},
					&cli.StringFlag{Name: "salt", Aliases: []string{"s"}},
					&cli.StringFlag{
						Name:    "hash-type",
						Aliases: []string{"t"},
						Value:   string(export.HashTypeSHA256),
						Usage:   "Hash algorithm to use (argon2id or sha256)",
					},
					&cli.UintFlag{Name: "iterations", Aliases: []string{"i"}, Value: 1},
					&cli.UintFlag{Name: "memory", Aliases: []string{"m"}, Value: 16, Usage: "Argon2id memory in MB"},
					&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Value: 4},
				},
				Action: withApp(telemetry.ServiceExport, handleExport),
			},
		},
	}
}

func onboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "onboard",
		Usage: "Donation-gated registration",
		Commands: []*cli.Command{
			{
				Name:      "verify",
				Usage:     "Verify a donation receipt image and issue an access code",
				ArgsUsage: "FILE",
				Action:    withApp(telemetry.ServiceCLI, handleVerifyDonation),
			},
			{
				Name:      "redeem",
				Usage:     "Redeem an access code for a new account",
				ArgsUsage: "CODE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "avatar"},
				},
				Action: withApp(telemetry.ServiceCLI, handleRedeem),
			},
		},
	}
}

func handleLeaderboard(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	entries, err := app.Market.Leaderboard(ctx, int(c.Int("limit")))
	if err != nil {
		return err
	}

	out.leaderboard(entries)
	return nil
}

func handleExport(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	cfg := &export.Config{
		Description: c.String("description"),
		Anonymize:   c.Bool("anonymize"),
		Salt:        c.String("salt"),
		HashType:    export.HashType(c.String("hash-type")),
		Iterations:  uint32(c.Uint("iterations")), //nolint:gosec // -
		Memory:      uint32(c.Uint("memory")),     //nolint:gosec // -
		Limit:       int(c.Int("limit")),
		Concurrency: int(c.Int("concurrency")),
		ExportedAt:  time.Now().UTC(),
	}
	for _, format := range c.StringSlice("format") {
		cfg.Formats = append(cfg.Formats, export.Format(format))
	}

	if cfg.Anonymize && cfg.Salt == "" {
		return ErrSaltRequired
	}

	baseDir := c.String("output")
	if baseDir == "" {
		baseDir = app.Config.Common.Storage.ExportDir
	}
	outDir := filepath.Join(baseDir, cfg.ExportedAt.Format("2006-01-02_150405"))

	summary, err := export.New(app.Market, outDir, cfg, app.Logger).ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to export leaderboard: %w", err)
	}

	out.printf("Exported %d members to %s\n", summary.Records, outDir)
	for _, name := range summary.Files {
		out.printf("  %s\n", name)
	}
	return nil
}

func handleVerifyDonation(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	service, err := app.RequireOnboarding()
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return ErrFileRequired
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read receipt: %w", err)
	}

	result, err := service.VerifyDonation(ctx, data, http.DetectContentType(data))
	if err != nil {
		return err
	}

	if result.Grant == nil {
		out.printf("Verification failed: %s\n", result.Decision.Reason)
		return nil
	}

	out.printf("%s\n", result.Decision.Reason)
	out.printf("Access code: %s (valid until %s)\n",
		result.Grant.Code, result.Grant.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func handleRedeem(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	service, err := app.RequireOnboarding()
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return ErrCodeRequired
	}

	user, err := service.Redeem(ctx, c.Args().First(), c.String("name"), c.String("avatar"))
	if err != nil {
		return err
	}

	out.printf("Welcome! Your member ID is %s.\n", formatUserID(user.ID))
	out.user(user, app.Market.Now())
	return nil
}
