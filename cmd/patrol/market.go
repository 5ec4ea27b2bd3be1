package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/raxnet/patrol/internal/market"
	"github.com/raxnet/patrol/internal/setup"
	"github.com/raxnet/patrol/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
)

var (
	ErrNameRequired = errors.New("NAME argument required")
	ErrInvalidID    = errors.New("invalid ID")
)

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage member accounts",
		Commands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Register a member without onboarding",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "avatar", Usage: "Avatar image URL"},
					&cli.StringFlag{Name: "timezone", Usage: "IANA time zone, e.g. Asia/Jakarta"},
				},
				Action: withApp(telemetry.ServiceCLI, handleRegister),
			},
			{
				Name:   "show",
				Usage:  "Show a member profile",
				Action: withApp(telemetry.ServiceCLI, handleProfile),
			},
			{
				Name:  "history",
				Usage: "Show the points and reputation journal",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Number of entries to show"},
				},
				Action: withApp(telemetry.ServiceCLI, handleHistory),
			},
		},
	}
}

func taskCommand() *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Post and browse engagement tasks",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Post a task and pay its full cost up front",
				Description: `Rewards per completion: follow 5, like 1, share 3, view 1.
The quantity must be between 10 and 500.

Examples:
  patrol -u 1 task create --type follow --url https://instagram.com/raxnet --quantity 20`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Required: true, Usage: "follow, like, share or view"},
					&cli.StringFlag{Name: "url", Required: true, Usage: "Target link"},
					&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Required: true, Usage: "Completions wanted"},
				},
				Action: withApp(telemetry.ServiceCLI, handleCreateTask),
			},
			{
				Name:  "list",
				Usage: "List open tasks posted by other members",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Only show this task type"},
					&cli.StringFlag{Name: "sort", Value: "newest", Usage: "newest or reward"},
					&cli.IntFlag{Name: "limit", Value: 20},
					&cli.IntFlag{Name: "offset"},
				},
				Action: withApp(telemetry.ServiceCLI, handleOpenTasks),
			},
			{
				Name:   "mine",
				Usage:  "List tasks you posted",
				Action: withApp(telemetry.ServiceCLI, handleMyTasks),
			},
		},
	}
}

func proofCommand() *cli.Command {
	return &cli.Command{
		Name:  "proof",
		Usage: "Submit and track completion proofs",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit proof of completing a task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "task", Required: true, Usage: "Task ID"},
					&cli.StringFlag{Name: "proof", Required: true, Usage: "Reference to the proof image"},
				},
				Action: withApp(telemetry.ServiceCLI, handleSubmitProof),
			},
			{
				Name:   "mine",
				Usage:  "List your submissions",
				Action: withApp(telemetry.ServiceCLI, handleMySubmissions),
			},
		},
	}
}

func patrolCommand() *cli.Command {
	return &cli.Command{
		Name:  "patrol",
		Usage: "Review other members' proofs",
		Commands: []*cli.Command{
			{
				Name:  "queue",
				Usage: "List submissions waiting for your verdict",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: withApp(telemetry.ServiceCLI, handlePatrolQueue),
			},
			{
				Name:  "verdict",
				Usage: "Approve or reject a submission",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "submission", Aliases: []string{"s"}, Required: true},
					&cli.StringFlag{Name: "verdict", Required: true, Usage: "approved or rejected"},
				},
				Action: withApp(telemetry.ServiceCLI, handleVerdict),
			},
		},
	}
}

func bonusCommand() *cli.Command {
	return &cli.Command{
		Name:  "bonus",
		Usage: "Daily bonus",
		Commands: []*cli.Command{
			{
				Name:   "claim",
				Usage:  "Claim today's bonus",
				Action: withApp(telemetry.ServiceCLI, handleClaimBonus),
			},
		},
	}
}

func handleRegister(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	if c.Args().Len() != 1 {
		return ErrNameRequired
	}

	user, err := app.Market.RegisterMember(ctx, market.Profile{
		Name:      c.Args().First(),
		AvatarURL: c.String("avatar"),
		Timezone:  c.String("timezone"),
	})
	if err != nil {
		return err
	}

	out.printf("Registered.\n")
	out.user(user, app.Market.Now())
	return nil
}

func handleProfile(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	user, err := app.Market.Profile(ctx, userID)
	if err != nil {
		return err
	}

	out.user(user, app.Market.Now())
	return nil
}

func handleHistory(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	entries, err := app.Market.History(ctx, userID, int(c.Int("limit")))
	if err != nil {
		return err
	}

	out.ledger(entries)
	return nil
}

func handleCreateTask(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	taskType, err := enum.TaskTypeString(c.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidTaskParameters, err)
	}

	task, err := app.Market.CreateTask(ctx, userID, taskType, c.String("url"), c.Int("quantity"))
	if err != nil {
		return err
	}

	out.printf("Task %s posted, %d points paid.\n", task.ID, task.Cost())
	out.tasks([]*types.Task{task})
	return nil
}

func handleOpenTasks(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	filter := types.TaskFilter{
		ExcludeOwnerID: c.Uint("user"),
		Limit:          int(c.Int("limit")),
		Offset:         int(c.Int("offset")),
	}

	sortBy, err := enum.TaskSortByString(c.String("sort"))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidTaskParameters, err)
	}
	filter.SortBy = sortBy

	if c.IsSet("type") {
		taskType, err := enum.TaskTypeString(c.String("type"))
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrInvalidTaskParameters, err)
		}
		filter.Type = &taskType
	}

	tasks, err := app.Market.OpenTasks(ctx, filter)
	if err != nil {
		return err
	}

	out.tasks(tasks)
	return nil
}

func handleMyTasks(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	tasks, err := app.Market.MyTasks(ctx, userID)
	if err != nil {
		return err
	}

	out.tasks(tasks)
	return nil
}

func handleSubmitProof(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	taskID, err := parseID(c.String("task"))
	if err != nil {
		return err
	}

	sub, err := app.Market.SubmitProof(ctx, taskID, userID, c.String("proof"))
	if err != nil {
		return err
	}

	out.printf("Submission %s is waiting for patrol review.\n", sub.ID)
	return nil
}

func handleMySubmissions(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	subs, err := app.Market.MySubmissions(ctx, userID)
	if err != nil {
		return err
	}

	out.submissions(subs)
	return nil
}

func handlePatrolQueue(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	subs, err := app.Market.PatrolQueue(ctx, userID, int(c.Int("limit")))
	if err != nil {
		return err
	}

	out.submissions(subs)
	return nil
}

func handleVerdict(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	subID, err := parseID(c.String("submission"))
	if err != nil {
		return err
	}

	verdict, err := enum.VerdictString(c.String("verdict"))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidVerdict, err)
	}

	result, err := app.Market.CastVerdict(ctx, subID, userID, verdict)
	if err != nil {
		return err
	}

	out.printf("Verdict recorded (+%d/-%d). Outcome: %s\n",
		result.Tally.Approvals, result.Tally.Rejections, result.Outcome)
	if err := result.Err(); err != nil {
		out.printf("Note: %v, no completion reward was paid.\n", err)
	}
	return nil
}

func handleClaimBonus(ctx context.Context, c *cli.Command, app *setup.App, out *printer) error {
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	user, err := app.Market.ClaimDailyBonus(ctx, userID, app.Market.Now())
	if err != nil {
		return err
	}

	out.printf("Bonus claimed. Balance: %d points\n", user.Points)
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q: %w", ErrInvalidID, raw, err)
	}
	return id, nil
}

// formatUserID renders a member ID without digit grouping.
func formatUserID(id uint64) string {
	return "#" + strconv.FormatUint(id, 10)
}
