package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// AuditCommands returns ledger consistency commands.
func AuditCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "audit",
			Usage: "Check that every balance matches the sum of its ledger entries",
			Description: `Compares the stored points and reputation of each member with the
totals of their journal. Exits with an error when any member disagrees.`,
			Action: handleAudit(deps),
		},
	}
}

// handleAudit handles the 'audit' command.
func handleAudit(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		drifts, err := deps.DB.Model().Ledger().GetBalanceDrifts(ctx)
		if err != nil {
			return err
		}

		for _, drift := range drifts {
			deps.Logger.Warn("Balance drift",
				zap.Uint64("userID", drift.UserID),
				zap.Int64("points", drift.Points),
				zap.Int64("journalPoints", drift.JournalPoints),
				zap.Int64("reputation", drift.Reputation),
				zap.Int64("journalReputation", drift.JournalReputation),
			)
		}

		if len(drifts) > 0 {
			return fmt.Errorf("%w: %d members", ErrBalanceDrift, len(drifts))
		}

		deps.Logger.Info("All balances match the ledger")
		return nil
	}
}
