package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/raxnet/patrol/internal/database/types"
	"golang.org/x/text/message"
)

// printer writes localized command output.
type printer struct {
	p *message.Printer
	w io.Writer
}

func (o *printer) printf(format string, args ...any) {
	_, _ = o.p.Fprintf(o.w, format, args...)
}

// table starts an aligned table with the given header.
func (o *printer) table(header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, header)
	return tw
}

func (o *printer) row(tw *tabwriter.Writer, format string, args ...any) {
	_, _ = o.p.Fprintf(tw, format+"\n", args...)
}

func (o *printer) user(user *types.User, now time.Time) {
	o.printf("Member #%s %s\n", strconv.FormatUint(user.ID, 10), user.Name)
	o.printf("  Points:          %d\n", user.Points)
	o.printf("  Reputation:      %d (%s)\n", user.Reputation, user.Tier())
	o.printf("  Tasks completed: %d\n", user.TasksCompleted)
	o.printf("  Points earned:   %d\n", user.PointsEarned)
	o.printf("  Timezone:        %s\n", user.Timezone)
	o.printf("  Daily bonus:     %s\n", availability(user.CanClaimDailyBonus(now)))
}

func (o *printer) tasks(tasks []*types.Task) {
	if len(tasks) == 0 {
		o.printf("No tasks.\n")
		return
	}

	tw := o.table("ID\tTYPE\tREWARD\tPROGRESS\tSTATUS\tTARGET")
	for _, task := range tasks {
		o.row(tw, "%s\t%s\t%d\t%d/%d\t%s\t%s",
			task.ID, task.Type, task.Reward, task.Completed, task.Quantity, task.Status, task.TargetURL)
	}
	_ = tw.Flush()
}

func (o *printer) submissions(submissions []*types.TaskSubmission) {
	if len(submissions) == 0 {
		o.printf("No submissions.\n")
		return
	}

	tw := o.table("ID\tTASK\tSUBMITTER\tSTATUS\tVOTES\tCREATED")
	for _, sub := range submissions {
		tally := sub.Tally()
		o.row(tw, "%s\t%s\t%s\t%s\t+%d/-%d\t%s",
			sub.ID, sub.TaskID, strconv.FormatUint(sub.SubmitterID, 10), sub.Status, tally.Approvals, tally.Rejections,
			sub.CreatedAt.Format(time.DateTime))
	}
	_ = tw.Flush()
}

func (o *printer) ledger(entries []*types.LedgerEntry) {
	if len(entries) == 0 {
		o.printf("No history.\n")
		return
	}

	tw := o.table("WHEN\tTYPE\tPOINTS\tREPUTATION\tBALANCE\tREFERENCE")
	for _, entry := range entries {
		o.row(tw, "%s\t%s\t%+d\t%+d\t%d\t%s",
			entry.CreatedAt.Format(time.DateTime), entry.Type, entry.PointsDelta, entry.ReputationDelta,
			entry.BalanceAfter, entry.Reference)
	}
	_ = tw.Flush()
}

func (o *printer) leaderboard(entries []*types.LeaderboardEntry) {
	if len(entries) == 0 {
		o.printf("Leaderboard is empty.\n")
		return
	}

	tw := o.table("RANK\tMEMBER\tPOINTS\tREPUTATION\tTIER\tTASKS")
	for _, entry := range entries {
		o.row(tw, "%d\t%s\t%d\t%d\t%s\t%d",
			entry.Rank, entry.Name, entry.Points, entry.Reputation, entry.Tier, entry.TasksCompleted)
	}
	_ = tw.Flush()
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "claimed today"
}
