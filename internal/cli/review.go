package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/revisehq/revise/internal/store"
	"github.com/revisehq/revise/srs"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List due card ids in review order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		cards, err := st.ListCards(cmd.Context(), store.ListFilter{})
		if err != nil {
			exitErr("list cards", err)
		}
		scheduling := make([]srs.Card, len(cards))
		for i, c := range cards {
			scheduling[i] = c.Card
		}
		for _, id := range srs.DueItems(scheduling, time.Now()) {
			fmt.Println(id)
		}
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <id> [again|hard|good|easy]",
	Short: "Grade a card",
	Long: "With a rating, grades the card and reschedules it.\n" +
		"Without one, shows the interval each rating would produce.",
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		c, err := st.GetCard(ctx, args[0])
		if err != nil {
			exitErr("get card", err)
		}

		sched, err := newScheduler(cmd, st)
		if err != nil {
			exitErr("scheduler", err)
		}
		if err := sched.Restore(c.Card); err != nil {
			exitErr("scheduler", err)
		}

		now := time.Now()

		if len(args) == 1 {
			preview, err := sched.Preview(c.Card, now)
			if err != nil {
				exitErr("preview", err)
			}
			for _, r := range []srs.Rating{srs.Again, srs.Hard, srs.Good, srs.Easy} {
				fmt.Printf("%s\t%s\n", strings.ToLower(r.String()), humanize.Time(preview[r].Due))
			}
			return
		}

		rating, err := parseRating(args[1])
		if err != nil {
			exitErr("rating", err)
		}

		updated, err := sched.Grade(c.ID, rating, now)
		if err != nil {
			exitErr("grade", err)
		}
		if err := st.SaveCard(ctx, updated); err != nil {
			exitErr("save card", err)
		}
		for _, log := range sched.Logs() {
			if err := st.AppendReview(ctx, log); err != nil {
				exitErr("append review", err)
			}
		}
		fmt.Printf("%s → %s, due %s\n", rating, updated.State, humanize.Time(updated.Due))
	},
}

var logCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Show a card's review history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		// Resolve the card first so an unknown id is an error rather than an
		// empty history.
		if _, err := st.GetCard(ctx, args[0]); err != nil {
			exitErr("show history", err)
		}
		logs, err := st.ListReviews(ctx, args[0])
		if err != nil {
			exitErr("show history", err)
		}
		for _, l := range logs {
			fmt.Printf("%s\t%s\telapsed %.1fd\tR %.2f\tS %.2f → %.2f\n",
				l.ReviewedAt.Local().Format("2006-01-02 15:04"),
				strings.ToLower(l.Rating.String()),
				l.ElapsedDays, l.PredictedRetrievability,
				floatOrZero(l.StabilityBefore), l.StabilityAfter)
		}
	},
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

var suspendCmd = &cobra.Command{
	Use:   "suspend <id>",
	Short: "Suspend a card (kept out of the due queue)",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setSuspended(cmd, args[0], true) },
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a suspended card",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { setSuspended(cmd, args[0], false) },
}

func setSuspended(cmd *cobra.Command, id string, suspended bool) {
	st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	c, err := st.GetCard(ctx, id)
	if err != nil {
		exitErr("get card", err)
	}

	sched, err := newScheduler(cmd, st)
	if err != nil {
		exitErr("scheduler", err)
	}
	if err := sched.Restore(c.Card); err != nil {
		exitErr("scheduler", err)
	}

	updated, err := sched.SetSuspended(id, suspended)
	if err != nil {
		exitErr("suspend", err)
	}
	if err := st.SaveCard(ctx, updated); err != nil {
		exitErr("save card", err)
	}
	fmt.Printf("%s\t%s\n", updated.ID, updated.State)
}

func parseRating(s string) (srs.Rating, error) {
	switch strings.ToLower(s) {
	case "again", "1":
		return srs.Again, nil
	case "hard", "2":
		return srs.Hard, nil
	case "good", "3":
		return srs.Good, nil
	case "easy", "4":
		return srs.Easy, nil
	default:
		return 0, fmt.Errorf("%w: %q", srs.ErrInvalidRating, s)
	}
}

func init() {
	RootCmd.AddCommand(dueCmd, reviewCmd, logCmd, suspendCmd, resumeCmd)
}
