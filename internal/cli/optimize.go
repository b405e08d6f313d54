package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/revisehq/revise/srs"
	"github.com/revisehq/revise/srs/optimizer"
)

var (
	optApply     bool
	optRetention bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Fit model parameters from the review log",
	Long: "Runs gradient-based optimization over the full review log.\n" +
		"The fitted vector is only persisted with --apply; interrupting the\n" +
		"fit (ctrl-c) leaves the adopted parameters untouched.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		logs, err := st.AllReviews(cmd.Context())
		if err != nil {
			exitErr("load review log", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		opt := optimizer.NewOptimizer(optimizer.OptimizerConfig{})

		result, err := opt.ComputeOptimalParameters(ctx, logs)
		switch {
		case errors.Is(err, optimizer.ErrInsufficientData), errors.Is(err, optimizer.ErrEmptyLogs):
			fmt.Fprintf(os.Stderr, "not enough review history to fit (%d entries); keeping current parameters\n", len(logs))
			return
		case errors.Is(err, optimizer.ErrDiverged):
			fmt.Fprintln(os.Stderr, "optimization diverged; keeping current parameters")
			return
		case err != nil:
			exitErr("optimize", err)
		}

		status := color.YellowString("did not converge")
		if result.Converged {
			status = color.GreenString("converged")
		}
		fmt.Printf("%s after %d epochs, loss %.4f\n", status, result.Epochs, result.Loss)
		printParameters(result.Parameters)

		if optRetention {
			r, err := opt.ComputeOptimalRetention(ctx, result.Parameters, logs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "optimal retention unavailable: %v\n", err)
			} else {
				fmt.Printf("optimal retention: %.2f\n", r)
			}
		}

		if !optApply {
			fmt.Println("dry run; pass --apply to adopt the fitted parameters")
			return
		}
		if err := st.SaveParameters(cmd.Context(), result.Parameters); err != nil {
			exitErr("save parameters", err)
		}
		fmt.Println("parameters adopted")
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show the adopted model parameters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		params, err := st.LoadParameters(cmd.Context())
		if err != nil {
			exitErr("load parameters", err)
		}
		if params == nil {
			fmt.Println("using default parameters")
			printParameters(srs.DefaultParameters)
			return
		}
		printParameters(*params)
	},
}

func printParameters(p srs.Parameters) {
	for i, w := range p {
		fmt.Printf("w[%2d] = %.4f\n", i, w)
	}
}

func init() {
	optimizeCmd.Flags().BoolVar(&optApply, "apply", false, "Persist the fitted parameters")
	optimizeCmd.Flags().BoolVar(&optRetention, "retention", false, "Also estimate the optimal desired retention")
	RootCmd.AddCommand(optimizeCmd, paramsCmd)
}
