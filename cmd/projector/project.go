package main

import (
	"fmt"
	"io"

	"github.com/dafibh/mpwr/portal-backend/internal/amortization"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func projectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Compare payoff with an extra monthly payment against the minimum",
		Long: `Project how long the loan takes to pay off with an extra monthly payment,
and how many months and how much interest that saves over paying the minimum.

Examples:
  projector project --file loan.json --extra 100
  PROJECTOR_EXTRA=50 projector project --file loan.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProject(cmd, v)
		},
	}

	cmd.Flags().StringP("file", "f", "", "loan document (JSON)")
	cmd.Flags().String("extra", "0", "extra monthly payment on top of the minimum")
	cmd.Flags().Bool("json", false, "print the projection as JSON")

	return cmd
}

func runProject(cmd *cobra.Command, v *viper.Viper) error {
	extra, err := decimal.NewFromString(v.GetString("extra"))
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidExtraPayment, v.GetString("extra"))
	}

	loan, _, err := readLoan(v.GetString("file"), v.GetString("customer"))
	if err != nil {
		return err
	}

	projection, err := amortization.Compare(*loan, extra)
	if err != nil {
		return err
	}
	log.Debug().
		Str("loan_id", loan.ID).
		Str("outcome", string(projection.Outcome)).
		Int("simulated_months", projection.SimulatedMonths).
		Msg("Projection complete")

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		return writeJSON(out, projection)
	}
	printProjection(out, loan, projection)
	return nil
}

func printProjection(w io.Writer, loan *domain.Loan, p domain.Projection) {
	fmt.Fprintf(w, "Loan:      %s (%s)\n", loan.Name, loan.ID)
	fmt.Fprintf(w, "Balance:   %s at %s%% APR\n", money(loan.CurrentBalance), loan.InterestRate.StringFixed(2))
	fmt.Fprintf(w, "Payment:   %s (%s minimum + %s extra)\n", money(p.TotalPayment), money(loan.MinPayment), money(p.ExtraPayment))

	if p.HorizonExceeded() {
		fmt.Fprintf(w, "Payoff:    beyond %d months (%s)\n", domain.MaxProjectionMonths, p.Outcome)
	} else {
		fmt.Fprintf(w, "Payoff:    %d months, %s interest\n", p.MonthsToPayoff, money(p.TotalInterest))
	}

	if p.BaselineOutcome.ReachedPayoff() {
		fmt.Fprintf(w, "Baseline:  %d months, %s interest\n", p.BaselineMonths, money(p.BaselineInterest))
	} else {
		fmt.Fprintf(w, "Baseline:  beyond %d months (%s)\n", domain.MaxProjectionMonths, p.BaselineOutcome)
	}
	fmt.Fprintf(w, "Saves:     %d months, %s interest\n", p.MonthsSaved, money(p.InterestSaved))
}
