package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/amortization"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func scheduleCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the reconciled repayment schedule",
		Long: `Print the loan's repayment schedule. Loans without a servicing schedule get
a generated level-payment schedule.

Examples:
  projector schedule --file loan.json
  projector schedule --file loan.json --as-of 2026-01-01 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, v)
		},
	}

	cmd.Flags().StringP("file", "f", "", "loan document (JSON)")
	cmd.Flags().String("as-of", "", "start date for generated schedules without one (YYYY-MM-DD, default today)")
	cmd.Flags().Bool("json", false, "print the schedule as JSON")

	return cmd
}

// scheduleOutput is the JSON shape of the schedule command
type scheduleOutput struct {
	LoanID       string                        `json:"loanId"`
	Installments []domain.ScheduledInstallment `json:"installments"`
	Summary      domain.ScheduleSummary        `json:"summary"`
}

func runSchedule(cmd *cobra.Command, v *viper.Viper) error {
	asOf := time.Now().UTC()
	if s := v.GetString("as-of"); s != "" {
		parsed, err := util.ParseDate(s)
		if err != nil {
			return fmt.Errorf("%w: invalid --as-of date %q", domain.ErrInvalidInput, s)
		}
		asOf = parsed
	}

	loan, _, err := readLoan(v.GetString("file"), v.GetString("customer"))
	if err != nil {
		return err
	}

	rows, generated, err := amortization.BuildSchedule(*loan, nil, asOf)
	if err != nil {
		return err
	}
	summary := domain.Summarize(rows, generated)

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		return writeJSON(out, scheduleOutput{LoanID: loan.ID, Installments: rows, Summary: summary})
	}
	return printSchedule(out, loan, rows, summary)
}

func printSchedule(w io.Writer, loan *domain.Loan, rows []domain.ScheduledInstallment, summary domain.ScheduleSummary) error {
	source := "servicing"
	if summary.Generated {
		source = "generated"
	}
	fmt.Fprintf(w, "%s (%s), %s schedule\n\n", loan.Name, loan.ID, source)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDue\tPayment\tPrincipal\tInterest\tBalance\tStatus\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Number,
			row.Date.Format("2006-01-02"),
			money(row.Payment),
			money(row.Principal),
			money(row.Interest),
			money(row.Balance),
			row.Status,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d paid, %s remaining\n",
		summary.CompletedPayments, summary.TotalPayments, money(summary.RemainingAmount))
	return nil
}
