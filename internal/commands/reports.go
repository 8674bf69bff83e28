package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <fy>",
		Short: "Show payroll and review state for every month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.payroll.PaymentSummary(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MONTH\tPAID\tJOURNALS\tUNCHECKED\tALL CHECKED")
				for _, m := range summary {
					fmt.Fprintf(w, "%d\t%t\t%d\t%d\t%t\n", m.Month, m.IsPaid, m.TotalCount, m.UncheckedCount, m.AllChecked)
				}
				return w.Flush()
			})
		},
	}
}

func newPayrollCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Inspect or change payroll payment state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <fy>",
		Short: "List recorded payroll payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				payments, err := a.payroll.GetPaymentStatuses(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MONTH\tPAID")
				for _, p := range payments {
					fmt.Fprintf(w, "%d\t%t\n", p.Month, p.IsPaid)
				}
				return w.Flush()
			})
		},
	})

	var unpaid bool
	set := &cobra.Command{
		Use:   "set <fy> <month>",
		Short: "Mark a month paid, locking its journals",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := core.ParseMonth(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.payroll.SetPaymentStatus(ctx, args[0], month, !unpaid)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fiscal year %s month %d paid: %t\n", p.FiscalYear, p.Month, p.IsPaid)
				return nil
			})
		},
	}
	set.Flags().BoolVar(&unpaid, "unpaid", false, "reopen the month instead")
	cmd.AddCommand(set)

	return cmd
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print aggregated reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cash <fy>",
		Short: "Cash and deposit balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				balance, err := a.agg.CashBalance(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CATEGORY\tNAME\tDEBIT\tCREDIT\tBALANCE")
				for _, e := range balance.Entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.CategoryCode, e.CategoryName, e.Debit, e.Credit, e.Balance)
				}
				fmt.Fprintf(w, "total\t\t%s\t\t%s\n", balance.Total, balance.NetTotal)
				return w.Flush()
			})
		},
	})

	var kind, granularity, category string
	breakdown := &cobra.Command{
		Use:   "breakdown <fy>",
		Short: "Amounts by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.agg.Breakdown(ctx, args[0], services.BreakdownQuery{
					Kind:         services.BreakdownKind(kind),
					Granularity:  services.Granularity(granularity),
					CategoryCode: category,
				})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MONTH\tCATEGORY\tNAME\tAMOUNT\tSHARE")
				for _, r := range result.Rows {
					month := "-"
					if r.Month != 0 {
						month = fmt.Sprint(r.Month)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n", month, r.CategoryCode, r.CategoryName, r.Amount, r.Share.StringFixed(1))
				}
				fmt.Fprintf(w, "total\t\t\t%s\t\n", result.Total)
				return w.Flush()
			})
		},
	}
	breakdown.Flags().StringVar(&kind, "kind", string(services.BreakdownExpense), "asset, expense or income")
	breakdown.Flags().StringVar(&granularity, "granularity", string(services.ByYear), "month or year")
	breakdown.Flags().StringVar(&category, "category", "", "only this category code")
	cmd.AddCommand(breakdown)

	cmd.AddCommand(&cobra.Command{
		Use:   "counts <fy>",
		Short: "Live journal count per account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				counts, err := a.agg.CountByAccount(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ACCOUNT\tNAME\tCATEGORY\tCOUNT")
				for _, c := range counts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.AccountCode, c.AccountName, c.CategoryCode, c.Count)
				}
				return w.Flush()
			})
		},
	})

	return cmd
}
