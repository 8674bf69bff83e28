package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/storage"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(opts.dbPath); err != nil {
				return err
			}
			version, dirty, _, err := storage.MigrationVersion(opts.dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}

func newFiscalYearsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fiscal-years",
		Aliases: []string{"fy"},
		Short:   "List or open fiscal years",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List fiscal years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				years, err := a.repo.ListFiscalYears(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "YEAR\tSTART\tEND\tFIXED")
				for _, y := range years {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", y.Code, y.StartDate, y.EndDate, y.Fixed)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open <fy>",
		Short: "Open a fiscal year and fix every earlier one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fy, err := core.ParseFiscalYear(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				year, err := a.repo.OpenFiscalYear(ctx, fy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Opened fiscal year %s (%s - %s)\n", year.Code, year.StartDate, year.EndDate)
				return nil
			})
		},
	})

	return cmd
}

func newJournalsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journals",
		Short: "Record, review and delete journals",
	}
	cmd.AddCommand(
		newJournalsAddCommand(opts),
		newJournalsListCommand(opts),
		newJournalsCheckCommand(opts),
		newJournalsDeleteCommand(opts),
	)
	return cmd
}

func newJournalsAddCommand(opts *rootOptions) *cobra.Command {
	var (
		date, debit, credit, note, amount string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a balanced journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := core.ParseDate(date)
			if err != nil {
				return err
			}
			yen, err := core.ParseYen(amount)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				j, err := a.journals.CreateJournal(ctx, core.JournalInput{
					FiscalYear:    core.FiscalYearOf(d),
					Date:          d,
					DebitAccount:  debit,
					DebitAmount:   yen,
					CreditAccount: credit,
					CreditAmount:  yen,
					Note:          note,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded journal %d in fiscal year %s\n", j.ID, j.FiscalYear)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "journal date YYYYMMDD (required)")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account code (required)")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account code (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in yen (required)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	for _, name := range []string{"date", "debit", "credit", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newJournalsListCommand(opts *rootOptions) *cobra.Command {
	var month, account string

	cmd := &cobra.Command{
		Use:   "list <fy>",
		Short: "List live journals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := core.ParseMonthFilter(month)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				js, err := a.journals.ListJournals(ctx, args[0], core.JournalFilter{Month: m, Account: account})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tDEBIT\tCREDIT\tAMOUNT\tCHECKED\tNOTE")
				for _, j := range js {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
						j.ID, j.Date, j.DebitAccount, j.CreditAccount, j.DebitAmount, j.Checked, j.Note)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "calendar month 1-12; empty lists the whole year")
	cmd.Flags().StringVar(&account, "account", "", "only journals touching this account")
	return cmd
}

func newJournalsCheckCommand(opts *rootOptions) *cobra.Command {
	var uncheck bool

	cmd := &cobra.Command{
		Use:   "check <fy> <id>",
		Short: "Mark a journal reviewed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				j, err := a.journals.SetChecked(ctx, args[0], id, !uncheck)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Journal %d checked: %t\n", j.ID, j.Checked)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&uncheck, "uncheck", false, "clear the review flag instead")
	return cmd
}

func newJournalsDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <fy> <id>...",
		Short: "Soft delete journals",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				n, err := a.journals.SoftDelete(ctx, args[0], ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d journal(s)\n", n)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validation(core.CodeInvalidRequest, "invalid journal id %q", s)
	}
	return id, nil
}
