package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/loan"
	"github.com/libradesk/libradesk/internal/model"
)

func newLoansCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "track and manage loans",
	}
	cmd.AddCommand(
		newLoansListCmd(cfg),
		newLoansIssueCmd(cfg),
		newLoansReturnCmd(cfg),
		newLoansExtendCmd(cfg),
	)
	return cmd
}

func newLoansListCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list loans with their derived status",
	}
	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		items, code, err := core.Loans.ListLoans(ctx)
		if err := remoteErr(code, err, "list loans"); err != nil {
			return err
		}
		now := time.Now()
		w := newTable()
		fmt.Fprintln(w, "ID\tBOOK\tPERSON\tSTART\tDUE\tSTATUS")
		for _, l := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l.ID, l.BookID, l.PersonID,
				l.StartDate.Format(time.DateOnly),
				loan.DueDate(l).Format(time.DateOnly),
				loan.DeriveStatus(l, now))
		}
		return w.Flush()
	})
	return cmd
}

func newLoansIssueCmd(cfg config.Config) *cobra.Command {
	var req model.CreateLoanRequest
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "issue a book to a borrower (staff)",
	}
	cmd.Flags().StringVar(&req.BookID, "book", "", "book id")
	cmd.Flags().StringVar(&req.PersonID, "person", "", "borrower id")
	cmd.Flags().IntVar(&req.DurationDays, "days", 14, "loan duration in days")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("person")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		l, code, err := core.Loans.IssueLoan(ctx, req)
		if err := remoteErr(code, err, "issue loan"); err != nil {
			return err
		}
		fmt.Printf("issued %s, due %s\n", l.ID, loan.DueDate(l).Format(time.DateOnly))
		return nil
	})
	return cmd
}

func newLoansReturnCmd(cfg config.Config) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "return <loanId>",
		Short: "record a return (staff)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&date, "date", "", "return date, YYYY-MM-DD (default today)")

	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			when := time.Now()
			if date != "" {
				var err error
				if when, err = time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("parse date: %w", err)
				}
			}
			req := model.ReturnLoanRequest{Date: model.Date{Time: when}}
			l, code, err := core.Loans.ReturnLoan(ctx, args[0], req)
			if err := remoteErr(code, err, "return loan"); err != nil {
				return err
			}
			fmt.Printf("returned %s (%s)\n", l.ID, loan.DeriveStatus(l, time.Now()))
			return nil
		})(c, args)
	}
	return cmd
}

func newLoansExtendCmd(cfg config.Config) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "extend <loanId>",
		Short: "extend a running loan (staff)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&days, "days", 7, "days to add to the loan duration")

	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			l, code, err := core.Loans.ExtendLoan(ctx, args[0], model.ExtendLoanRequest{DurationDays: days})
			if err := remoteErr(code, err, "extend loan"); err != nil {
				return err
			}
			fmt.Printf("extended %s, due %s\n", l.ID, loan.DueDate(l).Format(time.DateOnly))
			return nil
		})(c, args)
	}
	return cmd
}
