package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/scanner"
)

func newSummaryCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "show library-wide statistics",
	}
	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		s, code, err := core.Stats.GetSummary(ctx)
		if err := remoteErr(code, err, "summary"); err != nil {
			return err
		}
		fmt.Printf("books: %d\npeople: %d\nloans: %d\noverdue: %d\n",
			s.Books, s.People, s.Loans, s.Overdue)
		return nil
	})
	return cmd
}

// lineSource adapts line-oriented input into the decode stream contract.
// It stands in for a camera decoder: each line is one decoded barcode.
type lineSource struct {
	r *bufio.Scanner
}

func (s *lineSource) Decodes(ctx context.Context, _ string) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for s.r.Scan() {
			code := strings.TrimSpace(s.r.Text())
			if code == "" {
				continue
			}
			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func newScanCmd(cfg config.Config) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "scan barcodes and resolve them against the bibliographic lookup",
		Long:  "Reads decoded barcodes line by line, keeps only ISBN-shaped ones and resolves each against the bibliographic lookup. The newest scan wins; a slow lookup for a superseded scan is dropped.",
	}
	cmd.Flags().StringVar(&device, "device", "stdin", "decode device handle")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		sess := scanner.NewSession(&lineSource{r: bufio.NewScanner(os.Stdin)}, core.Lookup, core.Log)
		results, err := sess.Run(ctx, device, scanner.IsISBN)
		if err != nil {
			return err
		}
		for res := range results {
			title := ""
			if res.Record != nil {
				title = res.Record.Title
			}
			if err := core.Store.AddScan(ctx, res.Identifier, title); err != nil {
				return err
			}
			if res.Record == nil {
				fmt.Printf("%s\t(no match)\n", res.Identifier)
				continue
			}
			fmt.Printf("%s\t%s (%s, %d)\n",
				res.Identifier, res.Record.Title,
				strings.Join(res.Record.Authors, ", "), res.Record.Year)
		}
		return nil
	})
	return cmd
}

func newLookupCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <isbn>",
		Short: "resolve an ISBN against the bibliographic lookup",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			if !scanner.IsISBN(args[0]) {
				return fmt.Errorf("%q does not look like an ISBN", args[0])
			}
			rec, code, err := core.Lookup.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				if code == http.StatusNotFound {
					fmt.Println("no match")
					return nil
				}
				return fmt.Errorf("lookup: unexpected status %d", code)
			}
			fmt.Printf("%s\n  authors: %s\n", rec.Title, strings.Join(rec.Authors, ", "))
			if rec.Year != 0 {
				fmt.Printf("  year:    %d\n", rec.Year)
			}
			return nil
		})(c, args)
	}
	return cmd
}

func newServeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the local HTTP facade in front of the remote API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cfg)
		},
	}
}
