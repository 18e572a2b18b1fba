package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
)

func newBooksCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "browse and manage the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(cfg),
		newBooksGetCmd(cfg),
		newBooksAddCmd(cfg),
		newBooksUpdateCmd(cfg),
		newBooksRemoveCmd(cfg),
	)
	return cmd
}

func newBooksListCmd(cfg config.Config) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list catalog books",
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title or author")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		books, code, err := core.Catalog.ListBooks(ctx, search)
		if err := remoteErr(code, err, "list books"); err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tYEAR\tISBN")
		for _, b := range books {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", b.ID, b.Title, b.Author, b.Year, b.ISBN)
		}
		return w.Flush()
	})
	return cmd
}

func newBooksGetCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <bookId>",
		Short: "show one book",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			book, code, err := core.Catalog.GetBook(ctx, args[0])
			if err := remoteErr(code, err, "get book"); err != nil {
				return err
			}
			printBook(book)
			return nil
		})(c, args)
	}
	return cmd
}

func newBooksAddCmd(cfg config.Config) *cobra.Command {
	var req model.CreateBookRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a book to the catalog (staff)",
	}
	bindBookFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		book, code, err := core.Catalog.CreateBook(ctx, req)
		if err := remoteErr(code, err, "create book"); err != nil {
			return err
		}
		fmt.Printf("created %s\n", book.ID)
		return nil
	})
	return cmd
}

func newBooksUpdateCmd(cfg config.Config) *cobra.Command {
	var req model.CreateBookRequest
	cmd := &cobra.Command{
		Use:   "update <bookId>",
		Short: "update a catalog book (staff)",
		Args:  cobra.ExactArgs(1),
	}
	bindBookFlags(cmd, &req)

	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			book, code, err := core.Catalog.UpdateBook(ctx, args[0], req)
			if err := remoteErr(code, err, "update book"); err != nil {
				return err
			}
			printBook(book)
			return nil
		})(c, args)
	}
	return cmd
}

func newBooksRemoveCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <bookId>",
		Short: "remove a catalog book (staff)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			code, err := core.Catalog.DeleteBook(ctx, args[0])
			if err := remoteErr(code, err, "delete book"); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		})(c, args)
	}
	return cmd
}

func bindBookFlags(cmd *cobra.Command, req *model.CreateBookRequest) {
	cmd.Flags().StringVar(&req.Title, "title", "", "book title")
	cmd.Flags().StringVar(&req.Author, "author", "", "book author")
	cmd.Flags().StringVar(&req.Genre, "genre", "", "genre")
	cmd.Flags().StringVar(&req.ISBN, "isbn", "", "ISBN identifier")
	cmd.Flags().IntVar(&req.Year, "year", 0, "publication year")
}

func printBook(b model.Book) {
	fmt.Printf("%s\n  author: %s\n", b.Title, b.Author)
	if b.Genre != "" {
		fmt.Printf("  genre:  %s\n", b.Genre)
	}
	if b.Year != 0 {
		fmt.Printf("  year:   %d\n", b.Year)
	}
	if b.ISBN != "" {
		fmt.Printf("  isbn:   %s\n", b.ISBN)
	}
	fmt.Printf("  id:     %s\n", b.ID)
}

// remoteErr collapses the (status, error) pair of a remote call into a
// single error for command output.
func remoteErr(code int, err error, op string) error {
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: not logged in", op)
	case http.StatusForbidden:
		return fmt.Errorf("%s: insufficient role", op)
	case http.StatusNotFound:
		return fmt.Errorf("%s: not found", op)
	default:
		return fmt.Errorf("%s: unexpected status %d", op, code)
	}
}
