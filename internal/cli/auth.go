package cli

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
)

// readPassword reads a masked password from the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}

func newLoginCmd(cfg config.Config) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "sign in and persist the session token",
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		if password == "" {
			var err error
			if password, err = readPassword("Password: "); err != nil {
				return err
			}
		}
		if err := core.Sessions.Login(ctx, email, password); err != nil {
			return err
		}
		if id, ok := core.Sessions.Identity(); ok {
			fmt.Printf("logged in as %s (%s)\n", id.Name, id.Role)
		}
		return nil
	})
	return cmd
}

func newRegisterCmd(cfg config.Config, librarian bool) *cobra.Command {
	var name, email, password string
	use, short := "register", "create a reader account"
	if librarian {
		use, short = "register-librarian", "create a librarian account (admin session required)"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		if password == "" {
			var err error
			if password, err = readPassword("Password: "); err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if confirm != password {
				return fmt.Errorf("passwords do not match")
			}
		}
		req := model.RegisterRequest{
			Name:     name,
			Email:    email,
			Password: password,
			Confirm:  password,
		}
		register := core.Sessions.Register
		if librarian {
			register = core.Sessions.RegisterLibrarian
		}
		if err := register(ctx, req); err != nil {
			return err
		}
		fmt.Printf("registered %s\n", email)
		return nil
	})
	return cmd
}

func newLogoutCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "forget the stored session",
	}
	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		core.Sessions.Logout(ctx)
		fmt.Println("logged out")
		return nil
	})
	return cmd
}

func newWhoamiCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "show the current session identity",
	}
	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		state := core.Sessions.State()
		if !state.Authenticated {
			fmt.Println("not logged in")
			return nil
		}
		id := state.Identity
		fmt.Printf("%s <%s> role=%s\n", id.Name, id.Email, id.Role)
		return nil
	})
	return cmd
}
