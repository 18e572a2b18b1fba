package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
)

func newPeopleCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "manage registered people (admin)",
	}
	cmd.AddCommand(
		newPeopleListCmd(cfg),
		newPeopleGetCmd(cfg),
		newPeopleUpdateCmd(cfg),
		newPeopleRemoveCmd(cfg),
	)
	return cmd
}

func newPeopleListCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list people",
	}
	cmd.RunE = withCore(cfg, func(ctx context.Context, core *app.Core) error {
		items, code, err := core.People.ListPeople(ctx)
		if err := remoteErr(code, err, "list people"); err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.Role)
		}
		return w.Flush()
	})
	return cmd
}

func newPeopleGetCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <personId>",
		Short: "show one person",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			p, code, err := core.People.GetPerson(ctx, args[0])
			if err := remoteErr(code, err, "get person"); err != nil {
				return err
			}
			fmt.Printf("%s <%s> role=%s id=%s\n", p.Name, p.Email, p.Role, p.ID)
			return nil
		})(c, args)
	}
	return cmd
}

func newPeopleUpdateCmd(cfg config.Config) *cobra.Command {
	var req model.UpdatePersonRequest
	var role string
	cmd := &cobra.Command{
		Use:   "update <personId>",
		Short: "update a person's profile or role",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(model.RoleReader), "reader, librarian or admin")

	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			req.Role = model.Role(role)
			p, code, err := core.People.UpdatePerson(ctx, args[0], req)
			if err := remoteErr(code, err, "update person"); err != nil {
				return err
			}
			fmt.Printf("updated %s\n", p.ID)
			return nil
		})(c, args)
	}
	return cmd
}

func newPeopleRemoveCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <personId>",
		Short: "remove a person",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withCore(cfg, func(ctx context.Context, core *app.Core) error {
			code, err := core.People.DeletePerson(ctx, args[0])
			if err := remoteErr(code, err, "delete person"); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		})(c, args)
	}
	return cmd
}
