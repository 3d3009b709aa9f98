// Package history provides the history listing command.
package history

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tphakala/retinascan/cmd/app"
	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/controller"
	"github.com/tphakala/retinascan/internal/errors"
)

// Command creates the history command.
func Command(settings *conf.Settings) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()
			return Run(cmd.Context(), a.Controller, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to log in with when no session exists")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	return cmd
}

// Run shows the history of the current session, logging in first when
// credentials are given and no session exists.
func Run(ctx context.Context, c *controller.ViewController, username, password string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	c.Wait()
	if c.Session().Active() {
		return nil
	}

	if username == "" || password == "" {
		return errors.Newf("not logged in: pass --username and --password").
			Component("cmd").
			Category(errors.CategoryAuth).
			Build()
	}
	if err := c.Login(ctx, username, password); err != nil {
		return err
	}
	c.Wait()
	return nil
}
