// Package analyze provides the one-shot analysis command.
package analyze

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/retinascan/cmd/app"
	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/controller"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/upload"
)

// Credentials are used when the backend has no session for this client.
type Credentials struct {
	Username string
	Password string
}

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	var creds Credentials

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a retinal image",
		Long:  "Log in if needed, submit one retinal image for grading and print the result and the updated history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("RETINASCAN_PASSWORD")
			}
			a, err := app.New(settings, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()
			return Run(cmd.Context(), a.Controller, args[0], creds, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username to log in with when no session exists")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (defaults to $RETINASCAN_PASSWORD)")
	return cmd
}

// Run reads path and checks the session concurrently, logs in when needed and
// analyzes the image. Background history refreshes are awaited before returning.
func Run(ctx context.Context, c *controller.ViewController, path string, creds Credentials, stderr io.Writer) error {
	var img *upload.PendingImage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		img, err = upload.FromFile(path)
		return err
	})
	g.Go(func() error {
		return c.Init(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	c.Wait()

	if !img.IsImage() {
		fmt.Fprintf(stderr, "warning: %s looks like %s, submitting anyway\n", img.Filename(), img.ContentType())
	}

	if !c.Session().Active() {
		if creds.Username == "" || creds.Password == "" {
			return errors.Newf("not logged in: pass --username and --password").
				Component("cmd").
				Category(errors.CategoryAuth).
				Build()
		}
		if err := c.Login(ctx, creds.Username, creds.Password); err != nil {
			return err
		}
	}

	c.SelectImage(img)
	c.Wait()

	err := c.Analyze(ctx)
	c.Wait()
	return err
}
