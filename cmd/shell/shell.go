// Package shell provides the interactive session command.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tphakala/retinascan/cmd/app"
	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/observability/metrics"
	"github.com/tphakala/retinascan/internal/upload"
	"github.com/tphakala/retinascan/internal/view"
)

const helpText = `Commands:
  login <username> [password]            log in
  register <username> <email> [password] create an account and log in
  logout                                 end the session
  select <image>                         choose an image to analyze
  analyze                                submit the selected image
  history                                refresh prediction history
  tab login|register                     switch the auth form
  html [fragment]                        print the page (or a region) as HTML
  stats                                  print client metrics
  help                                   show this help
  quit                                   leave the shell`

// Command creates the shell command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive screening session",
		Long:  "Start an interactive session against the screening backend. Type 'help' for commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			sh := New(a)
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// Shell reads commands line by line and drives the controller.
type Shell struct {
	app *app.App
	out io.Writer

	// readPassword prompts for a hidden password; nil when stdin is not a terminal.
	readPassword func() (string, error)
}

// New creates a shell writing to the app's output.
func New(a *app.App) *Shell {
	out := a.Out
	sh := &Shell{app: a, out: out}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		sh.readPassword = func() (string, error) {
			fmt.Fprint(out, "Password: ")
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return sh
}

// Run checks the session and executes commands from in until EOF, quit or ctx ends.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if err := s.app.Controller.Init(ctx); err != nil {
		return err
	}
	s.app.Controller.Wait()

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		s.exec(ctx, fields[0], fields[1:])
		s.app.Controller.Wait()
	}
}

// exec runs one command. Failures are already shown as toasts, so errors
// from the controller are not printed again.
func (s *Shell) exec(ctx context.Context, name string, args []string) {
	c := s.app.Controller
	switch name {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		if len(args) < 1 {
			s.usage("login <username> [password]")
			return
		}
		password, ok := s.password(args[1:])
		if !ok {
			return
		}
		_ = c.Login(ctx, args[0], password)
	case "register":
		if len(args) < 2 {
			s.usage("register <username> <email> [password]")
			return
		}
		password, ok := s.password(args[2:])
		if !ok {
			return
		}
		_ = c.Register(ctx, args[0], args[1], password)
	case "logout":
		_ = c.Logout(ctx)
	case "select":
		if len(args) != 1 {
			s.usage("select <image>")
			return
		}
		img, err := upload.FromFile(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "cannot read %s: %v\n", args[0], err)
			return
		}
		if !img.IsImage() {
			fmt.Fprintf(s.out, "warning: %s looks like %s\n", img.Filename(), img.ContentType())
		}
		c.SelectImage(img)
	case "analyze":
		_ = c.Analyze(ctx)
	case "history":
		if !c.Session().Active() {
			fmt.Fprintln(s.out, "not logged in")
			return
		}
		c.RefreshHistory()
	case "tab":
		if len(args) != 1 {
			s.usage("tab login|register")
			return
		}
		s.app.Terminal.SwitchTab(view.Tab(args[0]))
		fmt.Fprintln(s.out, view.Text(s.app.Terminal.Page, view.FragmentAuth))
	case "html":
		fragment := view.FragmentPage
		if len(args) == 1 {
			fragment = args[0]
		}
		if err := s.app.Terminal.RenderFragment(s.out, fragment); err != nil {
			fmt.Fprintf(s.out, "cannot render %s: %v\n", fragment, err)
		}
		fmt.Fprintln(s.out)
	case "stats":
		lines, err := metrics.Summarize(s.app.Metrics.Registry(), "retinascan_")
		if err != nil {
			fmt.Fprintf(s.out, "cannot gather metrics: %v\n", err)
			return
		}
		for _, l := range lines {
			if strings.HasPrefix(l.Name, "retinascan_devserver_") {
				continue
			}
			fmt.Fprintln(s.out, l.String())
		}
	default:
		fmt.Fprintf(s.out, "unknown command %q, type 'help'\n", name)
	}
}

func (s *Shell) password(args []string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}
	if s.readPassword == nil {
		s.usage("password required when input is not a terminal")
		return "", false
	}
	p, err := s.readPassword()
	if err != nil {
		fmt.Fprintf(s.out, "cannot read password: %v\n", err)
		return "", false
	}
	return p, true
}

func (s *Shell) usage(msg string) {
	fmt.Fprintf(s.out, "usage: %s\n", msg)
}
