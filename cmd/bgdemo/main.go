// Command bgdemo drives the login example extent (internal/bgexamples/login)
// from the terminal: it submits a handful of scripted actions against a
// live graph and prints the resulting state transitions, colorized when
// stdout is a terminal.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/behaviorgraph/bg/internal/bg"
	"github.com/behaviorgraph/bg/internal/bgdebug"
	"github.com/behaviorgraph/bg/internal/bgexamples/login"
	"github.com/behaviorgraph/bg/internal/bglog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		email, password string
		verbose         bool
		profile         bool
	)

	cmd := &cobra.Command{
		Use:   "bgdemo",
		Short: "Run the login example extent against a live behavior graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(os.Stdout, email, password, verbose, profile)
		},
	}

	cmd.Flags().StringVar(&email, "email", "alice@example.com", "email to submit")
	cmd.Flags().StringVar(&password, "password", "hunter22", "password to submit")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable trace-level graph logging")
	cmd.Flags().BoolVar(&profile, "profile", false, "attach a profiler and print timing stats on exit")

	return cmd
}

func run(out *os.File, email, password string, verbose, profile bool) error {
	if err := validateInput(email, password); err != nil {
		return err
	}

	colorize := isatty.IsTerminal(out.Fd())

	g := bg.NewGraph()
	level := hclog.Warn
	if verbose {
		level = hclog.Trace
	}
	g.SetLogger(bglog.New(bglog.Options{Name: "bgdemo", Level: level, Out: out}))

	var profiler *bgdebug.Profiler
	if profile {
		profiler = bgdebug.New()
		g.SetObserver(profiler)
	}

	var ext *login.Extent
	g.Action("setup", func() {
		ext = login.New(g, "loginForm")
		ext.AddToGraph()
	})

	printLine(out, colorize, "[green]setup complete[reset]: loginEnabled=%v", ext.LoginEnabled.Value())

	g.Action("type credentials", func() {
		ext.Email.UpdateValue(email)
		ext.Password.UpdateValue(password)
	})
	printLine(out, colorize, "after typing: emailValid=%v passwordValid=%v loginEnabled=%v",
		ext.EmailValid.Value(), ext.PasswordValid.Value(), ext.LoginEnabled.Value())

	g.Action("click login", func() {
		ext.LoginClick.Update()
	})
	printLine(out, colorize, "after click: loggingIn=%v", ext.LoggingIn.Value())

	if profiler != nil {
		fmt.Fprint(out, profiler.CycleTimeStats())
		fmt.Fprint(out, profiler.SortTimeStats())
	}
	return nil
}

// validateInput collects every flag problem instead of stopping at the
// first one, so a user fixing --email and --password together sees both
// complaints in one run.
func validateInput(email, password string) error {
	var result *multierror.Error
	if !strings.Contains(email, "@") {
		result = multierror.Append(result, fmt.Errorf("--email %q is missing an @", email))
	}
	if len(password) < 8 {
		result = multierror.Append(result, fmt.Errorf("--password must be at least 8 characters"))
	}
	return result.ErrorOrNil()
}

func printLine(out *os.File, colorize bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colorize {
		msg = colorstring.Color(msg)
	} else {
		msg = colorstring.Color("[reset]" + msg)
	}
	fmt.Fprintln(out, msg)
}

