package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"petlink/internal/apiclient"
	"petlink/internal/app"
	"petlink/internal/config"
	"petlink/internal/notify"
	"petlink/internal/util"
	"petlink/pkg/store"
)

// cli carries the global flags and the lazily built client shared by all
// subcommands of one invocation.
type cli struct {
	configPath string
	apiURL     string
	assumeYes  bool

	in     io.Reader
	reader *bufio.Reader
	errOut io.Writer

	app *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "petlink",
		Short:         "Pet-care marketplace client",
		Long:          "petlink logs in to the pet-care marketplace and manages care orders, their chat, proposals and your profile.",
		Version:       "dev",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "marketplace API base URL")
	root.PersistentFlags().BoolVarP(&c.assumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newOrdersCmd(c),
		newMessagesCmd(c),
		newProfileCmd(c),
		newProposalsCmd(c),
	)
	return root
}

// client builds the app on first use and restores any stored session.
func (c *cli) client(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	c.errOut = cmd.ErrOrStderr()

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.apiURL != "" {
		cfg.APIBaseURL = strings.TrimRight(c.apiURL, "/")
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFormat, c.errOut)

	timeout, err := config.ParseHTTPTimeout(cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	loc, err := config.ParseTimezone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	toasts := notify.New()
	toasts.Subscribe(toastPrinter(c.errOut))

	a, err := app.New(app.Config{
		API:      apiclient.NewClient(cfg.APIBaseURL, timeout),
		Storage:  kv,
		Notifier: toasts,
		Confirm:  c.confirm,
		Location: loc,
	})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	if _, err := a.Restore(cmd.Context()); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
	}
}

func (c *cli) lineReader() *bufio.Reader {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	return c.reader
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.errOut, prompt)
	line, err := c.lineReader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (c *cli) readPassword(prompt string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.errOut, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return c.readLine(prompt)
}

func (c *cli) confirm(prompt string) bool {
	if c.assumeYes {
		return true
	}
	answer, err := c.readLine(prompt + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
