package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sho7650/toasty/internal/cli"
	"github.com/sho7650/toasty/internal/config"
	"github.com/sho7650/toasty/internal/hooks"
	"github.com/sho7650/toasty/internal/logging"
	"github.com/sho7650/toasty/internal/notifier"
	"github.com/sho7650/toasty/internal/preset"
)

var version = "dev"

// Exit codes
const (
	exitFailure = 1
	exitUsage   = 2
)

// deps are the process-level collaborators, replaced in tests
type deps struct {
	out        io.Writer
	errOut     io.Writer
	sender     func(cfg *config.Config) notifier.Sender
	detect     func() (preset.Preset, bool)
	executable func() (string, error)
}

func defaultDeps() deps {
	return deps{
		out:    os.Stdout,
		errOut: os.Stderr,
		sender: func(cfg *config.Config) notifier.Sender {
			n := notifier.New(cfg.AppID)
			n.SetEnabled(cfg.Enabled)
			return n
		},
		detect:     preset.Detect,
		executable: executablePath,
	}
}

type notifyOptions struct {
	title    string
	image    string
	audio    string
	sound    bool
	duration string
	open     string
	buttons  []string
	preset   string
}

type app struct {
	deps
	configPath string
	verbose    bool
	cfg        *config.Config
	log        zerolog.Logger
}

func main() {
	rootCmd := newRootCmd(defaultDeps())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, hooks.ErrUnknownIntegration) {
		return exitUsage
	}
	return exitFailure
}

func newRootCmd(d deps) *cobra.Command {
	a := &app{deps: d}
	opts := &notifyOptions{}

	rootCmd := &cobra.Command{
		Use:   "toasty <message> [flags]",
		Short: "Desktop notifications for the command line and AI CLI agents",
		Long: `toasty shows a native desktop notification. It can also install hooks into
AI CLI agents (Claude Code, Gemini CLI, GitHub Copilot, Cursor) so that they
notify you when they finish.`,
		Example: `  toasty "Build completed"
  toasty "Task done" -t "Claude Code"
  toasty install
  toasty install claude
  toasty status`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if cmd.Flags().NFlag() == 0 {
					return cmd.Help()
				}
				cmd.SilenceUsage = false
				return errors.New("message is required")
			}
			return a.runNotify(args[0], opts)
		},
	}
	rootCmd.SetOut(d.out)
	rootCmd.SetErr(d.errOut)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+filepath.Join(config.GetConfigDir(), "config.yaml")+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug details to stderr")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.title, "title", "t", "", `Notification title (default: preset title or "Notification")`)
	flags.StringVarP(&opts.image, "image", "i", "", "Image shown as the notification icon")
	flags.StringVarP(&opts.audio, "audio", "a", "", "Audio cue: default, im, mail, reminder, sms or silent")
	flags.BoolVarP(&opts.sound, "sound", "s", false, "Play an alert sound")
	flags.StringVar(&opts.duration, "duration", "", "How long the notification stays: short or long")
	flags.StringVar(&opts.open, "open", "", "URL opened when the notification is clicked")
	flags.StringArrayVarP(&opts.buttons, "button", "b", nil, "Action button as label=url (repeatable)")
	flags.StringVarP(&opts.preset, "preset", "p", "auto", "Preset for the calling app: auto, none or a preset name")

	rootCmd.AddCommand(newInstallCmd(a), newUninstallCmd(a), newStatusCmd(a))

	// Version subcommand
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toasty %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "install [claude|gemini|copilot|cursor|all]",
		Short:     "Install toasty hooks for AI CLI agents",
		Long:      `Install a hook that runs toasty when the agent finishes. Only agents detected on this machine are touched.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: append(hooks.Names(), cli.All),
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := a.executable()
			if err != nil {
				return fmt.Errorf("failed to resolve executable path: %w", err)
			}
			return a.runner().Install(firstArg(args), exe)
		},
	}
}

func newUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "uninstall [claude|gemini|copilot|cursor|all]",
		Short:     "Remove toasty hooks from AI CLI agents",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: append(hooks.Names(), cli.All),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runner().Uninstall(firstArg(args))
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which agents are detected and which hooks are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.runner()
			if !watch {
				r.Status()
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return r.WatchStatus(ctx, a.log)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reprint the status whenever a config file changes")
	return cmd
}

func (a *app) init() error {
	a.log = logging.New(a.errOut, a.verbose)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.File != "" {
		a.log.Debug().Str("path", cfg.File).Msg("config loaded")
	}
	return nil
}

func (a *app) runner() *cli.Runner {
	manager := hooks.NewManager(a.cfg.Env(), a.log)
	return cli.NewRunner(manager, a.cfg.Integrations(), a.out)
}

func (a *app) runNotify(message string, opts *notifyOptions) error {
	title, err := a.resolveTitle(opts)
	if err != nil {
		return err
	}

	n := notifier.Notification{
		Title:    title,
		Message:  message,
		Image:    opts.image,
		Audio:    opts.audio,
		Sound:    opts.sound,
		Duration: opts.duration,
		Open:     opts.open,
	}
	for _, raw := range opts.buttons {
		b, err := notifier.ParseButton(raw)
		if err != nil {
			return err
		}
		n.Buttons = append(n.Buttons, b)
	}

	return a.sender(a.cfg).Send(n)
}

// resolveTitle picks the --title flag, then the calling app's preset, then
// the configured default
func (a *app) resolveTitle(opts *notifyOptions) (string, error) {
	if opts.title != "" {
		return opts.title, nil
	}

	switch opts.preset {
	case "none":
	case "", "auto":
		if p, ok := a.detect(); ok {
			a.log.Debug().Str("preset", p.Name).Msg("detected calling app")
			return p.Title, nil
		}
	default:
		p, ok := preset.Lookup(opts.preset)
		if !ok {
			return "", fmt.Errorf("unknown preset %q", opts.preset)
		}
		return p.Title, nil
	}
	return a.cfg.Title, nil
}

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
