package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"admute/internal/adapter/primary/web"
	"admute/internal/adapter/secondary/audio"
	"admute/internal/adapter/secondary/process"
	"admute/internal/adapter/secondary/repository"
	"admute/internal/adapter/secondary/watch"
	"admute/internal/adapter/secondary/window"
	"admute/internal/domain"
	"admute/internal/logging"
	"admute/internal/usecase"
)

// options holds the persistent flags shared by every command.
type options struct {
	sources   []string
	process   string
	verbosity int
	logFile   string

	logCloser io.Closer
}

// addSources appends pattern files given as positional arguments, so
// `-c a.cfg b.cfg` reads both files.
func (o *options) addSources(files []string) {
	o.sources = append(append([]string(nil), o.sources...), files...)
}

func defaultOptions() options {
	return options{
		sources: []string{repository.DefaultPath()},
		process: domain.DefaultTargetProcess,
	}
}

// Secondary adapter constructors. Tests replace them with fakes.
var (
	newLiveness   = process.NewGopsutilLiveness
	newEnumerator = window.NewSystemEnumerator
	newAudio      = func(tool string, dryRun bool) domain.AudioControl {
		if dryRun {
			return audio.NewNoopController()
		}
		return audio.NewSystemController(tool)
	}
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	opts := defaultOptions()
	return newRootCmd(&opts)
}

// newRootCmd builds the command tree with opts' current values as flag
// defaults, so the shell can carry session values between commands.
func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "admute",
		Short:        "Mute a media player while it plays advertisements",
		Long:         "Watches window titles for ad patterns and mutes the player's audio sessions while an ad is on screen.",
		SilenceUsage: true,
	}

	// CountVarP zeroes its target; keep the session value.
	verbosity := opts.verbosity
	pf := cmd.PersistentFlags()
	pf.StringSliceVarP(&opts.sources, "config-files", "c", opts.sources, "pattern files to read (repeatable)")
	pf.StringVar(&opts.process, "process", opts.process, "executable name of the media player")
	pf.CountVarP(&opts.verbosity, "verbose", "v", "increase console logging (-v, -vv, ... up to 4)")
	pf.StringVar(&opts.logFile, "log-file", opts.logFile, "also write debug logs to this file")
	opts.verbosity = verbosity

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.SetVerbosity(opts.verbosity)
		if opts.logFile == "" {
			return nil
		}
		closer, err := logging.SetFile(opts.logFile)
		if err != nil {
			return err
		}
		opts.logCloser = closer
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if opts.logCloser == nil {
			return nil
		}
		err := opts.logCloser.Close()
		opts.logCloser = nil
		return err
	}

	cmd.AddCommand(
		newRunCmd(opts),
		newOnceCmd(opts),
		newCheckCmd(opts),
		newPatternsCmd(opts),
		newWindowsCmd(),
		newMuteCmd(opts, true),
		newMuteCmd(opts, false),
		newShellCmd(opts),
	)

	return cmd
}

// runFlags are the monitor tuning flags of run and once.
type runFlags struct {
	tick           time.Duration
	patternDelay   time.Duration
	reloadInterval time.Duration
	dryRun         bool
	tool           string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	def := domain.DefaultSettings()
	cmd.Flags().DurationVar(&f.tick, "tick", def.TickInterval, "interval between detection passes")
	cmd.Flags().DurationVar(&f.patternDelay, "pattern-delay", def.PatternDelay, "pause between pattern checks within a pass")
	cmd.Flags().DurationVar(&f.reloadInterval, "reload-interval", def.ReloadInterval, "interval between pattern file reloads")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "log mute decisions without touching audio")
	cmd.Flags().StringVar(&f.tool, "nircmd", "", "path to nircmd.exe (windows only)")
}

func (f *runFlags) settings(opts *options) domain.Settings {
	s := domain.DefaultSettings()
	s.TargetProcess = opts.process
	s.Sources = append([]string(nil), opts.sources...)
	s.TickInterval = f.tick
	s.PatternDelay = f.patternDelay
	s.ReloadInterval = f.reloadInterval
	return s
}

func newMonitor(opts *options, f *runFlags) (usecase.MonitorUseCase, error) {
	return usecase.NewMonitorUseCase(f.settings(opts), usecase.Ports{
		Patterns: repository.NewFileRepository(),
		Process:  newLiveness(),
		Windows:  window.NewFinder(newEnumerator()),
		Audio:    newAudio(f.tool, f.dryRun),
	})
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		flags  runFlags
		watchF bool
		addr   string
	)
	cmd := &cobra.Command{
		Use:   "run [pattern-file...]",
		Short: "Start the ad mute loop",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.addSources(args)
			if opts.verbosity == 0 {
				logging.SetVerbosity(1)
			}
			uc, err := newMonitor(opts, &flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return serve(ctx, cmd.OutOrStdout(), uc, opts.sources, watchF, addr)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&watchF, "watch", true, "reload pattern files as soon as they change")
	cmd.Flags().StringVar(&addr, "addr", "", "serve the JSON status API on this address (e.g. 127.0.0.1:7070)")
	return cmd
}

// serve runs the monitor, the optional file watcher and the optional
// status API until ctx is cancelled.
func serve(ctx context.Context, out io.Writer, uc usecase.MonitorUseCase, sources []string, watchFiles bool, addr string) error {
	st := uc.Status()
	fmt.Fprintf(out, "admute watching %s with %d pattern(s)\n", st.TargetProcess, st.Patterns)
	logging.Infof("monitor started for %s", st.TargetProcess)
	uc.Start(ctx)

	if watchFiles {
		w, err := watch.NewFileWatcher(sources, func(string) { uc.TriggerReload() })
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			logging.Warnf("file watcher disabled: %v", err)
		}
	}

	if addr == "" {
		<-ctx.Done()
		fmt.Fprintln(out, "admute shutting down...")
		return nil
	}

	srv := web.NewServer(uc, addr)
	fmt.Fprintf(out, "status API at http://%s/api/status\n", addr)
	logging.Infof("status API: http://%s", addr)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Fprintln(out, "admute shutting down...")
	return nil
}

func newOnceCmd(opts *options) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "once [pattern-file...]",
		Short: "Run a single detection pass and print the result",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.addSources(args)
			uc, err := newMonitor(opts, &flags)
			if err != nil {
				return err
			}
			res := uc.Tick(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", res.State)
			fmt.Fprintf(out, "action: %s\n", res.Action)
			fmt.Fprintf(out, "patterns checked: %d\n", res.Checked)
			if res.Pattern != "" {
				fmt.Fprintf(out, "matched: %q (%s)\n", res.Pattern, res.Window.Title)
			}
			if res.Err != nil {
				fmt.Fprintf(out, "error: %v\n", res.Err)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <title>",
		Short: "Report which pattern, if any, matches a window title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := loadStore(opts)
			out := cmd.OutOrStdout()
			if p, ok := store.Snapshot().FirstMatch(args[0]); ok {
				fmt.Fprintf(out, "match: %q\n", p.String())
				return nil
			}
			fmt.Fprintln(out, "no match")
			return nil
		},
	}
}

func newWindowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List the titles of open windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wins, err := newEnumerator().Windows(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range wins {
				if w.Title == "" {
					continue
				}
				fmt.Fprintf(out, "%#x\t%s\n", w.Handle, w.Title)
			}
			return nil
		},
	}
}

func newMuteCmd(opts *options, mute bool) *cobra.Command {
	var (
		tool   string
		dryRun bool
	)
	use, short := "unmute", "Unmute the target process once"
	if mute {
		use, short = "mute", "Mute the target process once"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := newAudio(tool, dryRun)
			if err := ctrl.SetMute(cmd.Context(), opts.process, mute); err != nil {
				return &domain.ControlError{Process: opts.process, Mute: mute, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: mute=%t\n", opts.process, mute)
			return nil
		},
	}
	cmd.Flags().StringVar(&tool, "nircmd", "", "path to nircmd.exe (windows only)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the action without touching audio")
	return cmd
}

func loadStore(opts *options) *usecase.PatternStore {
	store := usecase.NewPatternStore(repository.NewFileRepository(), opts.sources, nil)
	if err := store.Init(); err != nil {
		logging.Debugf("pattern load skipped sources: %v", err)
	}
	return store
}
