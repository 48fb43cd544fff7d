package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"admute/internal/logging"
)

func newShellCmd(opts *options) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Args:  cobra.NoArgs,
		Short: "Start an interactive shell over the admute commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          prompt,
				HistoryFile:     filepath.Join(os.TempDir(), "admute-shell.history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()
			return runShell(rl.Readline, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "admute> ", "shell prompt")
	return cmd
}

// runShell reads lines until EOF or exit and dispatches them to a fresh
// command tree. Persistent flags given to the shell carry over to every
// command; the log file sink stays with the outer command.
func runShell(readLine func() (string, error), out io.Writer, opts *options) error {
	session := *opts
	session.logFile = ""
	session.logCloser = nil

	fmt.Fprintln(out, "Interactive shell. Type 'help' for usage, 'exit' to quit.")
	for {
		line, err := readLine()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(out)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "help":
			printShellHelp(out)
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(out, "parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "log":
			if err := handleShellLog(out, tokens[1:], &session); err != nil {
				fmt.Fprintf(out, "log: %v\n", err)
			}
			continue
		case "shell":
			fmt.Fprintln(out, "Already in the shell. Enter a command or 'exit' to quit.")
			continue
		}

		if err := executeArgs(out, &session, tokens); err != nil {
			fmt.Fprintf(out, "command error: %v\n", err)
		}
	}
}

func executeArgs(out io.Writer, session *options, args []string) error {
	if len(args) == 0 {
		return nil
	}
	// Each command gets its own copy; only verbosity changes persist.
	opts := *session
	root := newRootCmd(&opts)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	session.verbosity = opts.verbosity
	return err
}

func handleShellLog(out io.Writer, args []string, session *options) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "set level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "print the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Fprintf(out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		session.verbosity = count
	case vcount > 0:
		session.verbosity = vcount
	default:
		fmt.Fprintf(out, "log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	logging.SetVerbosity(session.verbosity)
	fmt.Fprintf(out, "log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp(out io.Writer) {
	fmt.Fprintln(out, `Examples:
  run --addr 127.0.0.1:7070   # start the monitor with the status API
  once --dry-run              # one detection pass, no audio changes
  check "Advertisement"       # which pattern matches this title
  patterns list               # show the merged pattern set
  patterns add "Spotify Ad"   # append a pattern to the first file
  windows                     # list open window titles
  mute / unmute               # apply once to the target process
  log -vv                     # more verbose logging
  log --show                  # print the current level
  exit / quit                 # leave the shell`)
}
