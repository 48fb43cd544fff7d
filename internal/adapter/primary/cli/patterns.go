package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"admute/internal/adapter/secondary/repository"
)

func newPatternsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect or edit the ad pattern files",
	}
	cmd.AddCommand(newPatternsListCmd(opts), newPatternsAddCmd(opts), newPatternsRemoveCmd(opts))
	return cmd
}

func newPatternsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern-file...]",
		Short: "Show the merged pattern set in match order",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.addSources(args)
			set := loadStore(opts).Snapshot()
			out := cmd.OutOrStdout()
			for i, p := range set.All() {
				suffix := ""
				if p.Literal() {
					suffix = "\t(literal)"
				}
				fmt.Fprintf(out, "%3d  %s%s\n", i+1, p.String(), suffix)
			}
			fmt.Fprintf(out, "%d pattern(s) from %d file(s)\n", set.Len(), len(opts.sources))
			return nil
		},
	}
}

func newPatternsAddCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Append a pattern to a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetFile(opts, file)
			if err != nil {
				return err
			}
			if err := repository.NewFileRepository().Append(path, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q to %s\n", args[0], path)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "pattern file to edit (default: first --config-files entry)")
	return cmd
}

func newPatternsRemoveCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "remove <pattern>",
		Short: "Remove every line equal to pattern from a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetFile(opts, file)
			if err != nil {
				return err
			}
			n, err := repository.NewFileRepository().Remove(path, args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%q not found in %s", args[0], path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d line(s) from %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "pattern file to edit (default: first --config-files entry)")
	return cmd
}

func targetFile(opts *options, file string) (string, error) {
	if file != "" {
		return file, nil
	}
	if len(opts.sources) == 0 {
		return "", errors.New("no pattern file given")
	}
	return opts.sources[0], nil
}
