package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boolean-maybe/richprompt/expand"
	"github.com/boolean-maybe/richprompt/internal/config"
	"github.com/boolean-maybe/richprompt/richprompt"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [FILE]",
	Short: "Print the highlighted markup of a prompt",
	Long:  `Reads a prompt from FILE (or stdin) and prints the markup the editor renders.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if stages, _ := cmd.Flags().GetBool("stages"); stages {
			for _, name := range richprompt.StageNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		text, err := readInput(firstArg(args))
		if err != nil {
			return err
		}
		names := loadNames(cmd.Context()).Snapshot()
		fmt.Fprintln(cmd.OutOrStdout(), richprompt.NewHighlighter(cfg.Palette).Highlight(text, names))
		return nil
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand [FILE]",
	Short: "Resolve wildcards and choice sets in a prompt",
	Long: `Reads a prompt from FILE (or stdin), resolves wildcards and {a|b} sets and
prints the cleaned-up result. The same seed always gives the same output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(firstArg(args))
		if err != nil {
			return err
		}

		seed, _ := cmd.Flags().GetUint64("seed")
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}
		count, _ := cmd.Flags().GetInt("count")
		applyExpandFlags(cmd)

		e := expand.New(&expand.DirSource{Dir: cfg.WildcardDir}, cfg.Expand)
		for i := range max(count, 1) {
			out, err := e.Expand(cmd.Context(), text, seed+uint64(i))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// the config file may not exist or parse yet
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := firstArg(args)
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			path = filepath.Join(home, ".config", "richprompt", "config.yaml")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	highlightCmd.Flags().Bool("stages", false, "list the highlighting stages in order and exit")

	expandCmd.Flags().Uint64("seed", 0, "random seed (default: current time)")
	expandCmd.Flags().IntP("count", "n", 1, "number of expansions, using consecutive seeds")
	expandCmd.Flags().Bool("single-line", false, "join the result into one line")
	expandCmd.Flags().String("suffix", "", "text appended to every line")
	expandCmd.Flags().Bool("keep-whitespace", false, "do not squeeze runs of spaces")
	expandCmd.Flags().Bool("keep-empty-tags", false, "do not remove empty separators")
	_ = v.BindPFlag("expand.single_line", expandCmd.Flags().Lookup("single-line"))
	_ = v.BindPFlag("expand.suffix", expandCmd.Flags().Lookup("suffix"))

	configCmd.AddCommand(configInitCmd)
}

// applyExpandFlags applies the negated expand flags, which viper cannot bind.
func applyExpandFlags(cmd *cobra.Command) {
	if keep, _ := cmd.Flags().GetBool("keep-whitespace"); keep {
		cfg.Expand.TrimWhitespace = false
	}
	if keep, _ := cmd.Flags().GetBool("keep-empty-tags"); keep {
		cfg.Expand.RemoveEmptyTags = false
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}
