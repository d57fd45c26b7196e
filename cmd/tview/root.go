package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/boolean-maybe/richprompt/internal/config"
	"github.com/boolean-maybe/richprompt/internal/logger"
	"github.com/boolean-maybe/richprompt/loaders"
	"github.com/boolean-maybe/richprompt/richprompt"
)

var (
	cfgFile  string
	cfg      config.Config
	v        = viper.New()
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "richprompt [FILE]",
	Short: "A terminal editor for image generation prompts",
	Long: `richprompt edits prompts with live highlighting of comments, wildcards,
inline tags, weights and choice sets. Hovering a tag or wildcard previews it.
Ctrl+Enter expands the prompt the way the generator would.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	RunE:              runEditor,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.richprompt.yaml or ~/.config/richprompt/config.yaml)")
	rootCmd.PersistentFlags().StringP("wildcard-dir", "w", "", "directory holding wildcard .txt files")
	rootCmd.PersistentFlags().String("tags-url", "", "endpoint listing known tag names")
	rootCmd.PersistentFlags().String("tags-file", "", "YAML file listing known tag names")
	rootCmd.PersistentFlags().String("preview-url", "", "base URL of the preview service")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().Bool("debug", false, "log at debug level")

	_ = v.BindPFlag("wildcard_dir", rootCmd.PersistentFlags().Lookup("wildcard-dir"))
	_ = v.BindPFlag("tags.url", rootCmd.PersistentFlags().Lookup("tags-url"))
	_ = v.BindPFlag("tags.file", rootCmd.PersistentFlags().Lookup("tags-file"))
	_ = v.BindPFlag("preview.url", rootCmd.PersistentFlags().Lookup("preview-url"))
	_ = v.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = v.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(highlightCmd, expandCmd, configCmd)
}

// setup loads the configuration and starts logging.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	flushLog, err = logger.Init(cfg.Log.File, cfg.Log.Debug)
	if err != nil {
		return err
	}
	return nil
}

func execute() error {
	defer func() { flushLog() }()
	return rootCmd.Execute()
}

// tagSource builds the configured tag sources; nil when none is set.
func tagSource(client *http.Client) loaders.TagSource {
	var sources loaders.MultiTagSource
	if cfg.Tags.File != "" {
		sources = append(sources, &loaders.FileTagSource{Path: cfg.Tags.File})
	}
	if cfg.Tags.URL != "" {
		sources = append(sources, &loaders.HTTPTagSource{URL: cfg.Tags.URL, Client: client})
	}
	if len(sources) == 0 {
		return nil
	}
	return sources
}

// loadNames fills a catalog once, for the commands that do not run the editor.
func loadNames(ctx context.Context) *richprompt.Catalog {
	catalog := richprompt.NewCatalog(nil)
	client := &http.Client{Timeout: cfg.Preview.Timeout}
	r := loaders.NewRefresher(catalog, tagSource(client), cfg.WildcardDir, loaders.RefresherOptions{})
	// failures are logged; highlighting just marks the names unresolved
	_ = r.Refresh(ctx)
	return catalog
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
