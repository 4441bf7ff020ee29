package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/NasaVasa/newsalerts/internal/app"
	"github.com/NasaVasa/newsalerts/internal/config"
	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/NasaVasa/newsalerts/internal/infra/log"
	"github.com/NasaVasa/newsalerts/internal/usecase"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alertctl",
		Short: "Maintenance commands for the news alerts store",
		Long: `alertctl runs alert generation and store maintenance without the HTTP
service. It reads the same environment (and optional .env file) as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newDedupeCmd(), newClearCmd(), newImportCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Analyze recent news and tweets and store alerts",
		Example: `  alertctl generate
  alertctl generate --source tweets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := usecase.ParseSource(source)
			if err != nil {
				return fmt.Errorf("--source must be all, news or tweets: %w", err)
			}
			return withCore(cmd, func(core *app.Core) error {
				result, err := core.AlertUC.Generate(cmd.Context(), parsed)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", string(usecase.SourceAll), "Content to analyze (all, news, tweets)")
	return cmd
}

func newDedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Merge alerts that share a title into the most recent one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, func(core *app.Core) error {
				result, err := core.AlertUC.CleanDuplicates(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete alerts without --yes")
			}
			return withCore(cmd, func(core *app.Core) error {
				deleted, err := core.AlertUC.DeleteAll(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int{"deleted_count": deleted})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

type importOutput struct {
	usecase.ImportResult
	Alerts int `json:"alerts"`
}

func newImportCmd() *cobra.Command {
	var articlesFrom, postsFrom, alertsFrom string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load news, tweets and alerts from JSON exports",
		Long: `Import upserts news articles and social posts by id. Each source is a
path or an http(s) URL returning a JSON array. Records exported without an id
get one derived from their content, so importing twice does not duplicate.

Alerts are inserted as exported. Alerts whose id is already stored are left
as they are.`,
		Example: `  alertctl import --articles news.json --posts tweets.json
  alertctl import --articles https://scraper.internal/news.json
  alertctl import --alerts alerts.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if articlesFrom == "" && postsFrom == "" && alertsFrom == "" {
				return errors.New("nothing to import: pass --articles, --posts and/or --alerts")
			}
			return withCore(cmd, func(core *app.Core) error {
				var out importOutput
				var articles []domain.Article
				var posts []domain.Post
				var err error
				if articlesFrom != "" {
					if articles, err = core.Feed.LoadArticles(cmd.Context(), articlesFrom); err != nil {
						return err
					}
				}
				if postsFrom != "" {
					if posts, err = core.Feed.LoadPosts(cmd.Context(), postsFrom); err != nil {
						return err
					}
				}
				if out.ImportResult, err = core.ContentUC.Import(cmd.Context(), articles, posts); err != nil {
					return err
				}
				if alertsFrom != "" {
					alerts, err := core.Feed.LoadAlerts(cmd.Context(), alertsFrom)
					if err != nil {
						return err
					}
					if out.Alerts, err = core.AlertUC.ImportAlerts(cmd.Context(), alerts); err != nil {
						return err
					}
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&articlesFrom, "articles", "", "News export (path or URL)")
	cmd.Flags().StringVar(&postsFrom, "posts", "", "Tweets export (path or URL)")
	cmd.Flags().StringVar(&alertsFrom, "alerts", "", "Alerts export (path or URL)")
	return cmd
}

func withCore(cmd *cobra.Command, run func(core *app.Core) error) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := log.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	core, err := app.NewCore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = core.Close() }()
	return run(core)
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
