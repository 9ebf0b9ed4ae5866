package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/leadcontact/blogfront"
)

// loadConfig reads .env and the environment, then applies any flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (blogfront.SiteConfig, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := blogfront.LoadDotEnv(envFile); err != nil {
		return blogfront.SiteConfig{}, err
	}
	cfg, err := blogfront.ConfigFromEnv()
	if err != nil {
		return blogfront.SiteConfig{}, err
	}

	overrides := map[string]*string{
		"addr":       &cfg.Addr,
		"posts":      &cfg.PostsPath,
		"chrome":     &cfg.ChromePath,
		"static":     &cfg.StaticDir,
		"site-url":   &cfg.URL,
		"analytics":  &cfg.AnalyticsDatabasePath,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	return cfg, nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("posts", "", "posts JSON file (default: embedded dataset)")
	cmd.Flags().String("chrome", "", "header/footer YAML file (default: embedded chrome)")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "", "log format: json or console")
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := blogfront.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}

			app, err := blogfront.New(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if !cfg.AdminEnabled() {
				log.Info().Msg("admin disabled: set ADMIN_PASSWORD and ADMIN_SESSION_SECRET to enable it")
			}
			return app.Start(cmd.Context())
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().String("addr", "", "listen address (default :3000)")
	cmd.Flags().String("static", "", "static directory served at /assets (default public)")
	cmd.Flags().String("site-url", "", "canonical site URL")
	cmd.Flags().String("analytics", "", "first-party analytics SQLite path (empty disables)")
	return cmd
}
