package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/config"
	"example.com/learning-path/backend/internal/database"
	"example.com/learning-path/backend/internal/repository"
	"example.com/learning-path/backend/internal/server"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import the course catalog",
	}

	cmd.AddCommand(newCatalogListCmd(), newCatalogTagsCmd(), newCatalogImportCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var domain, level string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			source, closeSource, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			courses, err := source.All(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), catalog.Filter(courses, domain, level))
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Filter by domain")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level")
	return cmd
}

func newCatalogTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List distinct catalog tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			source, closeSource, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			tags, err := source.Tags(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog tags: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), tags)
		},
	}
}

func newCatalogImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the PostgreSQL catalog with courses from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("catalog import requires DB_ENABLED=true")
			}

			ctx := cmd.Context()

			courses, err := catalog.NewFileCatalog(file).All(ctx)
			if err != nil {
				return err
			}

			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.EnsureSchema(ctx, db); err != nil {
				return err
			}

			if err := repository.NewCourseRepository(db).ReplaceAll(ctx, courses); err != nil {
				return fmt.Errorf("import catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d courses from %s\n", len(courses), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON course list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// openCatalog открывает настроенный источник каталога; для postgres создается пул.
func openCatalog(ctx context.Context, cfg config.Config) (catalog.Source, func(), error) {
	var db *pgxpool.Pool
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		db = pool
	}

	source, err := server.NewCatalog(cfg.Catalog, db)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	return source, func() {
		if db != nil {
			db.Close()
		}
	}, nil
}
