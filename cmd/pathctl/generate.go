package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/config"
	"example.com/learning-path/backend/internal/models"
	"example.com/learning-path/backend/internal/recommender"
	"example.com/learning-path/backend/internal/server"
)

func newExtractCmd() *cobra.Command {
	var (
		tags        []string
		catalogTags bool
		offline     bool
	)

	cmd := &cobra.Command{
		Use:   "extract <description>",
		Short: "Extract a structured learning goal from free text",
		Long:  "Extract target domain, level, tags and time budget from a free-text goal. Model failures fall back to keyword heuristics; --offline skips the model entirely.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			description := strings.Join(args, " ")

			whitelist := tags
			if len(whitelist) == 0 && catalogTags {
				source, closeSource, err := openCatalog(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeSource()

				whitelist, err = source.Tags(ctx)
				if err != nil {
					return fmt.Errorf("load catalog tags: %w", err)
				}
			}

			if offline {
				return writeJSON(cmd.OutOrStdout(), ai.ExtractionResult{
					GoalExtraction: ai.FallbackExtraction(description, whitelist),
					Fallback:       true,
				})
			}

			service, err := server.NewAIService(ctx, cfg.AI)
			if err != nil {
				return err
			}
			defer service.Close()

			result, exchange := service.GenerateExtraction(ctx, description, whitelist)
			if result.Fallback {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: keyword fallback used (%s): %v\n", ai.KindName(exchange.Err), exchange.Err)
			}

			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tag whitelist")
	cmd.Flags().BoolVar(&catalogTags, "catalog-tags", false, "Use catalog tags as the whitelist when --tags is empty")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the model and use keyword extraction only")

	return cmd
}

func newPlanCmd() *cobra.Command {
	var (
		profile     profileFlags
		coursesPath string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a learning plan with the configured AI provider",
		Long:  "Generate a learning plan with the configured AI provider. There is no fallback: model failures are reported with their error kind.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			courses, err := loadCourses(cmd, cfg, coursesPath)
			if err != nil {
				return err
			}

			service, err := server.NewAIService(ctx, cfg.AI)
			if err != nil {
				return err
			}
			defer service.Close()

			plan, _, err := service.GeneratePlan(ctx, profile.profile(), courses)
			if err != nil {
				return fmt.Errorf("%s: %w", ai.KindName(err), err)
			}

			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}

	profile.register(cmd)
	cmd.Flags().StringVar(&coursesPath, "courses", "", "Path to a JSON course list (defaults to the configured catalog)")

	return cmd
}

func newRecommendCmd() *cobra.Command {
	var (
		profile     profileFlags
		coursesPath string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Build a plan with the local greedy recommender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			courses, err := loadCourses(cmd, cfg, coursesPath)
			if err != nil {
				return err
			}

			plan := recommender.Greedy{}.MakePlan(profile.profile(), courses)
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}

	profile.register(cmd)
	cmd.Flags().StringVar(&coursesPath, "courses", "", "Path to a JSON course list (defaults to the configured catalog)")

	return cmd
}

func loadCourses(cmd *cobra.Command, cfg config.Config, path string) ([]models.Course, error) {
	ctx := cmd.Context()

	if path != "" {
		return catalog.NewFileCatalog(path).All(ctx)
	}

	source, closeSource, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	return source.All(ctx)
}
