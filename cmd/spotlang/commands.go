package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/config"
	"github.com/patrickwarner/spotlang/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCategorizeCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Tag uncategorized spots with their processing category",
		Long: `Tag every uncategorized spot as language_required, review, or
default_english based on its revenue type and spot type. Trade spots are
skipped entirely.

With --force, existing categories and all language and block assignments
are cleared first so the whole book reprocesses from scratch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")

			d, cleanup, err := openDeps(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := d.pipe.Categorize(cmd.Context(), force)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Errors > 0 {
				return fmt.Errorf("%d spots failed categorization", res.Errors)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Clear categories and assignments before recategorizing")
	return cmd
}

var processCategories = map[string]models.SpotCategory{
	"language_required": models.CategoryLanguageRequired,
	"review":            models.CategoryReview,
	"default_english":   models.CategoryDefaultEnglish,
}

func newProcessCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [language_required|review|default_english|all]",
		Short: "Run language and block assignment over a category",
		Long: `Run the language-code resolver and the block assignment engine over
every spot in the named category. "all" processes language_required, review,
and default_english in that order.

An import batch filter (--batch) restricts processing to spots from one
import run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importBatch, _ := cmd.Flags().GetString("batch")

			category, ok := processCategories[args[0]]
			if !ok && args[0] != "all" {
				return fmt.Errorf("unknown category %q", args[0])
			}

			d, cleanup, err := openDeps(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.pipe.Preflight(cmd.Context()); err != nil {
				return err
			}

			var res models.BatchResult
			if args[0] == "all" {
				res, err = d.pipe.ProcessAll(cmd.Context())
			} else {
				res, err = d.pipe.ProcessCategory(cmd.Context(), category, importBatch)
			}
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Errors > 0 {
				return fmt.Errorf("%d spots failed processing", res.Errors)
			}
			return nil
		},
	}
	cmd.Flags().String("batch", "", "Restrict processing to one import batch ID")
	return cmd
}

func newStatusCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show aggregate assignment state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := openDeps(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := d.pipe.Status(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newReviewRequiredCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review-required",
		Short: "List spots needing human language review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			d, cleanup, err := openDeps(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := d.pipe.ReviewRequired(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().Int("limit", 500, "Maximum review items to return")
	return cmd
}
