package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joestump/tagboard/internal/config"
	"github.com/joestump/tagboard/internal/tags"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Work with the tag collection from the terminal",
	}
	cmd.AddCommand(newTagsListCmd())
	cmd.AddCommand(newTagsCreateCmd())
	cmd.AddCommand(newTagsSlugCmd())
	return cmd
}

func newTagsListCmd() *cobra.Command {
	var (
		page   int
		filter string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := cliService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			q := tags.ListQuery{Filter: filter}.WithPage(page)
			p, err := svc.List(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}
			printTagPage(cmd.OutOrStdout(), q, p)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only tags whose name matches")
	return cmd
}

func newTagsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag; the slug is derived from the name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := cliService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			tag, err := svc.Create(cmd.Context(), strings.Join(args, " "))
			var verr *tags.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("%s: %s", verr.Field, verr.Message)
			}
			if err != nil {
				return fmt.Errorf("create tag: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", color.GreenString("✓ created"), bold(tag.Name), faint("("+tag.Slug+")"))
			return nil
		},
	}
}

func newTagsSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug TEXT",
		Short: "Print the slug derived from TEXT",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tags.ToSlug(strings.Join(args, " ")))
		},
	}
}

// cliService builds a tags.Service from the environment with logging kept to
// warnings so it does not interleave with command output.
func cliService(cmd *cobra.Command) (*tags.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogLevel < slog.LevelWarn {
		cfg.LogLevel = slog.LevelWarn
	}
	return newTagService(cmd.Context(), cfg, newLogger(cfg))
}

func printTagPage(w io.Writer, q tags.ListQuery, p *tags.Page) {
	if len(p.Data) == 0 {
		if q.Filter != "" {
			fmt.Fprintf(w, "No tags match %q.\n", q.Filter)
		} else {
			fmt.Fprintln(w, "No tags yet.")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold("NAME"), bold("SLUG"), bold("VIDEOS"))
	for _, t := range p.Data {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", t.Name, cyan(t.Slug), t.AmountOfVideos)
	}
	_ = tw.Flush()

	pages := p.Pages
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintln(w, faint(fmt.Sprintf("page %d of %d, %d tags", q.Page, pages, p.Items)))
}
