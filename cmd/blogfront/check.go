package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/listing"
	"github.com/leadcontact/blogfront/views"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the dataset and chrome, and print page counts per tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var ds *content.Dataset
			if cfg.PostsPath != "" {
				ds, err = content.LoadFile(cfg.PostsPath)
			} else {
				ds, err = content.Default()
			}
			if err != nil {
				return fmt.Errorf("posts: %w", err)
			}
			if cfg.ChromePath != "" {
				if _, err := views.LoadChrome(cfg.ChromePath); err != nil {
					return fmt.Errorf("chrome: %w", err)
				}
			}
			return printSummary(cmd, ds)
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func printSummary(cmd *cobra.Command, ds *content.Dataset) error {
	out := cmd.OutOrStdout()
	posts := ds.Posts()
	counts := ds.TagCounts()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tPOSTS\tPAGES")
	fmt.Fprintf(tw, "(all)\t%d\t%d\n", len(posts), listing.TotalPages(len(posts), listing.DefaultPageSize))
	for _, tag := range content.AllowedTags() {
		n := counts[tag]
		fmt.Fprintf(tw, "%s\t%d\t%d\n", tag, n, listing.TotalPages(n, listing.DefaultPageSize))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d posts OK\n", len(posts))
	return nil
}
