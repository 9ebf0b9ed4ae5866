package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadcontact/blogfront/scaffold"
)

func newInitCmd() *cobra.Command {
	var siteURL string

	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Create a new site directory with a dataset, chrome and .env example",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating new blogfront site: %s\n\n", dir)
			if err := scaffold.Generate(dir, scaffold.NewData(dir, siteURL), out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  cd %s\n", dir)
			fmt.Fprintln(out, "  cp .env.example .env")
			fmt.Fprintln(out, "  blogfront serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&siteURL, "site-url", "", "canonical site URL written to .env.example")
	return cmd
}
