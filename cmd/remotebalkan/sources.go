package main

import (
	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/app"
)

func (c *cli) sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := c.loadSources()
			if err != nil {
				return err
			}
			app.PrintSources(cmd.OutOrStdout(), sf.List())
			return nil
		},
	}
}
