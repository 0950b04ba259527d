package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/moviq/handlers"
)

func newPersonCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "person <id>",
		Short:   "Print a person page with filmography grouped by decade",
		Example: `  moviq person 287`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := catalogIDArg(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), *configPath, appNeeds{catalog: true})
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := a.catalog.PersonDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handlers.BuildPersonView(details, time.Now()))
		},
	}
}
