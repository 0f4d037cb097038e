package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adminkit",
		Short:         "adminkit: admin API session and resource client",
		Long:          "adminkit drives an admin REST API from the terminal: it keeps the login session, classifies request failures, tracks the retry budget, builds resource queries and invalidates cached reads by tag.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newQueryCmd(app),
		newTagsCmd(app),
		newListenCmd(app),
	)
	rootCmd.AddCommand(newResourceCmds(app)...)

	return rootCmd
}
