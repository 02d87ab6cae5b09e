package main

import (
	"github.com/spf13/cobra"
)

// listKey names the CLI fetch in the request registry.
const listKey = "cli-list"

type listOptions struct {
	*rootOptions
	Limit  int
	Output string
}

func newListCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &listOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved push audiences",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(opts.Output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.session(cmd)
			if err != nil {
				return err
			}
			fetch := session.Fetch(listKey)
			if opts.Limit > 0 {
				fetch.Limit = opts.Limit
			}
			coll, err := session.Store.Dispatch(cmd.Context(), fetch)
			if err != nil {
				return err
			}
			return writeFilters(cmd.OutOrStdout(), opts.Output, coll)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum filters to fetch (default filters.show_more_limit)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", "output format (table|json|yaml)")

	return cmd
}
