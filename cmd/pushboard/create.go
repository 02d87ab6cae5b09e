package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/pushboard/internal/audience"
	"github.com/five82/pushboard/internal/query"
	"github.com/five82/pushboard/internal/ui"
)

type createOptions struct {
	*rootOptions
	Name      string
	Platforms []string
	Where     string
}

func newCreateCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &createOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a push audience",
		Long: `Create a push audience from installation constraints.

Constraints are "field op value" clauses separated by ';'. Operators are
= != < <= > >= in exists !exists. Without --platform every device type
registered on the server is targeted.

  pushboard create --name "Beta" --platform ios --where "beta = true; appVersion >= 2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(opts.Name)
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			// Catch constraint syntax errors before connecting.
			if _, err := query.ParseConstraints(opts.Where); err != nil {
				return err
			}

			session, err := opts.session(cmd)
			if err != nil {
				return err
			}

			platforms := opts.Platforms
			if len(platforms) == 0 {
				platforms, err = session.Client.FetchAvailableDevices(cmd.Context())
				if err != nil {
					session.Logger.Warn("fetch available devices failed", "error", err)
					platforms = ui.DefaultDevices
				}
			}

			encoded, err := query.AudienceQuery(opts.Where, platforms)
			if err != nil {
				return err
			}

			coll, err := session.Store.Dispatch(cmd.Context(), audience.Create{Query: encoded, Name: name})
			if err != nil {
				return err
			}
			created := coll.Filters[0]
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", created.Name, created.ObjectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "audience name")
	cmd.Flags().StringArrayVar(&opts.Platforms, "platform", nil, "device type to target (repeatable)")
	cmd.Flags().StringVar(&opts.Where, "where", "", `installation constraints, e.g. "locale = en; badge exists"`)

	return cmd
}
