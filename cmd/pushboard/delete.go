package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/pushboard/internal/audience"
)

func newDeleteCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete OBJECT_ID",
		Short: "Delete a push audience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectID := args[0]

			session, err := rootOpts.session(cmd)
			if err != nil {
				return err
			}

			// Load the list first so the store can tell whether the id was known.
			coll, err := session.Store.Dispatch(cmd.Context(), session.Fetch(listKey))
			if err != nil {
				return err
			}
			label := objectID
			if f, ok := coll.Find(objectID); ok {
				label = fmt.Sprintf("%q (%s)", f.Name, objectID)
			}

			_, err = session.Store.Dispatch(cmd.Context(), audience.Destroy{ObjectID: objectID})
			switch {
			case errors.Is(err, audience.ErrNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (it was not among the listed filters)\n", label)
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", label)
			return nil
		},
	}
}
