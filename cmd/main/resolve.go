package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gogofolio/modules/router"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <to> <base>",
		Short:   "Resolve a link target against a base path",
		Example: "  gogofolio resolve ../.. /users/123",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), router.Resolve(args[0], args[1]))
			return err
		},
	}
}
