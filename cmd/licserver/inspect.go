package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"winsbygroup.com/licserver/internal/server"
	"winsbygroup.com/licserver/internal/sqlite"
	"winsbygroup.com/licserver/internal/version"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP routes and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			srv, err := server.Build(context.Background(), cfg, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("failed to build server: %w", err)
			}
			defer srv.Close()

			routes := srv.Echo.Routes()
			sort.Slice(routes, func(i, j int) bool {
				if routes[i].Path == routes[j].Path {
					return routes[i].Method < routes[j].Method
				}
				return routes[i].Path < routes[j].Path
			})

			out := cmd.OutOrStdout()
			for _, r := range routes {
				fmt.Fprintf(out, "%-6s %s\n", r.Method, r.Path)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema migrations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), sqlite.Schema())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Banner())
			fmt.Fprintln(cmd.OutOrStdout(), version.RepoURL)
		},
	}
}
