package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gogofolio/modules/fileaccess"
	"gogofolio/modules/filemanager"
	"gogofolio/modules/pages"
	"gogofolio/modules/posts"
	"gogofolio/modules/router"
)

var (
	heading  = color.New(color.Bold, color.Underline)
	scoreOut = color.New(color.FgCyan)
	dimmed   = color.New(color.Faint)
	matched  = color.New(color.FgGreen)
	missed   = color.New(color.FgYellow)
	warning  = color.New(color.FgRed)
)

func newRoutesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "routes [path...]",
		Short: "Print the ranked route tables and the route each path picks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			store := posts.NewStore(filemanager.New(fileaccess.New(cfg.Directories.Posts), nil, nil, filemanager.Config{}))
			site := pages.New(pages.Config{Posts: store, Author: cfg.Site.Author})

			tables, err := site.RouteTables()
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), tables, args)
		},
	}
}

func printRoutes(out io.Writer, tables []pages.RouteTable, paths []string) error {
	for _, t := range tables {
		table := router.NewTable(t.Routes...)

		heading.Fprintf(out, "%s router\n", t.Name)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCORE\tINDEX\tPATTERN")
		for _, ranked := range table.Ranked() {
			pattern := ranked.Route.Path
			if ranked.Route.Default {
				pattern += " (default)"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", scoreOut.Sprint(ranked.Score), ranked.Index, pattern)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if err := table.Validate(); err != nil {
			warning.Fprintf(out, "warning: %v\n", err)
		}

		for _, path := range paths {
			printPick(out, path, table.Pick(path))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printPick(out io.Writer, path string, m *router.Match) {
	if m == nil {
		fmt.Fprintf(out, "%s -> ", path)
		missed.Fprintln(out, "no match")
		return
	}

	fmt.Fprintf(out, "%s -> ", path)
	matched.Fprint(out, m.Route.Path)
	fmt.Fprintf(out, " uri=%s", m.URI)

	keys := make([]string, 0, len(m.Params))
	for k := range m.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dimmed.Fprintf(out, " %s=%q", k, m.Params[k])
	}
	fmt.Fprintln(out)
}
