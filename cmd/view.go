package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/view"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Work with saved views",
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured views",
	RunE:  runViewList,
}

var viewShowCmd = &cobra.Command{
	Use:   "show <view-name>",
	Short: "Resolve a view and print its issues",
	Long: `Resolve a view against the local cache (or the tracker, for
query-backed views) and print the matching issues as a table.

Refinements narrow the already-resolved set by substring without
touching the view definition.

Examples:
  argus view show open-bugs
  argus view show open-bugs --refine cassandra --refine timeout
  argus view show open-bugs --sort priority
  argus view show open-bugs --json`,
	Args: cobra.ExactArgs(1),
	RunE: runViewShow,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.AddCommand(viewListCmd)
	viewCmd.AddCommand(viewShowCmd)

	viewShowCmd.Flags().StringSlice("refine", nil, "Substring refinements (repeatable, all must match)")
	viewShowCmd.Flags().String("sort", "", "Override the view's sort field")
	viewShowCmd.Flags().Bool("json", false, "Output issues as JSON")
}

func runViewList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.ViewNames) == 0 {
		fmt.Println("No views configured.")
		return nil
	}
	for _, name := range cfg.ViewNames {
		v := cfg.Views[name]
		kind := "filter"
		if v.Query != "" {
			kind = "query"
		}
		fmt.Printf("%-24s %s  connections: %s\n", name, kind, strings.Join(v.Connections, ", "))
	}
	return nil
}

func runViewShow(cmd *cobra.Command, args []string) error {
	refinements, _ := cmd.Flags().GetStringSlice("refine")
	sortOverride, _ := cmd.Flags().GetString("sort")
	outputJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	v, ok := cfg.Views[args[0]]
	if !ok {
		return fmt.Errorf("unknown view %q", args[0])
	}

	st, err := openIssueStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	resolver, err := resolverFor(cfg, st, v.Query != "")
	if err != nil {
		return err
	}

	issues, err := resolver.Resolve(cmd.Context(), v)
	if err != nil {
		return err
	}

	display := view.NewDisplayFilter(v.Columns)
	for _, r := range refinements {
		display.Refine(r)
	}
	if sortOverride != "" {
		display.SortBy(sortOverride)
	}
	issues = display.Apply(issues)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	}

	if len(issues) == 0 {
		fmt.Println("No matching issues.")
		return nil
	}
	fmt.Print(display.RenderTable(issues))
	return nil
}
