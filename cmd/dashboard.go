package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Work with dashboards",
}

var dashboardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured dashboards",
	RunE:  runDashboardList,
}

var dashboardShowCmd = &cobra.Command{
	Use:   "show <dashboard-name>",
	Short: "Resolve a dashboard and print its issues grouped by view",
	Long: `Resolve every view in a dashboard and print the combined results.
An issue matched by several views appears once, under the first view
that declared it. A failing view degrades to a warning; the rest of the
dashboard still renders.

Examples:
  argus dashboard show main`,
	Args: cobra.ExactArgs(1),
	RunE: runDashboardShow,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardListCmd)
	dashboardCmd.AddCommand(dashboardShowCmd)
}

func runDashboardList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.DashboardNames) == 0 {
		fmt.Println("No dashboards configured.")
		return nil
	}
	for _, name := range cfg.DashboardNames {
		fmt.Printf("%-24s views: %s\n", name, strings.Join(cfg.Dashboards[name].Views, ", "))
	}
	return nil
}

func runDashboardShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, ok := cfg.Dashboards[args[0]]
	if !ok {
		return fmt.Errorf("unknown dashboard %q", args[0])
	}

	needRemote := false
	for _, viewName := range d.Views {
		if v, ok := cfg.Views[viewName]; ok && v.Query != "" {
			needRemote = true
		}
	}

	st, err := openIssueStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	resolver, err := resolverFor(cfg, st, needRemote)
	if err != nil {
		return err
	}

	entries, errs := resolver.ResolveDashboard(cmd.Context(), d)
	for _, err := range errs {
		_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if len(entries) == 0 {
		fmt.Println("No matching issues.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VIEW\tKEY\tSUMMARY\tSTATUS\tPRIORITY\tASSIGNEE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.View, e.Issue.Key, truncate(e.Issue.FieldOrEmpty("summary"), 60),
			e.Issue.FieldOrEmpty("status"), e.Issue.FieldOrEmpty("priority"), e.Issue.FieldOrEmpty("assignee"))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
