package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/cli"
)

var browseCmd = &cobra.Command{
	Use:   "browse <view-name>",
	Short: "Browse a view's issues interactively",
	Long: `Resolve a view and browse the results in an interactive list.
Type / to filter, s to cycle the sort field, and enter to open the
selected issue in your web browser.

Examples:
  argus browse open-bugs`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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
	if len(issues) == 0 {
		fmt.Println("No matching issues.")
		return nil
	}

	p := tea.NewProgram(cli.NewIssueBrowser(v.Name, issues), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	selected := finalModel.(cli.IssueBrowserModel).Selected()
	if selected == nil {
		return nil
	}

	conn, ok := cfg.Connections[selected.Connection]
	if !ok {
		return fmt.Errorf("issue %s references unknown connection %q", selected.Key, selected.Connection)
	}
	url := conn.BrowseURL(selected.Key)
	fmt.Printf("Opening %s...\n", url)
	return openBrowser(url)
}
