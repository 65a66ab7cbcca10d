package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/view"
)

var searchCmd = &cobra.Command{
	Use:   "search <jql...>",
	Short: "Run an ad-hoc JQL query against a connection",
	Long: `Run a raw JQL query against one tracker connection and print the
results. Unlike views, nothing is read from or written to the cache.

Examples:
  argus search --connection primary 'assignee = currentUser() AND status != Done'
  argus search --connection primary project = CASSANDRA AND priority = Blocker`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("connection", "", "Connection to query (required)")
	_ = searchCmd.MarkFlagRequired("connection")
}

func runSearch(cmd *cobra.Command, args []string) error {
	connName, _ := cmd.Flags().GetString("connection")
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Connections[connName]; !ok {
		return fmt.Errorf("unknown connection %q", connName)
	}

	tokens, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	clients := buildClients(cfg, tokens)
	client, ok := clients[connName]
	if !ok {
		return fmt.Errorf("no token stored for connection %q, run 'argus connection token %s'", connName, connName)
	}

	issues, err := client.FetchByQuery(cmd.Context(), query)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No matching issues.")
		return nil
	}

	display := view.NewDisplayFilter(nil)
	fmt.Print(display.RenderTable(issues))
	return nil
}
