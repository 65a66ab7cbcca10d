package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/jira"
)

var connectionCmd = &cobra.Command{
	Use:     "connection",
	Aliases: []string{"conn"},
	Short:   "Work with tracker connections",
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured connections",
	RunE:  runConnectionList,
}

var connectionTokenCmd = &cobra.Command{
	Use:   "token <connection-name>",
	Short: "Store an API token for a connection",
	Long: `Prompt for an API token and store it in the encrypted credential
store. The token never touches disk in plaintext.

Examples:
  argus connection token primary`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectionToken,
}

var connectionTestCmd = &cobra.Command{
	Use:   "test <connection-name>",
	Short: "Verify a connection's URL and credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionTest,
}

func init() {
	rootCmd.AddCommand(connectionCmd)
	connectionCmd.AddCommand(connectionListCmd)
	connectionCmd.AddCommand(connectionTokenCmd)
	connectionCmd.AddCommand(connectionTestCmd)
}

func runConnectionList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.ConnectionNames) == 0 {
		fmt.Println("No connections configured.")
		return nil
	}
	for _, name := range cfg.ConnectionNames {
		conn := cfg.Connections[name]
		fmt.Printf("%-16s %s  projects: %s\n", name, conn.BaseURL, strings.Join(conn.Projects, ", "))
	}
	return nil
}

func runConnectionToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := args[0]
	if _, ok := cfg.Connections[name]; !ok {
		return fmt.Errorf("unknown connection %q", name)
	}

	tokens, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	token, err := readPassword(fmt.Sprintf("API token for %s: ", name))
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	tokens.Set(name, token)
	if err := tokens.Save(); err != nil {
		return err
	}
	fmt.Printf("Stored token for %s\n", name)
	return nil
}

func runConnectionTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := args[0]
	conn, ok := cfg.Connections[name]
	if !ok {
		return fmt.Errorf("unknown connection %q", name)
	}

	tokens, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	token, err := tokens.Token(name)
	if err != nil {
		return err
	}

	client, err := jira.NewClient(conn, token, jira.ClientOptions{})
	if err != nil {
		return err
	}
	if err := client.Validate(cmd.Context()); err != nil {
		return fmt.Errorf("connection %q failed: %w", name, err)
	}
	fmt.Printf("Connection %q OK (%s)\n", name, conn.BaseURL)
	return nil
}
