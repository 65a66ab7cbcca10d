package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riptano/argus/internal/model"
	"github.com/riptano/argus/internal/team"
	"github.com/riptano/argus/internal/view"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Work with teams",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured teams",
	RunE:  runTeamList,
}

var teamShowCmd = &cobra.Command{
	Use:   "show <team-name>",
	Short: "Show cached issues assigned to a team",
	Long: `Build an assignee view for a whole team (or one member) across
every connection its usernames cover, and resolve it against the local
cache.

Examples:
  argus team show platform
  argus team show platform --member "Jane Doe"`,
	Args: cobra.ExactArgs(1),
	RunE: runTeamShow,
}

func init() {
	rootCmd.AddCommand(teamCmd)
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamShowCmd)

	teamShowCmd.Flags().String("member", "", "Limit to one member by display name")
}

func runTeamList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.TeamNames) == 0 {
		fmt.Println("No teams configured.")
		return nil
	}
	for _, name := range cfg.TeamNames {
		t := cfg.Teams[name]
		members := make([]string, len(t.Members))
		for i, m := range t.Members {
			members[i] = m.Name
		}
		fmt.Printf("%-24s members: %s\n", name, strings.Join(members, ", "))
	}
	return nil
}

func runTeamShow(cmd *cobra.Command, args []string) error {
	memberFlag, _ := cmd.Flags().GetString("member")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, ok := cfg.Teams[args[0]]
	if !ok {
		return fmt.Errorf("unknown team %q", args[0])
	}

	var v *view.View
	if memberFlag != "" {
		var member *model.TeamMember
		for i := range t.Members {
			if t.Members[i].Name == memberFlag {
				member = &t.Members[i]
				break
			}
		}
		if member == nil {
			return fmt.Errorf("team %q has no member %q", t.Name, memberFlag)
		}
		v, err = team.MemberView(member, cfg.ConnectionNames)
	} else {
		v, err = team.TeamView(t, cfg.ConnectionNames)
	}
	if err != nil {
		return err
	}

	st, err := openIssueStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	issues, err := newResolver(cfg, st, nil).Resolve(cmd.Context(), v)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No matching issues in the cache. Run 'argus sync' first?")
		return nil
	}

	display := view.NewDisplayFilter(nil)
	fmt.Print(display.RenderTable(issues))
	return nil
}
