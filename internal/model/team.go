package model

// TeamMember maps one logical person to their username on each tracker
// connection. The same human may be "jdoe" on one instance and
// "jane.doe" on another.
type TeamMember struct {
	// Name is the display name used in reports and team listings.
	Name string `json:"name"`

	// Usernames keys connection name to the member's username there.
	Usernames map[string]string `json:"usernames"`
}

// UsernameOn returns the member's username on the named connection. The
// boolean is false when the member has no account there.
func (m *TeamMember) UsernameOn(connection string) (string, bool) {
	u, ok := m.Usernames[connection]
	return u, ok
}

// Team is a named group of members used to build cross-connection filters
// ("everything assigned to anyone on this team, on any tracker").
type Team struct {
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}

// UsernamesOn collects every member username present on the named connection.
func (t *Team) UsernamesOn(connection string) []string {
	var names []string
	for _, m := range t.Members {
		if u, ok := m.UsernameOn(connection); ok {
			names = append(names, u)
		}
	}
	return names
}
