package model

import "strings"

// Connection identifies one remote tracker endpoint. It is created at
// configuration load and never mutated afterwards; credentials live in the
// credential store and are resolved on demand, not carried here.
type Connection struct {
	// Name is the local identifier used in view and team definitions.
	Name string `ini:"name" json:"name"`

	// BaseURL is the tracker endpoint, e.g. "https://example.atlassian.net/".
	BaseURL string `ini:"url" json:"url"`

	// Email is the account the API token belongs to.
	Email string `ini:"email" json:"email"`

	// Projects are the project keys cached locally for this connection.
	Projects []string `ini:"projects" json:"projects"`

	// FieldMap translates readable field names to tracker-side custom field
	// IDs ("reviewer" -> "customfield_10001"). Resolved once at load time.
	FieldMap map[string]string `ini:"-" json:"field_map,omitempty"`
}

// TranslateField returns the tracker-side identifier for a readable field
// name, or the name unchanged when it is not a custom field.
func (c *Connection) TranslateField(name string) string {
	if id, ok := c.FieldMap[name]; ok {
		return id
	}
	return name
}

// ReadableField reverses TranslateField: given a tracker-side field ID it
// returns the configured readable name, or the input unchanged.
func (c *Connection) ReadableField(id string) string {
	for name, mapped := range c.FieldMap {
		if mapped == id {
			return name
		}
	}
	return id
}

// HasProject reports whether the connection caches the given project key.
func (c *Connection) HasProject(project string) bool {
	for _, p := range c.Projects {
		if strings.EqualFold(p, project) {
			return true
		}
	}
	return false
}

// BrowseURL returns the web URL for an issue key on this connection.
func (c *Connection) BrowseURL(issueKey string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/browse/" + issueKey
}
