// Package config loads the on-disk definitions Argus starts from:
// connections, views, dashboards and teams. Everything is read once at
// startup and treated as immutable afterwards; the loaded [Config] is
// passed explicitly into the components that need it.
//
// The format is ini files in one configuration directory, with predicate
// trees embedded as JSON documents (see the filter package):
//
//	connections.cfg   one section per tracker connection
//	views.cfg         one section per saved view
//	dashboards.cfg    one section per dashboard
//	teams.cfg         one section per team
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/riptano/argus/internal/filter"
	"github.com/riptano/argus/internal/model"
	"github.com/riptano/argus/internal/view"
)

const (
	connectionsFile = "connections.cfg"
	viewsFile       = "views.cfg"
	dashboardsFile  = "dashboards.cfg"
	teamsFile       = "teams.cfg"
)

// Config is the fully loaded and validated configuration.
type Config struct {
	// Dir is the configuration directory everything was loaded from.
	// Cache and history databases live next to the config files.
	Dir string

	Connections map[string]*model.Connection
	Views       map[string]*view.View
	Dashboards  map[string]*view.Dashboard
	Teams       map[string]*model.Team

	// declaration order, for stable listings
	ConnectionNames []string
	ViewNames       []string
	DashboardNames  []string
	TeamNames       []string
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "argus")
}

// CachePath is the bbolt issue cache location for a config directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.Dir, "issues.bolt")
}

// HistoryPath is the sqlite sync history location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Dir, "history.db")
}

// CredentialsPath is the encrypted token store location.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, "credentials.dat")
}

// Load reads every definition file under dir. Missing files other than
// connections.cfg are fine; an empty setup simply has no views yet.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		Dir:         dir,
		Connections: make(map[string]*model.Connection),
		Views:       make(map[string]*view.View),
		Dashboards:  make(map[string]*view.Dashboard),
		Teams:       make(map[string]*model.Team),
	}

	if err := cfg.loadConnections(filepath.Join(dir, connectionsFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadViews(filepath.Join(dir, viewsFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadDashboards(filepath.Join(dir, dashboardsFile)); err != nil {
		return nil, err
	}
	if err := cfg.loadTeams(filepath.Join(dir, teamsFile)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadINI(path string) (*ini.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, &model.ConfigError{What: path, Err: err}
	}
	return f, nil
}

// realSections filters out ini's implicit DEFAULT section.
func realSections(f *ini.File) []*ini.Section {
	var out []*ini.Section
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		out = append(out, sec)
	}
	return out
}

func (c *Config) loadConnections(path string) error {
	f, err := loadINI(path)
	if err != nil || f == nil {
		return err
	}

	for _, sec := range realSections(f) {
		name := sec.Name()
		what := fmt.Sprintf("connection %q", name)

		conn := &model.Connection{
			Name:     name,
			BaseURL:  strings.TrimSuffix(sec.Key("url").String(), "/") + "/",
			Email:    sec.Key("email").String(),
			Projects: splitList(sec.Key("projects").String()),
			FieldMap: make(map[string]string),
		}
		if sec.Key("url").String() == "" {
			return &model.ConfigError{What: what, Err: fmt.Errorf("missing url")}
		}
		if conn.Email == "" {
			return &model.ConfigError{What: what, Err: fmt.Errorf("missing email")}
		}

		// custom_fields names the readable fields; each then has its own
		// key mapping it to the tracker-side custom field ID
		for _, field := range splitList(sec.Key("custom_fields").String()) {
			id := sec.Key(field).String()
			if id == "" {
				return &model.ConfigError{What: what, Err: fmt.Errorf("custom field %q has no ID mapping", field)}
			}
			conn.FieldMap[field] = id
		}

		c.Connections[name] = conn
		c.ConnectionNames = append(c.ConnectionNames, name)
	}
	return nil
}

func (c *Config) loadViews(path string) error {
	f, err := loadINI(path)
	if err != nil || f == nil {
		return err
	}

	for _, sec := range realSections(f) {
		name := sec.Name()
		what := fmt.Sprintf("view %q", name)

		v := &view.View{
			Name:        name,
			Connections: splitList(sec.Key("connections").String()),
			Query:       sec.Key("query").String(),
			SortKey:     sec.Key("sort_key").String(),
		}

		if raw := sec.Key("filter").String(); raw != "" {
			pred, err := filter.Unmarshal([]byte(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", what, err)
			}
			v.Predicate = pred
		}

		if raw := sec.Key("columns").String(); raw != "" {
			columns, err := parseColumns(raw)
			if err != nil {
				return &model.ConfigError{What: what, Err: err}
			}
			v.Columns = columns
		}

		if err := v.Validate(); err != nil {
			return err
		}
		for _, connName := range v.Connections {
			if _, ok := c.Connections[connName]; !ok {
				return &model.ConfigError{What: what, Err: fmt.Errorf("unknown connection %q", connName)}
			}
		}

		c.Views[name] = v
		c.ViewNames = append(c.ViewNames, name)
	}
	return nil
}

func (c *Config) loadDashboards(path string) error {
	f, err := loadINI(path)
	if err != nil || f == nil {
		return err
	}

	for _, sec := range realSections(f) {
		name := sec.Name()
		what := fmt.Sprintf("dashboard %q", name)

		d := &view.Dashboard{
			Name:  name,
			Views: splitList(sec.Key("views").String()),
		}
		if err := d.Validate(); err != nil {
			return err
		}
		for _, viewName := range d.Views {
			if _, ok := c.Views[viewName]; !ok {
				return &model.ConfigError{What: what, Err: fmt.Errorf("unknown view %q", viewName)}
			}
		}

		c.Dashboards[name] = d
		c.DashboardNames = append(c.DashboardNames, name)
	}
	return nil
}

func (c *Config) loadTeams(path string) error {
	f, err := loadINI(path)
	if err != nil || f == nil {
		return err
	}

	for _, sec := range realSections(f) {
		name := sec.Name()
		what := fmt.Sprintf("team %q", name)

		t := &model.Team{Name: name}

		// members lists display names; each member key maps connection
		// to username: "Jane Doe = primary:jdoe, secondary:jane.doe"
		for _, memberName := range splitList(sec.Key("members").String()) {
			raw := sec.Key(memberName).String()
			if raw == "" {
				return &model.ConfigError{What: what, Err: fmt.Errorf("member %q has no username mappings", memberName)}
			}

			usernames := make(map[string]string)
			for _, pair := range splitList(raw) {
				connName, username, ok := strings.Cut(pair, ":")
				if !ok {
					return &model.ConfigError{What: what, Err: fmt.Errorf("member %q: bad mapping %q, want connection:username", memberName, pair)}
				}
				if _, exists := c.Connections[connName]; !exists {
					return &model.ConfigError{What: what, Err: fmt.Errorf("member %q: unknown connection %q", memberName, connName)}
				}
				usernames[connName] = username
			}

			t.Members = append(t.Members, model.TeamMember{Name: memberName, Usernames: usernames})
		}

		c.Teams[name] = t
		c.TeamNames = append(c.TeamNames, name)
	}
	return nil
}

// parseColumns parses "field:title:width" entries; title and width are
// optional ("summary", "summary:desc", "summary:desc:50").
func parseColumns(raw string) ([]view.Column, error) {
	var columns []view.Column
	for _, entry := range splitList(raw) {
		parts := strings.Split(entry, ":")
		col := view.Column{Field: parts[0]}
		if len(parts) > 1 {
			col.Title = parts[1]
		}
		if len(parts) > 2 {
			width, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("column %q: bad width: %w", entry, err)
			}
			col.Width = width
		}
		if len(parts) > 3 {
			return nil, fmt.Errorf("column %q: want field[:title[:width]]", entry)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
