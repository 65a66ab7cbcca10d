package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/riptano/argus/internal/config"
	"github.com/riptano/argus/internal/creds"
	"github.com/riptano/argus/internal/jira"
	"github.com/riptano/argus/internal/store"
	"github.com/riptano/argus/internal/view"
)

const (
	passphraseEnv = "ARGUS_PASSPHRASE"
	timePrecision = time.Millisecond
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openIssueStore(cfg *config.Config) (store.IssueStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return store.NewBolt(cfg.CachePath())
}

func openCredentials(cfg *config.Config) (*creds.Store, error) {
	passphrase := os.Getenv(passphraseEnv)
	if passphrase == "" {
		var err error
		passphrase, err = readPassword("Credential store passphrase: ")
		if err != nil {
			return nil, err
		}
	}
	return creds.Open(cfg.CredentialsPath(), passphrase)
}

// buildClients constructs one authenticated client per configured
// connection that has a stored token. Connections without a token are
// skipped; cache-backed views still work for them.
func buildClients(cfg *config.Config, tokens *creds.Store) map[string]jira.RemoteClient {
	clients := make(map[string]jira.RemoteClient)
	for name, conn := range cfg.Connections {
		token, err := tokens.Token(name)
		if err != nil {
			slog.Debug("no stored token, connection will be cache-only", "connection", name)
			continue
		}
		client, err := jira.NewClient(conn, token, jira.ClientOptions{})
		if err != nil {
			slog.Warn("skipping connection", "connection", name, "error", err)
			continue
		}
		clients[name] = client
	}
	return clients
}

func newResolver(cfg *config.Config, st store.IssueStore, clients map[string]jira.RemoteClient) *view.Resolver {
	return view.NewResolver(st, cfg.Connections, clients, cfg.Views, view.ResolverOptions{})
}

// resolverFor wires a resolver, opening the credential store only when
// remote access is actually needed. Cache-backed views resolve without
// prompting for a passphrase.
func resolverFor(cfg *config.Config, st store.IssueStore, needRemote bool) (*view.Resolver, error) {
	clients := make(map[string]jira.RemoteClient)
	if needRemote {
		tokens, err := openCredentials(cfg)
		if err != nil {
			return nil, err
		}
		clients = buildClients(cfg, tokens)
	}
	return newResolver(cfg, st, clients), nil
}

// readPassword reads a secret from the terminal without echoing.
func readPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	// piped input
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", fmt.Errorf("no input available for %q", prompt)
}

// openBrowser opens the default web browser to the given URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
