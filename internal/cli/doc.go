// Package cli provides the terminal user interface components for Argus.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. All UI components follow the standard Bubbletea
// Model-View-Update (MVU) architecture.
//
// The main component is the issue browser: a filterable list over the
// issues a view or dashboard resolved to, with keys for refining,
// re-sorting and opening the selected issue in a web browser.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
