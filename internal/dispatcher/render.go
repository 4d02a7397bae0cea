package dispatcher

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"hederaquery/internal/query"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var titles = map[query.Category]string{
	query.CategoryAccount:      "Account Data",
	query.CategoryTransactions: "Transaction Data",
	query.CategoryPrice:        "HBAR Price",
	query.CategoryStats:        "Network Stats",
}

// Title returns the card heading for a category
func Title(c query.Category) string {
	if t, ok := titles[c]; ok {
		return t
	}
	return string(c)
}

// Render writes one category card
func Render(w io.Writer, c query.Category, s State) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(Title(c))); err != nil {
		return err
	}

	switch {
	case s.Loading:
		_, err := fmt.Fprintln(w, mutedStyle.Render("Loading..."))
		return err
	case s.Err != "":
		_, err := fmt.Fprintln(w, errorStyle.Render("Error: "+s.Err))
		return err
	case s.Envelope == nil:
		_, err := fmt.Fprintln(w, mutedStyle.Render("No data yet"))
		return err
	}

	body, err := json.MarshalIndent(s.Envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s result: %w", c, err)
	}
	_, err = fmt.Fprintln(w, string(body))
	return err
}
