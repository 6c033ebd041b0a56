package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/mfriesel/flint/internal/calc"
	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/engine"
	"github.com/mfriesel/flint/internal/rank"
)

// nameColumnMax caps the display-name column so one absurdly long entry
// does not push the source column off screen.
const nameColumnMax = 48

// renderResults writes res to w in the requested format.
func renderResults(w io.Writer, query string, res engine.Results, format string) error {
	switch format {
	case "json":
		return writeResultsJSON(w, query, res)
	case "text":
		renderText(w, res)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

// renderText prints the expression line first, then one aligned line per
// match. Widths are display widths, so CJK names line up too.
func renderText(w io.Writer, res engine.Results) {
	if res.Expression != nil {
		fmt.Fprintf(w, "%s\n", styleExpr.Render("= "+calc.FormatValue(res.Expression.Value)))
	}

	width := 0
	for _, m := range res.Matches {
		if nw := runewidth.StringWidth(m.Item.Name); nw > width {
			width = nw
		}
	}
	if width > nameColumnMax {
		width = nameColumnMax
	}

	for _, m := range res.Matches {
		fmt.Fprintf(w, "%s  %s\n", nameCell(m.Item, width), styleSource.Render(string(m.Item.Source)))
	}

	if res.Fallback != nil {
		fmt.Fprintf(w, "%s\n", styleFallback.Render("run: "+res.Fallback.Name))
	}
}

// nameCell renders one padded display-name cell. NoDisplay entries are
// launchable but normally hidden, so they print dimmed instead of bold.
func nameCell(item catalog.Item, width int) string {
	name := runewidth.Truncate(item.Name, nameColumnMax, "…")
	cell := runewidth.FillRight(name, width)
	if item.NoDisplay {
		return styleDim.Render(cell)
	}
	return styleName.Render(cell)
}

type expressionOutput struct {
	Expr    string  `json:"expr"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

type matchOutput struct {
	Identity   string   `json:"identity"`
	Name       string   `json:"name"`
	Exec       []string `json:"exec,omitempty"`
	Source     string   `json:"source"`
	BaseScore  int      `json:"base_score"`
	FuzzyScore float64  `json:"fuzzy_score"`
	Combined   float64  `json:"combined"`
	NoDisplay  bool     `json:"no_display,omitempty"`
}

// queryOutput is the machine-readable result envelope.
type queryOutput struct {
	Query      string            `json:"query"`
	Expression *expressionOutput `json:"expression,omitempty"`
	Matches    []matchOutput     `json:"matches"`
	Fallback   *matchOutput      `json:"fallback,omitempty"`
}

func matchOutputFrom(m rank.Match) matchOutput {
	out := itemOutput(m.Item)
	out.FuzzyScore = m.FuzzyScore
	out.Combined = m.Combined
	return out
}

func itemOutput(item catalog.Item) matchOutput {
	return matchOutput{
		Identity:  item.Identity,
		Name:      item.Name,
		Exec:      item.Exec,
		Source:    string(item.Source),
		BaseScore: item.BaseScore,
		NoDisplay: item.NoDisplay,
	}
}

func writeResultsJSON(w io.Writer, query string, res engine.Results) error {
	out := queryOutput{
		Query:   query,
		Matches: make([]matchOutput, 0, len(res.Matches)),
	}
	if res.Expression != nil {
		out.Expression = &expressionOutput{
			Expr:    res.Expression.Expr,
			Value:   res.Expression.Value,
			Display: calc.FormatValue(res.Expression.Value),
		}
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, matchOutputFrom(m))
	}
	if res.Fallback != nil {
		f := itemOutput(*res.Fallback)
		out.Fallback = &f
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
