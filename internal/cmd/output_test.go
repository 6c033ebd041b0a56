package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfriesel/flint/internal/calc"
	"github.com/mfriesel/flint/internal/catalog"
	"github.com/mfriesel/flint/internal/engine"
	"github.com/mfriesel/flint/internal/rank"
)

// plainColors forces the Ascii profile so rendered output carries no
// escape sequences and can be compared as plain text.
func plainColors(t *testing.T) {
	t.Helper()
	saveColorState(t)
	lipgloss.SetColorProfile(termenv.Ascii)
}

func match(name, identity string, source catalog.Source) rank.Match {
	return rank.Match{Item: catalog.Item{Identity: identity, Name: name, Source: source}}
}

func TestRenderText_AlignsColumns(t *testing.T) {
	plainColors(t)

	res := engine.Results{Matches: []rank.Match{
		match("Firefox Web", "firefox", catalog.SourceDesktop),
		match("fzf", "fzf", catalog.SourcePath),
	}}

	var buf bytes.Buffer
	renderText(&buf, res)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Firefox Web  desktop", lines[0])
	assert.Equal(t, "fzf"+strings.Repeat(" ", 10)+"path", lines[1])
}

func TestRenderText_ExpressionFirst(t *testing.T) {
	plainColors(t)

	res := engine.Results{
		Expression: &calc.Result{Expr: "2+2", Value: 4},
		Matches:    []rank.Match{match("2048", "2048", catalog.SourceDesktop)},
	}

	var buf bytes.Buffer
	renderText(&buf, res)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "= 4", lines[0])
}

func TestRenderText_Fallback(t *testing.T) {
	plainColors(t)

	res := engine.Results{Fallback: &catalog.Item{
		Identity: "htop -d 5",
		Name:     "htop -d 5",
		Source:   catalog.SourceExternal,
	}}

	var buf bytes.Buffer
	renderText(&buf, res)

	assert.Equal(t, "run: htop -d 5\n", buf.String())
}

func TestRenderText_TruncatesLongNames(t *testing.T) {
	plainColors(t)

	long := strings.Repeat("x", nameColumnMax+20)
	res := engine.Results{Matches: []rank.Match{match(long, "x", catalog.SourcePath)}}

	var buf bytes.Buffer
	renderText(&buf, res)

	line := strings.TrimRight(buf.String(), "\n")
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, long)
}

func TestRenderResults_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := renderResults(&buf, "q", engine.Results{}, "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestWriteResultsJSON(t *testing.T) {
	res := engine.Results{
		Expression: &calc.Result{Expr: "22*7", Value: 154},
		Matches: []rank.Match{{
			Item: catalog.Item{
				Identity:  "flatpak run org.mozilla.firefox",
				Name:      "Firefox",
				Exec:      []string{"flatpak", "run", "org.mozilla.firefox"},
				Source:    catalog.SourceFlatpak,
				BaseScore: 5,
			},
			FuzzyScore: 30,
			Combined:   35,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeResultsJSON(&buf, "fire", res))

	var out queryOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "fire", out.Query)
	require.NotNil(t, out.Expression)
	assert.Equal(t, "22*7", out.Expression.Expr)
	assert.Equal(t, "154", out.Expression.Display)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, "Firefox", out.Matches[0].Name)
	assert.Equal(t, "flatpak", out.Matches[0].Exec[0])
	assert.Equal(t, "flatpak", out.Matches[0].Source)
	assert.Equal(t, 35.0, out.Matches[0].Combined)
	assert.Nil(t, out.Fallback)
}

func TestWriteResultsJSON_EmptyMatchesIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResultsJSON(&buf, "zzz", engine.Results{}))
	assert.Contains(t, buf.String(), `"matches":[]`)
}

func TestWriteResultsJSON_NoHTMLEscape(t *testing.T) {
	res := engine.Results{Fallback: &catalog.Item{
		Identity: "grep -r <pattern> && echo done",
		Name:     "grep -r <pattern> && echo done",
		Source:   catalog.SourceExternal,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeResultsJSON(&buf, "q", res))
	assert.Contains(t, buf.String(), "<pattern> && echo done")
}
