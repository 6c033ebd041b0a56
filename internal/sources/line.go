package sources

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/mfriesel/flint/internal/catalog"
)

// baseScoreDirective is the magic entry name that sets the base score
// applied to every following entry until overridden.
const baseScoreDirective = "%base_score"

// parseLine splits "Name = command". Whitespace around the first '=' is
// insignificant; a line without '=' names an entry whose command is the
// name itself. ok is false for blank lines and for lines with an empty
// name.
func parseLine(line string) (name, command string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	name, command, cut := strings.Cut(line, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	if !cut {
		return name, name, true
	}
	return name, strings.TrimSpace(command), true
}

// parseList reads line-oriented candidates from r: one "Name = command"
// entry per line, %base_score directives, blank and malformed lines
// skipped.
func parseList(r io.Reader, source catalog.Source, logger *slog.Logger) ([]catalog.Item, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var items []catalog.Item
	baseScore := 0
	for scanner.Scan() {
		name, command, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if name == baseScoreDirective {
			score, err := strconv.Atoi(command)
			if err != nil {
				logger.Debug("ignoring unparseable base score directive", "value", command)
				continue
			}
			baseScore = score
			continue
		}
		items = append(items, newItem(name, command, source, baseScore))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// newItem builds an Item for a resolved command line. The argv split is
// best effort: commands shlex cannot split still launch through the shell,
// they just carry no structured Exec.
func newItem(name, command string, source catalog.Source, baseScore int) catalog.Item {
	argv, err := shlex.Split(command)
	if err != nil {
		argv = nil
	}
	return catalog.Item{
		Identity:  command,
		Name:      name,
		Exec:      argv,
		Source:    source,
		BaseScore: baseScore,
	}
}
