package sources

import (
	"context"
	"os/exec"
	"strings"

	"github.com/mfriesel/flint/internal/catalog"
)

// commandOutput runs an external command and returns its stdout. It exists
// so the flatpak and snap enumerators can be tested without the binaries.
type commandOutput func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Flatpak enumerates installed flatpak applications.
type Flatpak struct {
	output commandOutput
}

// Kind implements Source.
func (Flatpak) Kind() catalog.Source {
	return catalog.SourceFlatpak
}

// Candidates lists flatpak apps as "flatpak run <app-id>" commands. A
// missing flatpak binary contributes zero candidates; so does a failing
// invocation.
func (f Flatpak) Candidates(ctx context.Context) ([]catalog.Item, error) {
	output := f.output
	if output == nil {
		output = runCommand
	}

	out, err := output(ctx, "flatpak", "list", "--app", "--columns=application,name")
	if err != nil {
		return nil, nil
	}

	var items []catalog.Item
	for _, line := range strings.Split(string(out), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		appID := strings.TrimSpace(parts[0])
		if appID == "" {
			continue
		}
		name := strings.TrimSpace(parts[1])
		if name == "" {
			// org.gimp.GIMP -> GIMP
			segments := strings.Split(appID, ".")
			name = segments[len(segments)-1]
		}
		items = append(items, catalog.Item{
			Identity: "flatpak run " + appID,
			Name:     name,
			Exec:     []string{"flatpak", "run", appID},
			Source:   catalog.SourceFlatpak,
		})
	}
	return items, nil
}
