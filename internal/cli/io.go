package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	symio "github.com/matzehuels/symbolkit/pkg/io"
	"github.com/matzehuels/symbolkit/pkg/pipeline"
)

// stdout receives command results written to "-".
var stdout io.Writer = os.Stdout

// readInput reads a design file and an optional rules file.
func readInput(designPath, rulesPath string) (pipeline.Input, error) {
	var in pipeline.Input
	data, err := symio.ReadFile(designPath)
	if err != nil {
		return in, err
	}
	in.Design = data
	if rulesPath != "" {
		if in.Rules, err = symio.ReadFile(rulesPath); err != nil {
			return in, err
		}
	}
	return in, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return symio.ExportFile(path, data)
}

// writeJSON writes v as indented JSON to path, or to stdout when path is "-".
func writeJSON(path string, v any) error {
	if path == "-" {
		return symio.WriteJSON(v, stdout)
	}
	return symio.ExportJSON(v, path)
}

// defaultOutput derives an output path from the input path, e.g.
// "home.json" becomes "home.expanded.json".
func defaultOutput(input, suffix string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + suffix
}

// announceOutput reports a written file unless it went to stdout.
func announceOutput(path string) {
	if path != "-" {
		printFile(path)
	}
}
