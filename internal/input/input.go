// Package input reads bulk key bindings from stdin and files (@file syntax).
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marcus/keytester/internal/models"
	"github.com/marcus/keytester/internal/output"
)

// ErrMalformedLine is returned for a binding line without a switch id
var ErrMalformedLine = errors.New("malformed binding line")

// ExpandSources reads the lines of every source in order. "-" reads stdin
// (once); "@path" and plain paths read the file.
func ExpandSources(sources []string, stdin io.Reader) ([]string, error) {
	var result []string
	stdinUsed := false
	for _, src := range sources {
		if src == "-" {
			if stdinUsed {
				output.Warning("stdin already used, ignoring additional -")
				continue
			}
			stdinUsed = true
			lines, err := ReadLinesFromReader(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			result = append(result, lines...)
			continue
		}

		path := strings.TrimPrefix(src, "@")
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		lines, err := ReadLinesFromReader(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		result = append(result, lines...)
	}
	return result, nil
}

// ReadLinesFromReader reads non-empty lines from a reader, skipping # comments.
func ReadLinesFromReader(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// ParseBindings turns "key switch id" lines into bindings. The first field
// is the key; the rest of the line, trimmed, is the switch id. Keys are not
// validated here.
func ParseBindings(lines []string) ([]models.Binding, error) {
	out := make([]models.Binding, 0, len(lines))
	for i, line := range lines {
		key, id, _ := strings.Cut(line, " ")
		if tab := strings.IndexByte(key, '\t'); tab >= 0 {
			key, id = line[:tab], line[tab+1:]
		}
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w %d: %q", ErrMalformedLine, i+1, line)
		}
		out = append(out, models.Binding{Key: key, SwitchID: id})
	}
	return out, nil
}
