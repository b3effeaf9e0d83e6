package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/keytester/internal/models"
	"golang.org/x/term"
)

// Switch cards wrap to the terminal, clamped to a readable range
const (
	fallbackCardWidth = 80
	minCardWidth      = 20
	maxCardWidth      = 100
)

var (
	renderMu  sync.Mutex
	renderers = map[int]*glamour.TermRenderer{}
)

// cardWidth is the wrap width for switch cards printed to stdout: the
// terminal width, else $COLUMNS, else fallbackCardWidth.
func cardWidth() int {
	w := fallbackCardWidth
	if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
		w = tw
	} else if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		w = cols
	}
	return min(max(w, minCardWidth), maxCardWidth)
}

// RenderSwitch renders the switch card sized for the terminal.
func RenderSwitch(id models.SwitchID, rec models.SwitchRecord, keys []string, imagePath string) (string, error) {
	return RenderMarkdownWithWidth(SwitchMarkdown(id, rec, keys, imagePath), cardWidth())
}

// RenderMarkdownWithWidth renders markdown through glamour, wrapped at width.
// Renderers are cached per width.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	width = max(width, minCardWidth)

	renderMu.Lock()
	defer renderMu.Unlock()

	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("markdown renderer: %w", err)
		}
		renderers[width] = r
	}

	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
