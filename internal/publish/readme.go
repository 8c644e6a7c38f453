// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// RenderReadme returns the chapter README body: a level-1 header, a blank
// line, then one "- [text](url)" line per page in the given order.
func RenderReadme(title string, pages []types.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, p := range pages {
		fmt.Fprintf(&b, "- [%s](%s)\n", p.Text, p.URL)
	}
	return b.String()
}

// writeReadme creates or truncates path and writes the rendered README.
func writeReadme(path, title string, pages []types.Page) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("closing %s: %w", path, cerr))
		}
	}()

	if _, err := f.WriteString(RenderReadme(title, pages)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
