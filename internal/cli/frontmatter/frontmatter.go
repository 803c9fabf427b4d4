// Package frontmatter reads post files: a YAML block between --- fences,
// followed by the HTML or Markdown body.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Meta is the YAML front matter of a post file.
type Meta struct {
	Title             string   `yaml:"title"`
	CoverImage        string   `yaml:"coverImage"`
	Published         *bool    `yaml:"published"`
	Tags              []string `yaml:"tags"`
	CategoryIDs       []int64  `yaml:"categoryIds"`
	PrimaryCategoryID *int64   `yaml:"primaryCategoryId"`
}

// Parse splits a post file into its front matter and body. A file
// without a leading fence is all body.
func Parse(data []byte) (Meta, string, error) {
	var meta Meta
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, fence+"\n") {
		return meta, text, nil
	}

	rest := text[len(fence)+1:]
	end, after := closingFence(rest)
	if end < 0 {
		return meta, "", fmt.Errorf("front matter opened with %q but never closed", fence)
	}

	block := rest[:end]
	body := strings.TrimPrefix(rest[after:], "\n")

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return meta, "", fmt.Errorf("invalid front matter: %w", err)
	}
	return meta, body, nil
}

// closingFence finds the first line that is exactly the fence. A line
// merely starting with it, like a ---- Markdown rule inside a block
// scalar, does not close the front matter. Returns the offset of the
// fence's leading newline and the offset just past the fence, or -1.
func closingFence(s string) (int, int) {
	from := 0
	for {
		i := strings.Index(s[from:], "\n"+fence)
		if i < 0 {
			return -1, -1
		}
		i += from
		after := i + 1 + len(fence)
		if after == len(s) || s[after] == '\n' {
			return i, after
		}
		from = i + 1
	}
}
