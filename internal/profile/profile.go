// Package profile loads the static biography the assistant speaks from:
// a plain-text summary plus, when present, the text of a LinkedIn PDF
// export.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	summaryFile  = "summary.txt"
	linkedinFile = "linkedin.pdf"
)

type Profile struct {
	Name     string
	Summary  string
	LinkedIn string
}

// Load reads the profile from dir. summary.txt is required; linkedin.pdf is
// optional and skipped when absent.
func Load(dir, name string) (*Profile, error) {
	summaryBytes, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile summary: %w", err)
	}

	p := &Profile{
		Name:    name,
		Summary: strings.TrimSpace(string(summaryBytes)),
	}

	linkedinPath := filepath.Join(dir, linkedinFile)
	content, err := os.ReadFile(linkedinPath)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", linkedinFile, err)
	}

	text, err := extractPDFText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", linkedinFile, err)
	}
	p.LinkedIn = strings.TrimSpace(text)
	return p, nil
}

// Text is the full static corpus input: summary followed by the LinkedIn
// text.
func (p *Profile) Text() string {
	if p.LinkedIn == "" {
		return p.Summary
	}
	return p.Summary + "\n\n" + p.LinkedIn
}

func extractPDFText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}
