// Package letter holds the engagement-letter artifact returned by the backend
// and the client-side formatting used to preview its terms.
package letter

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultFileName is used when the backend does not suggest one.
const DefaultFileName = "Engagement_Letter.pdf"

// Artifact is a generated PDF as received from the backend.
// Body is only held until Save writes it out.
type Artifact struct {
	FileName    string
	ContentType string
	Body        []byte
}

var dispositionFilename = regexp.MustCompile(`(?i)filename="?([^";]+)"?`)

// FileNameFromDisposition extracts the suggested file name from a
// Content-Disposition header, falling back to DefaultFileName.
func FileNameFromDisposition(header string) string {
	if header == "" {
		return DefaultFileName
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		// filename* is decoded into filename by mime
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}
	if m := dispositionFilename.FindStringSubmatch(header); len(m) == 2 {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return DefaultFileName
}

// SafeFileName reduces name to a bare file name usable inside the download directory.
func SafeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return DefaultFileName
	}
	return name
}

// SuggestedFileName mirrors the backend naming: Engagement_Letter_<client>.pdf.
func SuggestedFileName(clientName string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(clientName)
	return fmt.Sprintf("Engagement_Letter_%s.pdf", safe)
}

// Save writes the artifact into dir and returns the final path.
// The body goes to a temporary file first and is renamed into place, so a
// partially written letter never carries the final name.
func Save(dir string, a *Artifact) (string, error) {
	if a == nil {
		return "", fmt.Errorf("no artifact to save")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".thg-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(a.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write letter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close letter: %w", err)
	}

	final := filepath.Join(dir, SafeFileName(a.FileName))
	if err := os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("failed to move letter into place: %w", err)
	}
	return final, nil
}
