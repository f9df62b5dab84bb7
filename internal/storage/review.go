package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/concordia247/drafts/internal/news"
)

const (
	reviewHeader  = "# REVISAR\n\n"
	updatedPrefix = "Última actualización:"
)

// ReviewLog is the human-readable escalation log (revisar.md). Sections are
// only ever appended.
type ReviewLog struct {
	path string
}

func NewReviewLog(path string) *ReviewLog {
	return &ReviewLog{path: path}
}

// FormatReview renders one entry as a Markdown list line.
func FormatReview(r news.Review) string {
	return fmt.Sprintf("- %s — %s (blocked: %s)", r.Title, r.URL, r.Reason)
}

// Append adds a "## Revisión <stamp>" section listing entries. Nothing is
// written when entries is empty.
func (l *ReviewLog) Append(stamp string, entries []news.Review) error {
	if len(entries) == 0 {
		return nil
	}
	txt, err := l.read()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(txt, " \t\r\n"))
	b.WriteString("\n\n## Revisión " + stamp + "\n\n")
	for _, e := range entries {
		b.WriteString(FormatReview(e) + "\n")
	}
	return l.write(b.String())
}

// Touch moves the "Última actualización" line to the end of the log with a
// new stamp.
func (l *ReviewLog) Touch(stamp string) error {
	txt, err := l.read()
	if err != nil {
		return err
	}

	if strings.Contains(txt, updatedPrefix) {
		lines := strings.Split(txt, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if !strings.HasPrefix(line, updatedPrefix) {
				kept = append(kept, line)
			}
		}
		txt = strings.Join(kept, "\n")
	}

	txt = strings.TrimRight(txt, " \t\r\n") + "\n\n" + updatedPrefix + " " + stamp + "\n"
	return l.write(txt)
}

func (l *ReviewLog) read() (string, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return reviewHeader, nil
	}
	if err != nil {
		return "", fmt.Errorf("read review log: %w", err)
	}
	return string(data), nil
}

func (l *ReviewLog) write(txt string) error {
	if err := WriteFileAtomic(l.path, []byte(txt), 0o644); err != nil {
		return fmt.Errorf("write review log: %w", err)
	}
	return nil
}
