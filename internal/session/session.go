// Package session reads and writes session documents: the pretty-printed
// JSON export file and the validated import path.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xaenox/problem-notes/internal/models"
)

// ImportError reports a document that is not valid JSON or lacks the
// minimal session shape. Message is meant for the user.
type ImportError struct {
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import session: %s: %v", e.Message, e.Err)
	}
	return "import session: " + e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// documentShape carries only what import checks before decoding the full
// session.
type documentShape struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Elements *[]elementShape `json:"elements" validate:"required"`
}

type elementShape struct {
	ID       string           `json:"id" validate:"required"`
	Type     string           `json:"type" validate:"required,oneof=note task link group"`
	Position *models.Position `json:"position" validate:"required"`
}

var validate = validator.New()

// Export writes the session as indented JSON.
func Export(w io.Writer, s *models.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// FileName builds the export file name: the session name lowercased with
// every character outside a-z and 0-9 replaced by an underscore, then the
// date.
func FileName(name string, now time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
	return fmt.Sprintf("%s_%s.json", slug, now.UTC().Format("2006-01-02"))
}

// ExportFile writes the session into dir under FileName and returns the
// path written.
func ExportFile(dir string, s *models.Session, now time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("no session to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Export(&buf, s); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(s.Name, now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// Import parses and validates a session document.
func Import(r io.Reader) (*models.Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Message: "could not read the file", Err: err}
	}

	var shape documentShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, &ImportError{Message: "the file is not a valid session document", Err: err}
	}
	if err := validate.Struct(shape); err != nil {
		return nil, &ImportError{Message: "invalid file format: a session needs an id, a name and an elements list", Err: err}
	}
	for i, el := range *shape.Elements {
		if err := validate.Struct(el); err != nil {
			return nil, &ImportError{
				Message: fmt.Sprintf("element %d is invalid: it needs an id, a known type and a position", i+1),
				Err:     err,
			}
		}
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ImportError{Message: "the file is not a valid session document", Err: err}
	}
	if s.Elements == nil {
		s.Elements = []models.Element{}
	}
	return &s, nil
}

func ImportFile(path string) (*models.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Message: "could not open the file", Err: err}
	}
	defer f.Close()
	return Import(f)
}
