package stories

import (
	"fmt"
	"os"
	"strings"
)

// FileNotFoundError is returned when the stories file does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("stories file not found: %s", e.Path)
}

// Unwrap lets errors.Is(err, os.ErrNotExist) match.
func (e *FileNotFoundError) Unwrap() error {
	return os.ErrNotExist
}

// MalformedStoryError lists stories that have no title or no parsable
// acceptance criteria.
type MalformedStoryError struct {
	Path     string
	Problems []string
}

func (e *MalformedStoryError) Error() string {
	name := e.Path
	if name == "" {
		name = "stories"
	}
	return fmt.Sprintf("user stories validation failed for %s: %s", name, strings.Join(e.Problems, "; "))
}
