package app

import (
	"fmt"
	"strings"
)

// PrerequisiteError reports hard prerequisites that are not met, such as an
// unreachable language-model daemon.
type PrerequisiteError struct {
	Missing []string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("prerequisites not met: %s", strings.Join(e.Missing, "; "))
}
