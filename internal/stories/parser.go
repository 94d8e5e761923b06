package stories

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"specprobe/pkg/logging"
)

var (
	storyHeaderPattern = regexp.MustCompile(`(?m)^##\s+(?:User\s+)?Story\s+(\d+):[ \t]*(.+?)[ \t]*$`)

	// The Then clause runs to the end of its line; Given and When may wrap.
	criterionPattern = regexp.MustCompile(`(?is)\d+\.\s+\*\*Given\*\*\s+(.+?)\s*,\s*\*\*When\*\*\s+(.+?)\s*,\s*\*\*Then\*\*[ \t]+([^\n]+)`)

	// Lines that mention Given/When/Then without the bold markers.
	looseCriterionPattern = regexp.MustCompile(`(?i)\bgiven\b.*\bwhen\b.*\bthen\b`)

	givenPattern     = regexp.MustCompile(`(?i)(?:\*\*)?\bgiven\b`)
	headingPattern   = regexp.MustCompile(`#+\s+`)
	boldPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	underlinePattern = regexp.MustCompile(`__(.+?)__`)
	cleanupPattern   = regexp.MustCompile(`\*\*|\n`)
	spacePattern     = regexp.MustCompile(`[ \t]{2,}`)
)

// Model holds the user stories parsed from one Markdown document.
type Model struct {
	path        string
	stories     []UserStory
	diagnostics []Diagnostic
}

// Parse reads and parses a Markdown stories file.
func Parse(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read stories file %s: %w", path, err)
	}

	logging.Info("StoryParser", "Loading user stories from %s", path)
	model, err := parse(string(data), path)
	if err != nil {
		return nil, err
	}
	logging.Info("StoryParser", "Loaded %d user stories", len(model.stories))
	return model, nil
}

// ParseString parses Markdown content that is already in memory.
func ParseString(content string) (*Model, error) {
	return parse(content, "")
}

func parse(content, path string) (*Model, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	model := &Model{path: path}

	headers := storyHeaderPattern.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range headers {
		start := loc[1]
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		body := content[start:end]
		bodyLine := strings.Count(content[:start], "\n") + 1

		story := UserStory{
			ID:                 "US" + content[loc[2]:loc[3]],
			Title:              strings.TrimSpace(content[loc[4]:loc[5]]),
			Description:        extractDescription(body),
			AcceptanceCriteria: extractCriteria(body),
		}
		model.diagnostics = append(model.diagnostics, diagnose(story.ID, body, bodyLine)...)
		model.stories = append(model.stories, story)
	}

	for _, d := range model.diagnostics {
		logging.Warn("StoryParser", "Dropped acceptance criterion in %s (line %d), expected '**Given** ..., **When** ..., **Then** ...': %s", d.StoryID, d.Line, d.Text)
	}

	if err := model.validate(); err != nil {
		logging.Error("StoryParser", err, "User stories validation failed")
		return nil, err
	}
	return model, nil
}

func extractCriteria(body string) []AcceptanceCriterion {
	var criteria []AcceptanceCriterion
	for i, m := range criterionPattern.FindAllStringSubmatch(body, -1) {
		given := cleanClause(m[1])
		when := cleanClause(m[2])
		then := cleanClause(m[3])
		criteria = append(criteria, AcceptanceCriterion{
			ID:       fmt.Sprintf("AC%d", i+1),
			Given:    given,
			When:     when,
			Then:     then,
			FullText: fmt.Sprintf("Given %s, When %s, Then %s", given, when, then),
		})
	}
	return criteria
}

func cleanClause(s string) string {
	s = cleanupPattern.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func extractDescription(body string) string {
	description := body
	if loc := givenPattern.FindStringIndex(body); loc != nil {
		cut := loc[0]
		// drop a list marker such as "1. **" in front of the first criterion
		lineStart := strings.LastIndexByte(body[:cut], '\n') + 1
		if strings.Trim(body[lineStart:cut], "0123456789.-*_ \t") == "" {
			cut = lineStart
		}
		description = body[:cut]
	}
	description = strings.TrimSpace(description)
	description = headingPattern.ReplaceAllString(description, "")
	description = boldPattern.ReplaceAllString(description, "$1")
	description = underlinePattern.ReplaceAllString(description, "$1")
	return description
}

// diagnose reports lines mentioning Given, When and Then that are not part of
// any strictly formatted criterion.
func diagnose(storyID, body string, firstLine int) []Diagnostic {
	matched := criterionPattern.FindAllStringIndex(body, -1)
	var out []Diagnostic
	offset := 0
	for n, line := range strings.Split(body, "\n") {
		lineStart := offset
		offset += len(line) + 1
		if !looseCriterionPattern.MatchString(line) {
			continue
		}
		covered := false
		for _, m := range matched {
			if lineStart < m[1] && lineStart+len(line) > m[0] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, Diagnostic{StoryID: storyID, Line: firstLine + n, Text: strings.TrimSpace(line)})
		}
	}
	return out
}

// validate applies only when at least one story was found.
func (m *Model) validate() error {
	if len(m.stories) == 0 {
		return nil
	}
	problems := &MalformedStoryError{Path: m.path}
	for _, story := range m.stories {
		if story.Title == "" {
			problems.Problems = append(problems.Problems, fmt.Sprintf("story %s missing title", story.ID))
		}
		if len(story.AcceptanceCriteria) == 0 {
			problems.Problems = append(problems.Problems, fmt.Sprintf("story %s has no acceptance criteria", story.ID))
		}
	}
	if len(problems.Problems) > 0 {
		return problems
	}
	return nil
}

// Path returns the file the model was parsed from, or "" for in-memory input.
func (m *Model) Path() string { return m.path }

// Stories returns the stories in document order.
func (m *Model) Stories() []UserStory {
	if m == nil {
		return nil
	}
	return m.stories
}

// StoryByID looks up a story such as "US3".
func (m *Model) StoryByID(id string) (UserStory, bool) {
	if m == nil {
		return UserStory{}, false
	}
	for _, s := range m.stories {
		if s.ID == id {
			return s, true
		}
	}
	return UserStory{}, false
}

// AllAcceptanceCriteria flattens every story's criteria, annotating each with
// its parent story.
func (m *Model) AllAcceptanceCriteria() []AnnotatedCriterion {
	if m == nil {
		return nil
	}
	var all []AnnotatedCriterion
	for _, s := range m.stories {
		for _, c := range s.AcceptanceCriteria {
			all = append(all, AnnotatedCriterion{AcceptanceCriterion: c, StoryID: s.ID, StoryTitle: s.Title})
		}
	}
	return all
}

// Diagnostics returns the criteria-looking lines that were dropped.
func (m *Model) Diagnostics() []Diagnostic {
	if m == nil {
		return nil
	}
	return m.diagnostics
}
