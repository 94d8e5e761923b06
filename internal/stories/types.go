package stories

// UserStory is one "## Story N: Title" section of a stories document.
type UserStory struct {
	ID                 string                `json:"id" yaml:"id"`
	Title              string                `json:"title" yaml:"title"`
	Description        string                `json:"description,omitempty" yaml:"description,omitempty"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptanceCriteria" yaml:"acceptanceCriteria"`
}

// AcceptanceCriterion is a single Given/When/Then clause.
type AcceptanceCriterion struct {
	ID       string `json:"id" yaml:"id"`
	Given    string `json:"given" yaml:"given"`
	When     string `json:"when" yaml:"when"`
	Then     string `json:"then" yaml:"then"`
	FullText string `json:"fullText" yaml:"fullText"`
}

// AnnotatedCriterion is a criterion together with the story it belongs to.
type AnnotatedCriterion struct {
	AcceptanceCriterion
	StoryID    string `json:"storyId" yaml:"storyId"`
	StoryTitle string `json:"storyTitle" yaml:"storyTitle"`
}

// Diagnostic records a line that looks like an acceptance criterion but did
// not match the **Given** / **When** / **Then** format and was dropped.
type Diagnostic struct {
	StoryID string `json:"storyId" yaml:"storyId"`
	Line    int    `json:"line" yaml:"line"`
	Text    string `json:"text" yaml:"text"`
}
