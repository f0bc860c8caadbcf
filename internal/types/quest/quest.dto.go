package quest

import "time"

type CreateQuestRequest struct {
	// TemplateID instantiates a catalog template; the remaining fields
	// override whatever the template provides.
	TemplateID  string     `json:"templateId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsDaily     bool       `json:"isDaily,omitempty"`
	Subtasks    []string   `json:"subtasks,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateQuestRequest carries only the fields the client wants to change.
// Nil pointers mean "leave as is"; Subtasks and Tags replace the whole
// list when present.
type UpdateQuestRequest struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
	Status       *Status     `json:"status,omitempty"`
	DueDate      *time.Time  `json:"dueDate,omitempty"`
	ClearDueDate bool        `json:"clearDueDate,omitempty"`
	IsDaily      *bool       `json:"isDaily,omitempty"`
	Subtasks     []Subtask   `json:"subtasks,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
}

// Template is a prebuilt quest suggestion served from a static catalog.
type Template struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	IsDaily     bool       `json:"isDaily"`
	Subtasks    []string   `json:"subtasks,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}
