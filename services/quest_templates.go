package services

import (
	"questifyAPI/internal/types/quest"
)

// questTemplates is the curated suggestion pool served by the templates
// endpoint. Creating a quest from one still freezes XPReward from the
// difficulty at creation time.
var questTemplates = []quest.Template{
	{
		ID:          "morning-routine",
		Title:       "Win the morning",
		Description: "Get up, make the bed, and plan the day before 9am",
		Difficulty:  quest.DifficultyEasy,
		IsDaily:     true,
		Subtasks:    []string{"Make the bed", "Write down top 3 priorities"},
		Tags:        []string{"routine", "morning"},
	},
	{
		ID:          "deep-work-block",
		Title:       "Deep work block",
		Description: "90 minutes of uninterrupted work on the hardest task",
		Difficulty:  quest.DifficultyHard,
		IsDaily:     true,
		Tags:        []string{"focus", "work"},
	},
	{
		ID:          "inbox-zero",
		Title:       "Inbox zero",
		Description: "Process every email: reply, archive, or turn into a quest",
		Difficulty:  quest.DifficultyNormal,
		Tags:        []string{"admin"},
	},
	{
		ID:          "move-your-body",
		Title:       "Move your body",
		Description: "At least 30 minutes of exercise, any kind counts",
		Difficulty:  quest.DifficultyNormal,
		IsDaily:     true,
		Tags:        []string{"health"},
	},
	{
		ID:          "read-20-pages",
		Title:       "Read 20 pages",
		Description: "Books only, feeds do not count",
		Difficulty:  quest.DifficultyEasy,
		IsDaily:     true,
		Tags:        []string{"learning"},
	},
	{
		ID:          "weekly-review",
		Title:       "Weekly review",
		Description: "Go through open quests, archive the stale ones, plan next week",
		Difficulty:  quest.DifficultyHard,
		Subtasks:    []string{"Review open quests", "Check habit streaks", "Plan next week"},
		Tags:        []string{"planning", "review"},
	},
	{
		ID:          "tidy-workspace",
		Title:       "Tidy the workspace",
		Description: "Clear desk, close stray tabs, empty the downloads folder",
		Difficulty:  quest.DifficultyEasy,
		Tags:        []string{"environment"},
	},
	{
		ID:          "learn-something-new",
		Title:       "Learn something new",
		Description: "One tutorial, lecture, or chapter outside your comfort zone",
		Difficulty:  quest.DifficultyNormal,
		Tags:        []string{"learning", "growth"},
	},
}

// QuestTemplates returns the static template catalog.
func QuestTemplates() []quest.Template {
	return questTemplates
}

// TemplateByID resolves one template; nil when the id is unknown.
func TemplateByID(id string) *quest.Template {
	for i := range questTemplates {
		if questTemplates[i].ID == id {
			return &questTemplates[i]
		}
	}
	return nil
}

// ApplyTemplate fills empty request fields from a template so explicit
// overrides in the request still win.
func ApplyTemplate(req quest.CreateQuestRequest, tpl *quest.Template) quest.CreateQuestRequest {
	if tpl == nil {
		return req
	}
	if req.Title == "" {
		req.Title = tpl.Title
	}
	if req.Description == "" {
		req.Description = tpl.Description
	}
	if req.Difficulty == "" {
		req.Difficulty = tpl.Difficulty
	}
	if !req.IsDaily {
		req.IsDaily = tpl.IsDaily
	}
	if len(req.Subtasks) == 0 {
		req.Subtasks = append([]string(nil), tpl.Subtasks...)
	}
	if len(req.Tags) == 0 {
		req.Tags = append([]string(nil), tpl.Tags...)
	}
	return req
}
