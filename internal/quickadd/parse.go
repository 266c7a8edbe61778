// Package quickadd parses the one-line task syntax:
//
//	Buy milk !h #errand @tomorrow >Home
//
// Markers are extracted in a fixed order from the residual text: priority,
// hashtags, category, due date. Whatever is left becomes the title. Parsing
// never fails; malformed markers fall back to defaults.
package quickadd

import (
	"regexp"
	"strings"
	"time"

	"github.com/sandeepkv93/sharpei/internal/dates"
	"github.com/sandeepkv93/sharpei/internal/model"
)

var (
	priorityPattern = regexp.MustCompile(`(?i)(?:^|\s)!(high|h|low|l)\b`)
	hashtagPattern  = regexp.MustCompile(`#\w+`)
	categoryPattern = regexp.MustCompile(`>(\w+)`)
	datePattern     = regexp.MustCompile(`@(\S+)`)
	plainName       = regexp.MustCompile(`^\w+$`)
)

type Result struct {
	Title        string
	Priority     model.Priority
	Hashtags     string
	DueDate      *time.Time
	CategoryName string
}

// Rule extracts one kind of marker from text, records it on res and returns
// the residual text.
type Rule struct {
	Name    string
	Extract func(text string, now time.Time, res *Result) string
}

// Rules is the extraction order. Later rules only see what earlier rules left.
var Rules = []Rule{
	{Name: "priority", Extract: func(text string, _ time.Time, res *Result) string {
		p, rest, ok := ExtractPriority(text)
		if ok {
			res.Priority = p
		}
		return rest
	}},
	{Name: "hashtags", Extract: func(text string, _ time.Time, res *Result) string {
		tags, rest := ExtractHashtags(text)
		res.Hashtags = strings.Join(tags, " ")
		return rest
	}},
	{Name: "category", Extract: func(text string, _ time.Time, res *Result) string {
		name, rest, _ := ExtractCategory(text)
		res.CategoryName = name
		return rest
	}},
	{Name: "date", Extract: func(text string, now time.Time, res *Result) string {
		due, rest, _ := ExtractDate(text, now)
		res.DueDate = due
		return rest
	}},
}

// Parse parses input relative to the current time.
func Parse(input string) Result {
	return ParseAt(input, time.Now())
}

// ParseAt parses input, resolving relative dates against now.
func ParseAt(input string, now time.Time) Result {
	res := Result{Priority: model.PriorityNormal}
	text := input
	for _, r := range Rules {
		text = r.Extract(text, now, &res)
	}
	res.Title = collapseSpaces(text)
	return res
}

// ExtractPriority consumes the first priority marker only.
func ExtractPriority(text string) (model.Priority, string, bool) {
	loc := priorityPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return model.PriorityNormal, text, false
	}
	p := model.PriorityHigh
	if marker := strings.ToLower(text[loc[2]:loc[3]]); strings.HasPrefix(marker, "l") {
		p = model.PriorityLow
	}
	return p, cut(text, loc[0], loc[1]), true
}

// ExtractHashtags collects every tag in order and strips all of them.
func ExtractHashtags(text string) ([]string, string) {
	tags := hashtagPattern.FindAllString(text, -1)
	if len(tags) == 0 {
		return nil, text
	}
	return tags, hashtagPattern.ReplaceAllString(text, " ")
}

// ExtractCategory returns the raw name of the first category marker.
func ExtractCategory(text string) (string, string, bool) {
	loc := categoryPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text, false
	}
	return text[loc[2]:loc[3]], cut(text, loc[0], loc[1]), true
}

// ExtractDate strips the first date marker. The date is nil when the token
// is not a recognised expression; the marker is removed either way.
func ExtractDate(text string, now time.Time) (*time.Time, string, bool) {
	loc := datePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, text, false
	}
	rest := cut(text, loc[0], loc[1])
	due, ok := dates.Resolve(text[loc[2]:loc[3]], now)
	if !ok {
		return nil, rest, true
	}
	return &due, rest, true
}

// ResolveCategory looks the parsed category name up by case-insensitive
// equality. It reports false when no name was given or nothing matched.
func (r Result) ResolveCategory(categories []model.Category) (model.Category, bool) {
	return model.FindCategoryByName(categories, r.CategoryName)
}

// Task builds the create payload for the parsed line.
func (r Result) Task(categoryID string) model.Task {
	return model.Task{
		Title:      r.Title,
		Priority:   r.Priority,
		Hashtags:   r.Hashtags,
		DueDate:    r.DueDate,
		CategoryID: categoryID,
	}
}

// Format writes t back as a quick-add line that ParseAt reads into the same
// title, priority, hashtags and due date. The category marker is left out
// when categoryName cannot be written as one.
func Format(t model.Task, categoryName string) string {
	parts := []string{t.Title}
	switch t.Priority {
	case model.PriorityHigh:
		parts = append(parts, "!high")
	case model.PriorityLow:
		parts = append(parts, "!low")
	}
	if tags := strings.TrimSpace(t.Hashtags); tags != "" {
		parts = append(parts, tags)
	}
	if t.DueDate != nil {
		parts = append(parts, "@"+dates.Format(*t.DueDate))
	}
	if categoryName != "" && plainName.MatchString(categoryName) {
		parts = append(parts, ">"+categoryName)
	}
	return strings.Join(parts, " ")
}

// Apply merges the parsed line into an existing task. Identity, state,
// hierarchy, order and description are kept. The category only changes
// when the line names one.
func (r Result) Apply(t model.Task, categoryID string) model.Task {
	t.Title = r.Title
	t.Priority = r.Priority
	t.Hashtags = r.Hashtags
	t.DueDate = r.DueDate
	if categoryID != "" {
		t.CategoryID = categoryID
	}
	return t
}

func cut(text string, start, end int) string {
	return text[:start] + " " + text[end:]
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
