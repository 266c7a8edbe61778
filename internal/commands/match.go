package commands

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/sandeepkv93/sharpei/internal/model"
)

// MatchCategory resolves a palette name to a category. An exact
// case-insensitive match wins; otherwise the best fuzzy match is taken.
func MatchCategory(query string, categories []model.Category) (model.Category, error) {
	if c, ok := model.FindCategoryByName(categories, query); ok {
		return c, nil
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return model.Category{}, &CommandError{Code: ErrCodeNoMatch, Message: fmt.Sprintf("no category matches %q", query)}
	}
	return categories[matches[0].Index], nil
}
