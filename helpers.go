package recipebox

import (
	"fmt"
	"regexp"
	"strings"
)

const recipeIDPrefix = "recipe_"

var queryPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,.'&-]+$`)

// ValidateQuery checks a user-entered search query. Blank queries and queries
// containing anything other than letters, digits, whitespace and ,.'&- are
// rejected with a *ValidationError.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return &ValidationError{Query: query, Reason: "query is blank"}
	}
	if !queryPattern.MatchString(query) {
		return &ValidationError{Query: query, Reason: "only letters, digits, spaces and ,.'&- are allowed"}
	}
	return nil
}

// ExtractRecipeID returns the short identifier of an Edamam recipe URI, e.g.
// "42" for "http://www.edamam.com/ontologies/edamam.owl#recipe_42". URIs
// without a fragment are returned unchanged.
func ExtractRecipeID(uri string) string {
	_, fragment, ok := strings.Cut(uri, "#")
	if !ok {
		return uri
	}
	return strings.Replace(fragment, recipeIDPrefix, "", 1)
}

// MatchesID reports whether uri identifies the recipe with the given id, either
// through its fragment or verbatim.
func MatchesID(uri, id string) bool {
	if uri == id {
		return true
	}
	_, fragment, ok := strings.Cut(uri, "#")
	return ok && fragment == recipeIDPrefix+id
}

// FormatCookingTime renders a duration in minutes for display.
func FormatCookingTime(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}

	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, rest)
}

// TruncateText shortens text to at most maxLength runes followed by "...".
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
