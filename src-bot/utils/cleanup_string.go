package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HumanizeKey turns an API field name like "self_harm/intent" into
// "Self Harm/Intent".
func HumanizeKey(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	s = cases.Title(language.English).String(s)
	return strings.TrimSuffix(s, ".")
}
