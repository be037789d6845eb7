// Package webform provides helpers over webform definitions and submissions:
// querying elements by type and resolving submission tokens in template
// strings.
package webform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stripewebform/backend/db"
)

// ElementOption identifies a webform element for configuration purposes,
// with the most descriptive label available.
type ElementOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ElementsByType returns the elements of the given type declared in the
// webform definition. The label preference is admin title, then title, then
// the element key.
func ElementsByType(webform *db.Webform, elementType string) []ElementOption {
	var options []ElementOption
	for _, element := range webform.Elements {
		if element.Type != elementType {
			continue
		}
		label := element.AdminTitle
		if label == "" {
			label = element.Title
		}
		if label == "" {
			label = element.Key
		}
		options = append(options, ElementOption{Key: element.Key, Label: label})
	}
	return options
}

// tokenPattern matches the submission and webform tokens supported in
// handler configuration templates.
var tokenPattern = regexp.MustCompile(`\[(webform_submission:values:[A-Za-z0-9_-]+|webform_submission:sid|webform_submission:serial|webform:id|webform:title)\]`)

// ReplaceTokens substitutes every known token in the template with the
// concrete value from the webform and submission. Unknown element keys
// resolve to the empty string, matching the "clear" behavior of template
// resolution in form CMSs.
func ReplaceTokens(template string, webform *db.Webform, submission *db.Submission) string {
	if template == "" || !strings.Contains(template, "[") {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		token := strings.Trim(match, "[]")
		switch token {
		case "webform_submission:sid":
			return submission.ID
		case "webform_submission:serial":
			return strconv.FormatInt(submission.Serial, 10)
		case "webform:id":
			return webform.ID
		case "webform:title":
			return webform.Title
		}
		if key, ok := strings.CutPrefix(token, "webform_submission:values:"); ok {
			return submission.Value(key)
		}
		return ""
	})
}
