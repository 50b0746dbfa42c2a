package resource

import (
	"strings"
)

// ActionTable overrides the verb used for an action on a given collection path.
// Keys are normalized paths; missing entries fall back to the action name.
type ActionTable map[string]map[Action]string

// DefaultActionTable holds the irregular BoxBilling routes where creation is
// exposed as "prepare".
func DefaultActionTable() ActionTable {
	return ActionTable{
		"admin/product": {ActionCreate: "prepare"},
		"admin/invoice": {ActionCreate: "prepare"},
	}
}

// Merge returns a new table with overrides layered on top of t.
func (t ActionTable) Merge(overrides ActionTable) ActionTable {
	merged := make(ActionTable, len(t)+len(overrides))
	for path, verbs := range t {
		merged[path] = cloneVerbs(verbs)
	}
	for rawPath, verbs := range overrides {
		path := FilterPath(rawPath)
		target, ok := merged[path]
		if !ok {
			target = make(map[Action]string, len(verbs))
			merged[path] = target
		}
		for action, verb := range verbs {
			target[action] = strings.TrimSpace(verb)
		}
	}
	return merged
}

func (t ActionTable) Verb(path string, action Action) string {
	if verbs, ok := t[path]; ok {
		if verb := verbs[action]; verb != "" {
			return verb
		}
	}
	return string(action)
}

func cloneVerbs(src map[Action]string) map[Action]string {
	dst := make(map[Action]string, len(src))
	for action, verb := range src {
		dst[action] = verb
	}
	return dst
}

type Normalizer struct {
	Actions ActionTable
}

func NewNormalizer(actions ActionTable) Normalizer {
	if actions == nil {
		actions = DefaultActionTable()
	}
	return Normalizer{Actions: actions}
}

// Endpoint builds the API endpoint for a collection path and action.
// Two-segment collections use slash-style actions (admin/client/create);
// deeper ones use underscore-style actions (admin/kb/category_create).
func (n Normalizer) Endpoint(path string, action Action) string {
	filtered := FilterPath(path)
	joiner := "/"
	if strings.Count(filtered, "/") >= 2 {
		joiner = "_"
	}
	return filtered + joiner + n.Actions.Verb(filtered, action)
}

// Endpoint normalizes with the default action table.
func Endpoint(path string, action Action) string {
	return NewNormalizer(nil).Endpoint(path, action)
}

// FilterPath strips leading and trailing slashes and collapses repeated ones.
// Other characters, whitespace included, are kept verbatim.
func FilterPath(value string) string {
	segments := strings.Split(value, "/")
	kept := segments[:0]
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, "/")
}
