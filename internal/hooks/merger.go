package hooks

import (
	"strings"

	"github.com/rs/zerolog"
)

// lookupTrigger returns the trigger array at the schema's key path.
// Missing or wrongly typed nodes mean there is no array.
func lookupTrigger(doc map[string]any, path []string) ([]any, bool) {
	node := doc
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	arr, ok := node[path[len(path)-1]].([]any)
	return arr, ok
}

// ensureTrigger walks the key path, creating any missing objects, and returns
// the object holding the trigger array together with the array itself.
// Sibling keys at every level are left alone. A node of the wrong type is
// replaced and logged.
func ensureTrigger(doc map[string]any, path []string, log zerolog.Logger) (map[string]any, []any) {
	node := doc
	for i, key := range path[:len(path)-1] {
		switch next := node[key].(type) {
		case map[string]any:
			node = next
		default:
			if next != nil {
				log.Warn().Str("key", strings.Join(path[:i+1], ".")).Msg("replacing non-object value")
			}
			created := make(map[string]any)
			node[key] = created
			node = created
		}
	}

	last := path[len(path)-1]
	switch arr := node[last].(type) {
	case []any:
		return node, arr
	case nil:
		return node, []any{}
	default:
		log.Warn().Str("key", strings.Join(path, ".")).Msg("replacing non-array value")
		return node, []any{}
	}
}

// applyDefaults sets each schema default that the document does not carry yet
func applyDefaults(doc map[string]any, defaults map[string]any) {
	for key, value := range defaults {
		if _, ok := doc[key]; !ok {
			doc[key] = value
		}
	}
}

// owns reports whether a trigger-array element is a toasty-managed entry.
// Non-objects and elements without the expected field never match.
func (s Schema) owns(elem any) bool {
	obj, ok := elem.(map[string]any)
	if !ok {
		return false
	}

	if s.Layout == LayoutFlat {
		return commandMatches(obj[s.CommandField])
	}

	inner, ok := obj["hooks"].([]any)
	if !ok {
		return false
	}
	for _, hook := range inner {
		hookObj, ok := hook.(map[string]any)
		if !ok {
			continue
		}
		if commandMatches(hookObj[s.CommandField]) {
			return true
		}
	}
	return false
}

func commandMatches(v any) bool {
	cmd, ok := v.(string)
	return ok && strings.Contains(cmd, ProgramName)
}

// containsOwned reports whether any element of the trigger array is ours
func (s Schema) containsOwned(arr []any) bool {
	for _, elem := range arr {
		if s.owns(elem) {
			return true
		}
	}
	return false
}

// withoutOwned returns the array minus every toasty-managed element, in the
// original order, and the number of elements dropped
func (s Schema) withoutOwned(arr []any) ([]any, int) {
	kept := make([]any, 0, len(arr))
	for _, elem := range arr {
		if !s.owns(elem) {
			kept = append(kept, elem)
		}
	}
	return kept, len(arr) - len(kept)
}
