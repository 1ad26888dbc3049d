package record

import (
	"reflect"
)

// Step is one migration from an older record layout towards the current one.
// Apply receives a private copy of the document and returns it; every step is
// idempotent.
type Step struct {
	Name  string
	Apply func(doc map[string]any, schemaTag string) map[string]any
}

// legacyTagKey is the schema tag key used by layouts before 2.0.0, both at the
// top level (oldest) and under config.
const legacyTagKey = "appversion"

var listKeys = []string{"ignore", "markdown", "json"}

// ConventionalManifests are handled by convention during propagation and are
// therefore removed from config.json on load.
var ConventionalManifests = []string{"package.json", "bower.json"}

// Steps is the ordered migration chain.
var Steps = []Step{
	{Name: "ensure-config", Apply: ensureConfig},
	{Name: "hoist-legacy-lists", Apply: hoistLegacyLists},
	{Name: "drop-legacy-tag", Apply: dropLegacyTag},
	{Name: "strip-conventional-manifests", Apply: stripConventionalManifests},
	{Name: "normalize-lists", Apply: normalizeLists},
	{Name: "stamp-schema", Apply: stampSchema},
}

// Migrate upgrades raw to the layout identified by schemaTag. The input is not
// modified. Migrate never fails.
func Migrate(raw map[string]any, schemaTag string) map[string]any {
	if schemaTag == "" {
		schemaTag = CurrentSchema
	}
	doc := deepCopyObject(raw)
	if doc == nil {
		doc = map[string]any{}
	}
	for _, step := range Steps {
		doc = step.Apply(doc, schemaTag)
	}
	return doc
}

// NeedsMigration reports whether raw differs from its migrated form.
func NeedsMigration(raw map[string]any, schemaTag string) bool {
	return !reflect.DeepEqual(raw, Migrate(raw, schemaTag))
}

func configOf(doc map[string]any) map[string]any {
	cfg, _ := doc["config"].(map[string]any)
	return cfg
}

func ensureConfig(doc map[string]any, schemaTag string) map[string]any {
	if configOf(doc) != nil {
		return doc
	}
	doc["config"] = map[string]any{
		"schemaVersion": schemaTag,
		"ignore":        []any{},
		"markdown":      []any{},
		"json":          []any{},
	}
	return doc
}

func hoistLegacyLists(doc map[string]any, _ string) map[string]any {
	cfg := configOf(doc)
	for _, key := range listKeys {
		legacy, ok := doc[key]
		if !ok {
			continue
		}
		delete(doc, key)
		items, ok := legacy.([]any)
		if !ok {
			continue
		}
		existing, _ := cfg[key].([]any)
		cfg[key] = append(existing, items...)
	}
	return doc
}

func dropLegacyTag(doc map[string]any, _ string) map[string]any {
	cfg := configOf(doc)
	for _, holder := range []map[string]any{doc, cfg} {
		tag, ok := holder[legacyTagKey]
		if !ok {
			continue
		}
		if _, has := cfg["schemaVersion"]; !has {
			if s, isString := tag.(string); isString {
				cfg["schemaVersion"] = s
			}
		}
		delete(holder, legacyTagKey)
	}
	return doc
}

func stripConventionalManifests(doc map[string]any, _ string) map[string]any {
	cfg := configOf(doc)
	items, ok := cfg["json"].([]any)
	if !ok {
		return doc
	}
	kept := make([]any, 0, len(items))
	for _, item := range items {
		if s, isString := item.(string); isString && isConventional(s) {
			continue
		}
		kept = append(kept, item)
	}
	cfg["json"] = kept
	return doc
}

func isConventional(name string) bool {
	for _, c := range ConventionalManifests {
		if name == c {
			return true
		}
	}
	return false
}

func normalizeLists(doc map[string]any, _ string) map[string]any {
	cfg := configOf(doc)
	for _, key := range listKeys {
		items, ok := cfg[key].([]any)
		if !ok {
			cfg[key] = []any{}
			continue
		}
		cfg[key] = dedupe(items)
	}
	return doc
}

// dedupe drops repeated strings, keeping the first occurrence. Non-string
// entries are left for schema validation to reject.
func dedupe(items []any) []any {
	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

func stampSchema(doc map[string]any, schemaTag string) map[string]any {
	configOf(doc)["schemaVersion"] = schemaTag
	return doc
}

func deepCopyObject(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyObject(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return t
	}
}
