// Package fetch implements the landing stage: it pulls the current standings
// from the upstream API, flattens each row and writes the landing snapshot.
package fetch

// Flatten rewrites a nested document into a single-level map whose keys are
// the dot-joined paths of the original values ("team.id", "all.goals.for").
// Non-map values, including arrays, are kept as-is under their path.
func Flatten(doc map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{})
	flattenInto(flat, "", doc)
	return flat
}

func flattenInto(flat map[string]interface{}, prefix string, doc map[string]interface{}) {
	for key, value := range doc {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			flattenInto(flat, path, nested)
			continue
		}
		flat[path] = value
	}
}
