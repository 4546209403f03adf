// Package pipeline holds the pieces shared by the three stages: snapshot
// naming, the stage result contract, the run driver and the parquet helpers.
package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// TokenLayout is the time layout of the snapshot timestamp token, minute
// precision (e.g. "202401020900").
const TokenLayout = "200601021504"

// NewToken renders the timestamp token for the given instant in the given
// location. A nil location renders in UTC.
func NewToken(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TokenLayout)
}

// ObjectKey builds a snapshot object key from its tier prefix, basename,
// token and extension: <prefix>/<basename>_<token>.<ext>.
func ObjectKey(prefix, basename, token, ext string) string {
	return fmt.Sprintf("%s/%s_%s.%s", prefix, basename, token, ext)
}

// TokenOf extracts the timestamp token from an object name: the substring
// between the first underscore and the following period. It returns an error
// when the name has no underscore or no period after it.
func TokenOf(objectName string) (string, error) {
	// Keys are compared within one tier, so the prefix never participates.
	base := objectName
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}

	underscore := strings.Index(base, "_")
	if underscore < 0 {
		return "", fmt.Errorf("object name %q has no underscore before the token", objectName)
	}
	rest := base[underscore+1:]
	period := strings.Index(rest, ".")
	if period < 0 {
		return "", fmt.Errorf("object name %q has no period after the token", objectName)
	}
	return rest[:period], nil
}

// LatestToken returns the lexicographically greatest token among the given
// object names alongside the name carrying it. Tokens share a fixed-width
// digit layout, so the lexicographic order is the chronological order.
// Only names ending in the given extension are considered; stray objects
// sharing the tier never shadow a real snapshot. Names that do not yield a
// token are skipped. The boolean reports whether any token was found.
func LatestToken(objectNames []string, ext string) (token string, objectName string, ok bool) {
	suffix := "." + ext
	for _, name := range objectNames {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		t, err := TokenOf(name)
		if err != nil {
			continue
		}
		if !ok || t > token {
			token, objectName, ok = t, name, true
		}
	}
	return token, objectName, ok
}
