// Package version normalizes and compares the loosely formatted version
// strings captured by fingerprint rules.
package version

import (
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var numericRegex = regexp.MustCompile(`\d+(?:\.\d+)*`)

// Normalize reduces a raw captured version string to its canonical
// dotted-numeric form: surrounding whitespace is trimmed, a single leading
// v/V/r/R prefix is dropped, and the first maximal run of digits and dots is
// kept. Trailing qualifiers ("-alpha", "(Ubuntu)", build metadata) are
// discarded and unrecoverable. ok is false when no digit sequence is found or
// the extracted string does not parse as a version.
func Normalize(raw string) (normalized string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	switch s[0] {
	case 'v', 'V', 'r', 'R':
		s = s[1:]
	}

	s = numericRegex.FindString(s)
	if s == "" {
		return "", false
	}
	if _, err := goversion.NewVersion(s); err != nil {
		return "", false
	}
	return s, true
}

// Compare orders two version strings numerically segment by segment, with a
// missing trailing segment treated as 0 (so "2.4" == "2.4.0"). It returns -1,
// 0 or 1. When either side fails to parse as a version the comparison falls
// back to ordinal string comparison; this fallback is deliberate, not an
// error.
func Compare(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// Parts holds the dotted segments of a normalized version. Absent segments
// are nil. Segments past the third are joined back with '.' into Additional.
type Parts struct {
	Major      *int   `json:"major"`
	Minor      *int   `json:"minor"`
	Patch      *int   `json:"patch"`
	Additional string `json:"additional,omitempty"`
}

// GetParts splits a version string into major/minor/patch components after
// normalizing it. ok is false when the string does not normalize.
func GetParts(raw string) (Parts, bool) {
	normalized, ok := Normalize(raw)
	if !ok {
		return Parts{}, false
	}

	segments := strings.Split(normalized, ".")
	var parts Parts
	if len(segments) > 0 {
		parts.Major = segmentInt(segments[0])
	}
	if len(segments) > 1 {
		parts.Minor = segmentInt(segments[1])
	}
	if len(segments) > 2 {
		parts.Patch = segmentInt(segments[2])
	}
	if len(segments) > 3 {
		parts.Additional = strings.Join(segments[3:], ".")
	}
	return parts, true
}

func segmentInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// InRange reports whether a version satisfies a range expression such as
// ">=1.0.0,<2.0.0". Conditions are comma separated; each is one of >=, >, <=,
// <, == or a bare version meaning exact equality. Unparseable versions or
// ranges report false.
func InRange(versionStr, versionRange string) bool {
	v, err := goversion.NewVersion(versionStr)
	if err != nil {
		return false
	}

	conditions := strings.Split(versionRange, ",")
	for i, c := range conditions {
		c = strings.TrimSpace(c)
		// go-version spells equality "=", the corpus uses "==" or a bare
		// version.
		if strings.HasPrefix(c, "==") {
			c = "=" + strings.TrimPrefix(c, "==")
		} else if c != "" && c[0] >= '0' && c[0] <= '9' {
			c = "= " + c
		}
		conditions[i] = c
	}

	constraint, err := goversion.NewConstraint(strings.Join(conditions, ","))
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
