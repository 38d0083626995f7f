package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRef matches ${NAME} and ${NAME:-fallback}. The third group is only
// present when a fallback was written, even an empty one.
var envRef = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnv substitutes environment references in s. A variable that is set
// but empty wins over its fallback; an unset variable without a fallback is
// an error.
func expandEnv(s string) (string, error) {
	refs := envRef.FindAllStringSubmatchIndex(s, -1)
	if refs == nil {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range refs {
		b.WriteString(s[last:m[0]])
		last = m[1]

		name := s[m[2]:m[3]]
		if v, ok := os.LookupEnv(name); ok {
			b.WriteString(v)
			continue
		}
		if m[4] < 0 {
			return "", fmt.Errorf("environment variable %q is not set", name)
		}
		b.WriteString(s[m[6]:m[7]])
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
