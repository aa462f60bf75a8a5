package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// keyAliases maps accepted camelCase keys to their canonical names.
var keyAliases = map[string]string{
	"userAgent": "user_agent",
	"waitFor":   "wait_for",
}

// expandEnvVars replaces ${VAR} references in s. Variables that are unset and
// have no default are reported by name.
func expandEnvVars(s string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name := parts[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if parts[2] != "" {
			return parts[3]
		}
		missing = append(missing, name)
		return match
	})
	return out, missing
}

// normalizeNode expands environment variables in every scalar and renames
// aliased mapping keys, in place. It returns one problem line per unresolved
// variable.
func normalizeNode(n *yaml.Node, path string) []string {
	var problems []string
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for i, child := range n.Content {
			childPath := path
			if n.Kind == yaml.SequenceNode {
				childPath = fmt.Sprintf("%s[%d]", path, i)
			}
			problems = append(problems, normalizeNode(child, childPath)...)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if canonical, ok := keyAliases[key.Value]; ok {
				key.Value = canonical
			}
			childPath := key.Value
			if path != "" {
				childPath = path + "." + key.Value
			}
			problems = append(problems, normalizeNode(value, childPath)...)
		}
	case yaml.ScalarNode:
		if !strings.Contains(n.Value, "${") {
			return nil
		}
		expanded, missing := expandEnvVars(n.Value)
		for _, name := range missing {
			problems = append(problems,
				fmt.Sprintf("Validation failed for '%s': environment variable '%s' is not set", path, name))
		}
		n.Value = expanded
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle|yaml.TaggedStyle) == 0 {
			// Let the decoder re-resolve the type, so timeout: ${T} decodes as an int.
			n.Tag = ""
		}
	}
	return problems
}
