package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Categories used by the default block rules.
const (
	CategoryCrime       = "crime"
	CategoryMinors      = "minors"
	CategoryAccusations = "accusations"
)

// Rule is one trigger fragment tagged with the category it protects.
type Rule struct {
	Category string `yaml:"category"`
	Fragment string `yaml:"fragment"`
}

// Rules is the editorial policy as data.
//
//	focus_keyword: concord
//	local_hosts: [elheraldo.com.ar]
//	url_fragments:
//	  - {category: crime, fragment: /policiales}
//	keywords:
//	  - {category: accusations, fragment: denuncia}
type Rules struct {
	FocusKeyword string   `yaml:"focus_keyword"`
	FocusWindow  int      `yaml:"focus_window"`
	LocalHosts   []string `yaml:"local_hosts"`
	URLFragments []Rule   `yaml:"url_fragments"`
	Keywords     []Rule   `yaml:"keywords"`
}

// Default returns the built-in policy for Concordia, Entre Ríos.
func Default() Rules {
	return Rules{
		FocusKeyword: "concord",
		FocusWindow:  300,
		LocalHosts: []string{
			"concordia.gob.ar",
			"elheraldo.com.ar",
			"diariojunio.com.ar",
			"concordiahoy.com",
		},
		URLFragments: []Rule{
			{CategoryCrime, "/policiales"},
			{CategoryCrime, "/policial/"},
			{CategoryCrime, "/judiciales"},
			{CategoryCrime, "/sucesos"},
			{CategoryCrime, "/seguridad/"},
			{CategoryMinors, "/abuso"},
			{CategoryMinors, "/grooming"},
		},
		Keywords: []Rule{
			{CategoryCrime, "homicidio"},
			{CategoryCrime, "asesinato"},
			{CategoryCrime, "femicidio"},
			{CategoryCrime, "apuñal"},
			{CategoryCrime, "balacera"},
			{CategoryCrime, "detenido"},
			{CategoryCrime, "asalto"},
			{CategoryMinors, "menor de edad"},
			{CategoryMinors, "menores"},
			{CategoryMinors, "abuso"},
			{CategoryMinors, "grooming"},
			{CategoryAccusations, "denuncia"},
			{CategoryAccusations, "acusado"},
			{CategoryAccusations, "acusada"},
			{CategoryAccusations, "imputado"},
			{CategoryAccusations, "imputada"},
		},
	}
}

// LoadRules reads a policy file over the defaults. An empty path or a
// missing file yields Default(). Lists present in the file replace the
// built-in lists entirely.
func LoadRules(path string) (Rules, error) {
	rules := Default()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return rules, nil
	}
	if err != nil {
		return rules, fmt.Errorf("read policy %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return rules, rules.Validate()
}

func (r Rules) Validate() error {
	if strings.TrimSpace(r.FocusKeyword) == "" {
		return fmt.Errorf("policy: focus_keyword is required")
	}
	if r.FocusWindow <= 0 {
		return fmt.Errorf("policy: focus_window must be positive")
	}
	for _, list := range [][]Rule{r.URLFragments, r.Keywords} {
		for i, rule := range list {
			if strings.TrimSpace(rule.Fragment) == "" {
				return fmt.Errorf("policy: rule %d (%s) has empty fragment", i, rule.Category)
			}
		}
	}
	return nil
}
