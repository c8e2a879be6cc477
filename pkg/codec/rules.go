package codec

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// canonicalGroup is the named capture group a rewrite pattern must define.
const canonicalGroup = "canonical"

// AmazonProductPattern collapses an Amazon product page to its /dp/<asin>/
// prefix, dropping slugs, referral paths and query strings that follow.
const AmazonProductPattern = `(?P<canonical>https://www\.amazon\.com/.*?/dp/[^/]+/).*`

// RulesFile is the YAML shape of a canonicalization rules file.
//
//	rewrite:
//	  - name: amazon-product
//	    pattern: '(?P<canonical>https://www\.amazon\.com/.*?/dp/[^/]+/).*'
//	skip:
//	  - 'chrome://newtab*'
type RulesFile struct {
	Rewrite []RewriteRule `yaml:"rewrite" validate:"dive"`
	Skip    []string      `yaml:"skip" validate:"dive,required"`
}

// RewriteRule rewrites any URL matching Pattern to its "canonical" capture.
type RewriteRule struct {
	Name    string `yaml:"name" validate:"required"`
	Pattern string `yaml:"pattern" validate:"required"`
}

type compiledRule struct {
	name  string
	re    *regexp.Regexp
	group int
}

// Canonicalizer rewrites URLs to a stable form for de-duplication and
// decides which URLs are left out of the Markdown table entirely.
type Canonicalizer struct {
	rules []compiledRule
	skip  []glob.Glob
}

// DefaultRules returns the built-in rule set.
func DefaultRules() RulesFile {
	return RulesFile{
		Rewrite: []RewriteRule{{Name: "amazon-product", Pattern: AmazonProductPattern}},
	}
}

// DefaultCanonicalizer compiles DefaultRules.
func DefaultCanonicalizer() *Canonicalizer {
	c, err := NewCanonicalizer(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("codec: default rules do not compile: %v", err))
	}
	return c
}

var validate = validator.New()

// NewCanonicalizer validates and compiles a rule set.
func NewCanonicalizer(rf RulesFile) (*Canonicalizer, error) {
	if err := validate.Struct(rf); err != nil {
		return nil, fmt.Errorf("codec: invalid rules: %w", err)
	}

	c := &Canonicalizer{}
	for _, r := range rf.Rewrite {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("codec: rule %q: %w", r.Name, err)
		}
		group := re.SubexpIndex(canonicalGroup)
		if group < 0 {
			return nil, fmt.Errorf("codec: rule %q: pattern has no (?P<%s>...) group", r.Name, canonicalGroup)
		}
		c.rules = append(c.rules, compiledRule{name: r.Name, re: re, group: group})
	}
	for _, pattern := range rf.Skip {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("codec: invalid skip pattern '%s': %w", pattern, err)
		}
		c.skip = append(c.skip, g)
	}
	return c, nil
}

// LoadRules reads a YAML rules file. The built-in Amazon rule is kept unless
// the file defines a rule with the same name.
func LoadRules(path string) (*Canonicalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codec: read rules file: %w", err)
	}
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("codec: parse rules file: %w", err)
	}

	merged := RulesFile{Skip: rf.Skip}
	overridden := make(map[string]bool, len(rf.Rewrite))
	for _, r := range rf.Rewrite {
		overridden[strings.TrimSpace(r.Name)] = true
	}
	for _, r := range DefaultRules().Rewrite {
		if !overridden[r.Name] {
			merged.Rewrite = append(merged.Rewrite, r)
		}
	}
	merged.Rewrite = append(merged.Rewrite, rf.Rewrite...)
	return NewCanonicalizer(merged)
}

// Canonical returns the rewritten URL. The first matching rule wins; URLs no
// rule matches are returned unchanged.
func (c *Canonicalizer) Canonical(url string) string {
	if c == nil {
		return url
	}
	for _, r := range c.rules {
		if m := r.re.FindStringSubmatch(url); m != nil {
			return m[r.group]
		}
	}
	return url
}

// Skipped reports whether url matches a skip glob.
func (c *Canonicalizer) Skipped(url string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.skip {
		if g.Match(url) {
			return true
		}
	}
	return false
}
