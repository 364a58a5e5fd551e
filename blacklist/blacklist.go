package blacklist

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder is replaced with the matched word in every response template.
const Placeholder = "{{blacklistedWord}}"

// List is one language's forbidden words and the replies used when one is mentioned.
type List struct {
	Language string `yaml:"language"`
	// Lowercase folds the input before matching. Words must already be lower case.
	Lowercase bool     `yaml:"lowercase"`
	Words     []string `yaml:"words"`
	Responses []string `yaml:"responses"`
}

// Config is the on-disk shape of a blacklist file.
type Config struct {
	// Symbols are stripped from the input before matching.
	Symbols string `yaml:"symbols"`
	Lists   []List `yaml:"lists"`
}

// Match describes a blacklist hit.
type Match struct {
	Language string
	Word     string
	Response string
}

// Randomizer picks an index uniformly from [0, n).
type Randomizer interface {
	IntN(n int) int
}

// Filter checks questions against the configured lists in order; the first hit wins.
type Filter struct {
	symbols *regexp.Regexp
	lists   []List
}

func New(cfg Config) (*Filter, error) {
	f := &Filter{lists: cfg.Lists}
	if cfg.Symbols != "" {
		class := strings.ReplaceAll(regexp.QuoteMeta(cfg.Symbols), "-", `\-`)
		re, err := regexp.Compile("[" + class + "]")
		if err != nil {
			return nil, fmt.Errorf("compile symbol class: %w", err)
		}
		f.symbols = re
	}
	for _, l := range cfg.Lists {
		if len(l.Words) > 0 && len(l.Responses) == 0 {
			return nil, fmt.Errorf("blacklist %q has words but no responses", l.Language)
		}
	}
	return f, nil
}

// Default returns the built-in Chinese and English lists.
func Default() *Filter {
	f, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads a YAML blacklist file.
func Load(path string) (*Filter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blacklist file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse blacklist file %s: %w", path, err)
	}
	return New(cfg)
}

// Check reports the first blacklisted word contained in input, with a reply
// chosen by rng.
func (f *Filter) Check(input string, rng Randomizer) (Match, bool) {
	stripped := input
	if f.symbols != nil {
		stripped = f.symbols.ReplaceAllString(input, "")
	}
	lowered := strings.ToLower(stripped)

	for _, l := range f.lists {
		text := stripped
		if l.Lowercase {
			text = lowered
		}
		for _, word := range l.Words {
			if word == "" || !strings.Contains(text, word) {
				continue
			}
			tmpl := l.Responses[rng.IntN(len(l.Responses))]
			return Match{
				Language: l.Language,
				Word:     word,
				Response: strings.ReplaceAll(tmpl, Placeholder, word),
			}, true
		}
	}
	return Match{}, false
}
