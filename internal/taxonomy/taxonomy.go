// Package taxonomy loads the industry skill taxonomy used for résumé matching.
//
// A taxonomy is an ordered list of industries. Each industry carries a skill set
// split into the fixed categories technical, soft and certifications, plus the
// keyword patterns used to detect the industry from a job description. Order is
// significant: detection ties resolve to the industry listed first.
package taxonomy

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed data/*.json
var dataFiles embed.FS

// ErrInvalid is returned when a taxonomy document fails validation.
var ErrInvalid = errors.New("invalid taxonomy")

// Category names are fixed across every industry.
const (
	CategoryTechnical      = "technical"
	CategorySoft           = "soft"
	CategoryCertifications = "certifications"
)

// Categories lists the skill categories in report order.
var Categories = []string{CategoryTechnical, CategorySoft, CategoryCertifications}

// SkillSet holds the expected skills of an industry per category.
type SkillSet struct {
	Technical      []string `json:"technical"`
	Soft           []string `json:"soft"`
	Certifications []string `json:"certifications"`
}

// Category returns the skills of the named category, or nil for an unknown name.
func (s SkillSet) Category(name string) []string {
	switch name {
	case CategoryTechnical:
		return s.Technical
	case CategorySoft:
		return s.Soft
	case CategoryCertifications:
		return s.Certifications
	default:
		return nil
	}
}

// Total returns the number of skills across all categories.
func (s SkillSet) Total() int {
	return len(s.Technical) + len(s.Soft) + len(s.Certifications)
}

// Industry is one taxonomy entry.
type Industry struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Skills   SkillSet `json:"skills"`
	Keywords []string `json:"keywords"`

	patterns []*regexp.Regexp
}

// CountMatches sums the non-overlapping matches of every detection keyword in text.
func (i Industry) CountMatches(text string) int {
	total := 0
	for _, re := range i.patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

// Taxonomy is read-only after Load and safe for concurrent use.
type Taxonomy struct {
	industries      []Industry
	index           map[string]int
	defaultIndustry string
}

type document struct {
	DefaultIndustry string     `json:"defaultIndustry"`
	Industries      []Industry `json:"industries"`
}

// Load parses and validates a taxonomy document.
func Load(r io.Reader) (*Taxonomy, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}

	t := &Taxonomy{
		industries: make([]Industry, 0, len(doc.Industries)),
		index:      make(map[string]int, len(doc.Industries)),
	}
	for _, ind := range doc.Industries {
		name := normalizeName(ind.Name)
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate industry %q", ErrInvalid, name)
		}
		for _, category := range Categories {
			if dup := firstDuplicate(ind.Skills.Category(category)); dup != "" {
				return nil, fmt.Errorf("%w: industry %q has duplicate %s skill %q", ErrInvalid, name, category, dup)
			}
		}
		ind.Name = name
		if strings.TrimSpace(ind.Label) == "" {
			ind.Label = name
		}
		ind.patterns = compileKeywords(ind.Keywords)
		t.index[name] = len(t.industries)
		t.industries = append(t.industries, ind)
	}

	def := normalizeName(doc.DefaultIndustry)
	if _, ok := t.index[def]; !ok {
		return nil, fmt.Errorf("%w: default industry %q is not defined", ErrInvalid, def)
	}
	t.defaultIndustry = def
	return t, nil
}

// LoadFile loads a taxonomy from a JSON file on disk.
func LoadFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy %s: %w", path, err)
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", path, err)
	}
	return t, nil
}

var defaultTaxonomy = sync.OnceValues(func() (*Taxonomy, error) {
	raw, err := dataFiles.ReadFile("data/industries.json")
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(raw))
})

// Default returns the embedded taxonomy. It panics if the embedded data is invalid,
// which the package tests guard against.
func Default() *Taxonomy {
	t, err := defaultTaxonomy()
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded data: %v", err))
	}
	return t
}

// Industries returns the industries in taxonomy order.
func (t *Taxonomy) Industries() []Industry {
	out := make([]Industry, len(t.industries))
	copy(out, t.industries)
	return out
}

// Names returns the industry names in taxonomy order.
func (t *Taxonomy) Names() []string {
	out := make([]string, 0, len(t.industries))
	for _, ind := range t.industries {
		out = append(out, ind.Name)
	}
	return out
}

// DefaultIndustry returns the fallback industry name.
func (t *Taxonomy) DefaultIndustry() string {
	return t.defaultIndustry
}

// Lookup finds an industry by name, ignoring case and surrounding whitespace.
func (t *Taxonomy) Lookup(name string) (Industry, bool) {
	idx, ok := t.index[normalizeName(name)]
	if !ok {
		return Industry{}, false
	}
	return t.industries[idx], true
}

// Resolve maps a caller-supplied name onto a known industry, falling back to the default.
func (t *Taxonomy) Resolve(name string) string {
	if ind, ok := t.Lookup(name); ok {
		return ind.Name
	}
	return t.defaultIndustry
}

// Skills returns the skill set for name, or the default industry's set when name is unknown.
func (t *Taxonomy) Skills(name string) SkillSet {
	if ind, ok := t.Lookup(name); ok {
		return ind.Skills
	}
	return t.industries[t.index[t.defaultIndustry]].Skills
}

// WithDefault returns a copy of t whose fallback industry is name.
func (t *Taxonomy) WithDefault(name string) (*Taxonomy, error) {
	ind, ok := t.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown default industry %q", ErrInvalid, name)
	}
	cp := *t
	cp.defaultIndustry = ind.Name
	return &cp, nil
}

func validateSchema(raw []byte) error {
	schema, err := dataFiles.ReadFile("data/schema.json")
	if err != nil {
		return fmt.Errorf("read taxonomy schema: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// compileKeywords compiles each keyword as a case-insensitive pattern. Keywords that
// are not valid regular expressions are matched literally.
func compileKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		re, err := regexp.Compile("(?i)" + kw)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(kw))
		}
		out = append(out, re)
	}
	return out
}

func firstDuplicate(items []string) string {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if _, ok := seen[key]; ok {
			return item
		}
		seen[key] = struct{}{}
	}
	return ""
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
