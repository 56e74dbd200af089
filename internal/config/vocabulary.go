package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// BUCKETS AND TAGS
// =============================================================================

// Primary credit buckets. Every grade row lands in at most one of them.
const (
	BucketMajorRequired   = "major_required"
	BucketMajorElective   = "major_elective"
	BucketGeneralRequired = "general_required"
	BucketGeneralElective = "general_elective"
	BucketFreeElective    = "free_elective"
)

// Subcategory tags. A grade row may carry any number of them.
const (
	TagMath      = "math"
	TagScience   = "science"
	TagComputing = "computing"
)

var knownBuckets = map[string]bool{
	BucketMajorRequired:   true,
	BucketMajorElective:   true,
	BucketGeneralRequired: true,
	BucketGeneralElective: true,
	BucketFreeElective:    true,
}

var knownTags = map[string]bool{
	TagMath:      true,
	TagScience:   true,
	TagComputing: true,
}

// =============================================================================
// VOCABULARY STRUCTURE
// =============================================================================

// Vocabulary is the label table the credit aggregator classifies with.
// Institutions with other labeling conventions supply their own file.
type Vocabulary struct {
	// Categories are tested in order against the completion category
	// (이수구분); the first matching rule decides the bucket.
	Categories []CategoryRule `yaml:"categories" toml:"categories"`

	// Tags are tested independently against the subcategory (이수구분영역).
	Tags []TagRule `yaml:"tags" toml:"tags"`

	// EnglishNotApplicable is the 원어강의종류 value meaning "not an
	// English-taught course".
	EnglishNotApplicable string `yaml:"english_not_applicable" toml:"english_not_applicable"`

	// MajorKeyword marks a category as a major course for the
	// major-English counter.
	MajorKeyword string `yaml:"major_keyword" toml:"major_keyword"`

	// GradePoints maps letter grades to grade points.
	GradePoints map[string]float64 `yaml:"grade_points" toml:"grade_points"`

	// PassGrades are graded grades excluded from the GPA denominator.
	PassGrades []string `yaml:"pass_grades" toml:"pass_grades"`
}

// CategoryRule maps completion-category text to a bucket.
type CategoryRule struct {
	Bucket string `yaml:"bucket" toml:"bucket"`

	// Contains matches when the category text contains any of the values.
	Contains []string `yaml:"contains" toml:"contains"`

	// Aliases match the whole category text exactly (e.g. abbreviations).
	Aliases []string `yaml:"aliases" toml:"aliases"`
}

// Matches reports whether the category text belongs to this rule.
func (r CategoryRule) Matches(category string) bool {
	for _, s := range r.Contains {
		if s != "" && strings.Contains(category, s) {
			return true
		}
	}
	for _, a := range r.Aliases {
		if category == a {
			return true
		}
	}
	return false
}

// TagRule maps subcategory keywords to a tag.
type TagRule struct {
	Tag      string   `yaml:"tag" toml:"tag"`
	Contains []string `yaml:"contains" toml:"contains"`
}

// Matches reports whether the subcategory text carries this tag.
func (r TagRule) Matches(subCategory string) bool {
	for _, s := range r.Contains {
		if s != "" && strings.Contains(subCategory, s) {
			return true
		}
	}
	return false
}

// IsPass reports whether grade is a pass/no-pass grade.
func (v *Vocabulary) IsPass(grade string) bool {
	for _, p := range v.PassGrades {
		if p == grade {
			return true
		}
	}
	return false
}

// =============================================================================
// DEFAULT VOCABULARY
// =============================================================================

// DefaultVocabulary returns the Dongguk University labels.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Categories: []CategoryRule{
			{Bucket: BucketMajorRequired, Contains: []string{"전공필수"}, Aliases: []string{"전필"}},
			{Bucket: BucketMajorElective, Contains: []string{"전공선택"}, Aliases: []string{"전선"}},
			{Bucket: BucketGeneralRequired, Contains: []string{"공통교양"}, Aliases: []string{"교필"}},
			{Bucket: BucketGeneralElective, Contains: []string{"일반교양"}, Aliases: []string{"교선"}},
			{Bucket: BucketFreeElective, Contains: []string{"자유선택"}, Aliases: []string{"자선"}},
		},
		Tags: []TagRule{
			{Tag: TagMath, Contains: []string{"수학"}},
			{Tag: TagScience, Contains: []string{"과학"}},
			{Tag: TagComputing, Contains: []string{"전산"}},
		},
		EnglishNotApplicable: "해당없음",
		MajorKeyword:         "전공",
		GradePoints: map[string]float64{
			"A+": 4.5, "A0": 4.0,
			"B+": 3.5, "B0": 3.0,
			"C+": 2.5, "C0": 2.0,
			"D+": 1.5, "D0": 1.0,
			"F": 0, "P": 0, "NP": 0,
		},
		PassGrades: []string{"P", "NP"},
	}
}

// =============================================================================
// LOADING AND VALIDATION
// =============================================================================

// LoadVocabulary reads a vocabulary file. The format is chosen by extension:
// .yaml/.yml use YAML, .toml uses TOML. An empty path returns the default.
// Sections missing from the file are taken from the default vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var v Vocabulary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	case ".toml":
		err = toml.Unmarshal(data, &v)
	default:
		return nil, fmt.Errorf("%w: unsupported vocabulary format %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	applyVocabularyDefaults(&v)

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

func applyVocabularyDefaults(v *Vocabulary) {
	def := DefaultVocabulary()
	if len(v.Categories) == 0 {
		v.Categories = def.Categories
	}
	if len(v.Tags) == 0 {
		v.Tags = def.Tags
	}
	if v.EnglishNotApplicable == "" {
		v.EnglishNotApplicable = def.EnglishNotApplicable
	}
	if v.MajorKeyword == "" {
		v.MajorKeyword = def.MajorKeyword
	}
	if len(v.GradePoints) == 0 {
		v.GradePoints = def.GradePoints
	}
	if v.PassGrades == nil {
		v.PassGrades = def.PassGrades
	}
}

// Validate checks bucket and tag names and the grade table.
func (v *Vocabulary) Validate() error {
	for i, rule := range v.Categories {
		if !knownBuckets[rule.Bucket] {
			return fmt.Errorf("%w: category rule %d has unknown bucket %q", ErrInvalidConfig, i+1, rule.Bucket)
		}
		if len(rule.Contains) == 0 && len(rule.Aliases) == 0 {
			return fmt.Errorf("%w: category rule %d (%s) has no labels", ErrInvalidConfig, i+1, rule.Bucket)
		}
	}

	for i, rule := range v.Tags {
		if !knownTags[rule.Tag] {
			return fmt.Errorf("%w: tag rule %d has unknown tag %q", ErrInvalidConfig, i+1, rule.Tag)
		}
		if len(rule.Contains) == 0 {
			return fmt.Errorf("%w: tag rule %d (%s) has no keywords", ErrInvalidConfig, i+1, rule.Tag)
		}
	}

	for grade, points := range v.GradePoints {
		if points < 0 {
			return fmt.Errorf("%w: grade %q has negative points", ErrInvalidConfig, grade)
		}
	}

	for _, p := range v.PassGrades {
		if _, ok := v.GradePoints[p]; !ok {
			return fmt.Errorf("%w: pass grade %q missing from grade_points", ErrInvalidConfig, p)
		}
	}

	return nil
}
