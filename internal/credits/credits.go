// =============================================================================
// Graduation Audit - Credit Aggregator
// =============================================================================
//
// Summarize folds a grade sequence into a CreditSummary:
//
//   Total            every row's credits
//   buckets          first matching category rule (이수구분)
//   math/sci/comp    every matching tag rule (이수구분영역), non-exclusive
//   English counts   원어강의종류 set and not "해당없음"
//   GPA              sum(points * credits) / sum(credits), P/NP excluded
//
// Arithmetic is decimal so the result does not depend on row order.
//
// =============================================================================

package credits

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/config"
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// GPAPlaces is the number of decimal places the GPA is rounded to.
const GPAPlaces = 2

type accumulator struct {
	total   decimal.Decimal
	buckets map[string]decimal.Decimal
	tags    map[string]decimal.Decimal

	englishCourses int
	majorEnglish   int

	points      decimal.Decimal
	denominator decimal.Decimal
}

// Summarize aggregates grades using vocab. A nil vocab means the default
// vocabulary. The function has no side effects.
func Summarize(grades []types.GradeRow, vocab *config.Vocabulary) types.CreditSummary {
	if vocab == nil {
		vocab = config.DefaultVocabulary()
	}

	acc := accumulator{
		buckets: make(map[string]decimal.Decimal),
		tags:    make(map[string]decimal.Decimal),
	}
	for _, g := range grades {
		acc.add(g, vocab)
	}

	return types.CreditSummary{
		Total:           acc.total.InexactFloat64(),
		MajorRequired:   acc.bucket(config.BucketMajorRequired),
		MajorElective:   acc.bucket(config.BucketMajorElective),
		GeneralRequired: acc.bucket(config.BucketGeneralRequired),
		GeneralElective: acc.bucket(config.BucketGeneralElective),
		FreeElective:    acc.bucket(config.BucketFreeElective),
		Math:            acc.tag(config.TagMath),
		Science:         acc.tag(config.TagScience),
		Computing:       acc.tag(config.TagComputing),
		EnglishCourses:  acc.englishCourses,
		MajorEnglish:    acc.majorEnglish,
		GPA:             acc.gpa(),
	}
}

// TotalCredits returns the exact sum of the credits of grades.
func TotalCredits(grades []types.GradeRow) float64 {
	sum := decimal.Zero
	for _, g := range grades {
		sum = sum.Add(decimal.NewFromFloat(g.Credits))
	}
	return sum.InexactFloat64()
}

func (a *accumulator) add(g types.GradeRow, vocab *config.Vocabulary) {
	credits := decimal.NewFromFloat(g.Credits)
	a.total = a.total.Add(credits)

	for _, rule := range vocab.Categories {
		if rule.Matches(g.Category) {
			a.buckets[rule.Bucket] = a.buckets[rule.Bucket].Add(credits)
			break
		}
	}

	for _, rule := range vocab.Tags {
		if rule.Matches(g.SubCategory) {
			a.tags[rule.Tag] = a.tags[rule.Tag].Add(credits)
		}
	}

	if g.EnglishType != "" && g.EnglishType != vocab.EnglishNotApplicable {
		a.englishCourses++
		if vocab.MajorKeyword != "" && strings.Contains(g.Category, vocab.MajorKeyword) {
			a.majorEnglish++
		}
	}

	points, graded := vocab.GradePoints[g.Grade]
	if !graded {
		return
	}
	a.points = a.points.Add(decimal.NewFromFloat(points).Mul(credits))
	if !vocab.IsPass(g.Grade) {
		a.denominator = a.denominator.Add(credits)
	}
}

func (a *accumulator) bucket(name string) float64 {
	return a.buckets[name].InexactFloat64()
}

func (a *accumulator) tag(name string) float64 {
	return a.tags[name].InexactFloat64()
}

func (a *accumulator) gpa() float64 {
	if a.denominator.IsZero() {
		return 0
	}
	return a.points.DivRound(a.denominator, GPAPlaces).InexactFloat64()
}
