// =============================================================================
// Graduation Audit - Payload Transformer
// =============================================================================
//
// Two projections of the reconciled records:
//
//   ToAnonymized    normal records only, no identity fields
//   ToMappingTable  every record, pseudonym -> (student id, name)
//
// The two results are meant to be stored under different access policies.
// Student has no field that could carry a student id or a name.
//
// =============================================================================

package payload

import (
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// Student is the anonymized form of a matched record.
type Student struct {
	EncryptedID   string           `json:"encryptedId"`
	AdmissionYear int              `json:"admissionYear"`
	StudentType   string           `json:"studentType"`
	Major         string           `json:"major"`
	DoubleMajors  []string         `json:"doubleMajors"`
	Grades        []types.GradeRow `json:"grades"`
}

// Identity is the re-identification data of one pseudonym.
type Identity struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// ToAnonymized projects the normal records, in input order.
func ToAnonymized(records []types.StudentRecord) []Student {
	out := make([]Student, 0, len(records))
	for _, r := range records {
		if r.Status != types.StatusNormal {
			continue
		}
		out = append(out, Student{
			EncryptedID:   r.EncryptedID,
			AdmissionYear: r.AdmissionYear,
			StudentType:   r.StudentType,
			Major:         r.Major,
			DoubleMajors:  nonNil(r.DoubleMajors),
			Grades:        nonNilGrades(r.Grades),
		})
	}
	return out
}

// ToMappingTable maps every record's pseudonym to its identity. When two
// records share a pseudonym the later one wins.
func ToMappingTable(records []types.StudentRecord) map[string]Identity {
	mapping := make(map[string]Identity, len(records))
	for _, r := range records {
		mapping[r.EncryptedID] = Identity{StudentID: r.StudentID, Name: r.Name}
	}
	return mapping
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilGrades(g []types.GradeRow) []types.GradeRow {
	if g == nil {
		return []types.GradeRow{}
	}
	return g
}
