// =============================================================================
// Graduation Audit - Shared Types
// =============================================================================
//
// This package contains the data model shared by every stage of the
// reconciliation pipeline. Keeping the types here avoids import cycles
// between:
//   - roster      (builds RosterEntry)
//   - transcript  (builds GradeRow)
//   - reconcile   (builds StudentRecord)
//   - credits     (builds CreditSummary)
//   - payload     (projects StudentRecord)
//
// =============================================================================

package types

// =============================================================================
// SENTINELS
// =============================================================================

const (
	// UnknownID is the raw identifier and pseudonym used when an archive entry
	// does not yield a student identifier.
	UnknownID = "unknown"

	// UnknownLabel fills roster-derived text fields of records that have no
	// verified roster entry.
	UnknownLabel = "알 수 없음"
)

// =============================================================================
// ROSTER TYPES
// =============================================================================

// RosterEntry is one student row of the master roster.
type RosterEntry struct {
	// StudentID is the unique key (학번).
	StudentID string `json:"studentId"`

	Name          string `json:"name"`
	AdmissionYear int    `json:"admissionYear"`

	// StudentType is free text such as 일반, 전과생, 3학년편입, 학석사연계.
	StudentType string `json:"studentType"`

	// IPP is the long-term internship completion flag (Y/N).
	IPP string `json:"ipp"`

	SemesterCount   int    `json:"semesterCount"`
	GradExpectation string `json:"gradExpectation"`
	LanguageType    string `json:"languageType"`
	LanguageScore   string `json:"languageScore"`
	Thesis          string `json:"thesis"`
	Exam            string `json:"exam"`
	Major           string `json:"major"`
	IsDeepMajor     string `json:"isDeepMajor"`

	// Minors holds up to five secondary majors in slot order.
	Minors []string `json:"minors"`
}

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// GradeRow is a single completed-course line of a transcript.
//
// The four pointer fields are optional: nil means the column is absent from
// the source sheet, a pointer to "" means the column exists but the cell is
// blank.
type GradeRow struct {
	No             int     `json:"no"`
	YearSemester   string  `json:"yearSemester"`
	SubjectCode    string  `json:"subjectCode"`
	ClassNum       string  `json:"classNum"`
	SubjectName    string  `json:"subjectName"`
	Professor      string  `json:"professor"`
	EnglishType    string  `json:"englishType"`
	Recognition    string  `json:"recognition"`
	Category       string  `json:"category"`
	SubCategory    string  `json:"subCategory"`
	Credits        float64 `json:"credits"`
	Grade          string  `json:"grade"`
	DeleteCategory string  `json:"deleteCategory"`

	RetakeYearSemester *string `json:"retakeYearSemester,omitempty"`
	RetakeSubjectCode  *string `json:"retakeSubjectCode,omitempty"`
	InstitutionName    *string `json:"institutionName,omitempty"`
	GraduateCategory   *string `json:"graduateCategory,omitempty"`
}

// =============================================================================
// RECONCILED RECORD TYPES
// =============================================================================

// Status classifies the outcome of matching one identity across the roster
// and the transcript archive.
type Status string

const (
	// StatusNormal: roster entry and transcript both present, transcript parsed.
	StatusNormal Status = "normal"

	// StatusMissingGrades: roster entry without a transcript in the archive.
	StatusMissingGrades Status = "missing_grades"

	// StatusMissingInfo: transcript without a roster entry.
	StatusMissingInfo Status = "missing_info"

	// StatusParsingError: transcript unreadable or its file name malformed.
	StatusParsingError Status = "parsing_error"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNormal, StatusMissingGrades, StatusMissingInfo, StatusParsingError}

// Label returns the Korean display label used in reports.
func (s Status) Label() string {
	switch s {
	case StatusNormal:
		return "매칭 완료"
	case StatusMissingGrades:
		return "성적 누락"
	case StatusMissingInfo:
		return "정보 누락"
	case StatusParsingError:
		return "분석 오류"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusMissingGrades, StatusMissingInfo, StatusParsingError:
		return true
	}
	return false
}

// StudentRecord is one reconciled identity. The Status decides which fields
// carry data:
//   - missing_grades: Grades empty, TotalCredits 0
//   - missing_info, parsing_error: roster-derived fields hold UnknownLabel / 0
type StudentRecord struct {
	EncryptedID   string     `json:"encryptedId"`
	StudentID     string     `json:"studentId"`
	Name          string     `json:"name"`
	AdmissionYear int        `json:"admissionYear"`
	StudentType   string     `json:"studentType"`
	Major         string     `json:"major"`
	DoubleMajors  []string   `json:"doubleMajors"`
	Grades        []GradeRow `json:"grades"`
	TotalCredits  float64    `json:"totalCredits"`
	Errors        []string   `json:"errors"`
	Status        Status     `json:"status"`

	// SourceFile is the archive entry path the record came from. It is empty
	// for roster-only records.
	SourceFile string `json:"sourceFile,omitempty"`
}

// =============================================================================
// DERIVED TYPES
// =============================================================================

// CreditSummary aggregates a grade sequence. It is recomputed on every call
// and never stored on a record.
type CreditSummary struct {
	Total           float64 `json:"total"`
	MajorRequired   float64 `json:"majorReq"`
	MajorElective   float64 `json:"majorElec"`
	GeneralRequired float64 `json:"cultureReq"`
	GeneralElective float64 `json:"cultureElec"`
	FreeElective    float64 `json:"freeElec"`
	Math            float64 `json:"mscMath"`
	Science         float64 `json:"mscScience"`
	Computing       float64 `json:"mscComputer"`
	EnglishCourses  int     `json:"englishCourses"`
	MajorEnglish    int     `json:"majorEnglish"`
	GPA             float64 `json:"gpa"`
}
