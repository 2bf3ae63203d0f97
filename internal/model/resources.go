package model

import "time"

// Project groups campaigns under a release. The release manager
// screens operate on this resource.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Campaign is a test campaign imported from a referentiel file and
// assigned to testers.
type Campaign struct {
	ID               int64     `json:"id"`
	Project          int64     `json:"project"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartDate        string    `json:"start_date"`
	EstimatedEndDate string    `json:"estimated_end_date"`
	NbTestCases      int       `json:"nb_test_cases"`
	IsProcessed      bool      `json:"is_processed"`
	AssignedTesters  []int64   `json:"assigned_testers"`
	CreatedAt        time.Time `json:"created_at"`
}

// Execution statuses as stored by the backend.
const (
	ExecutionPending = "PENDING"
	ExecutionPassed  = "PASSED"
	ExecutionFailed  = "FAILED"
)

// Execution is a single test-case execution row (the backend calls the
// resource "testcases").
type Execution struct {
	ID            int64      `json:"id"`
	Campaign      int64      `json:"campaign"`
	TestCaseRef   string     `json:"test_case_ref"`
	Status        string     `json:"status"`
	Tester        int64      `json:"tester"`
	ExecutionDate *time.Time `json:"execution_date"`
	ProofFile     string     `json:"proof_file"`
}

// Anomaly criticality levels.
const (
	CriticalityLow      = "FAIBLE"
	CriticalityMedium   = "MOYENNE"
	CriticalityCritical = "CRITIQUE"
)

// Anomaly is a defect filed against an execution.
type Anomaly struct {
	ID          int64     `json:"id"`
	TestCase    int64     `json:"test_case"`
	Title       string    `json:"titre"`
	Description string    `json:"description"`
	Criticality string    `json:"criticite"`
	ProofImage  string    `json:"preuve_image"`
	CreatedBy   int64     `json:"cree_par"`
	CreatedAt   time.Time `json:"cree_le"`
}

// Comment is a discussion entry attached to an execution. AuthorName
// is denormalized by the backend serializer for display.
type Comment struct {
	ID         int64     `json:"id"`
	TestCase   int64     `json:"test_case"`
	Author     int64     `json:"author"`
	AuthorName string    `json:"author_name"`
	Message    string    `json:"message"`
	Attachment string    `json:"attachment"`
	CreatedAt  time.Time `json:"created_at"`
}

// Email is an internal message sent between users through the backend.
type Email struct {
	ID         int64     `json:"id"`
	Sender     int64     `json:"sender"`
	Recipient  int64     `json:"recipient"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
