package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic testing
var (
	TestSubjectID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestSubjectID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestTenantID   = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestRecordID   = uuid.MustParse("00000000-0000-0000-0000-000000000020")
)

// TestEvaluationTime is a fixed instant for evaluation fixtures.
var TestEvaluationTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
