package storage

import "github.com/cuemby/tally/pkg/types"

// Seed returns the first-run dataset used when nothing has been persisted
func Seed() Snapshot {
	return Snapshot{
		Subjects: []types.Subject{
			{ID: "1", Name: "Mathematics", ClassDays: []int{1, 3, 5}},
			{ID: "2", Name: "Physics", ClassDays: []int{2, 4}},
			{ID: "3", Name: "Chemistry", ClassDays: []int{1, 4}},
			{ID: "4", Name: "Computer Science", ClassDays: []int{2, 5}},
		},
		Entries: []types.Entry{
			{ID: "rec1", SubjectID: "1", Date: "2025-11-01", Status: types.StatusPresent},
			{ID: "rec2", SubjectID: "1", Date: "2025-11-02", Status: types.StatusAbsent},
			{ID: "rec3", SubjectID: "2", Date: "2025-11-01", Status: types.StatusPresent},
			{ID: "rec4", SubjectID: "3", Date: "2025-11-01", Status: types.StatusPresent},
			{ID: "rec5", SubjectID: "4", Date: "2025-11-01", Status: types.StatusAbsent},
		},
		Limits: types.DefaultLimits(),
	}
}
