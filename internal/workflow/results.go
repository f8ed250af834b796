package workflow

// ItemStatus classifies the outcome of one per-item attempt inside a cycle.
type ItemStatus string

const (
	// ItemIssued means the provider accepted the call and returned a job id.
	ItemIssued ItemStatus = "issued"
	// ItemSkipped means the item never reached the provider (unknown disk,
	// ambiguous owner).
	ItemSkipped ItemStatus = "skipped"
	// ItemFailed means the provider call was made and failed.
	ItemFailed ItemStatus = "failed"
)

// ItemResult records what happened to a single target within a cycle. Failures
// are values here, not control flow: a cycle always runs every item to an
// explicit result.
type ItemResult struct {
	// Subject is the disk name (create) or snapshot name (delete).
	Subject string
	// SnapshotName is the name issued to the provider (create only).
	SnapshotName string
	// JobID is set when Status is ItemIssued.
	JobID  string
	Status ItemStatus
	Err    error
}

// CycleSummary is the terminal state of one create or delete cycle. Partial
// completion is a normal terminal state, not an error.
type CycleSummary struct {
	// Date is the date token the cycle operated on: today for create, the
	// retention cutoff for delete.
	Date    string
	Results []ItemResult
}

// Count returns how many items ended in the given status.
func (s CycleSummary) Count(status ItemStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
