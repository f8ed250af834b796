package gplatform

// Disk is one entry of the provider's volume inventory.
type Disk struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// OwnerName is the display name of the server the disk is attached to.
	// Disk names are only unique per owning server, so the owner is needed
	// to disambiguate duplicates. "--" marks an unattached disk.
	OwnerName string `json:"vmdisplayname"`
}

// Snapshot is one entry of the provider's snapshot inventory. The date the
// snapshot was created with is embedded in its name; the provider's own
// creation timestamp is not used for retention decisions.
type Snapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JobStatus is the provider's asynchronous job state code.
type JobStatus int

const (
	JobPending   JobStatus = 0
	JobSucceeded JobStatus = 1
	JobFailed    JobStatus = 2
)

// JobOutcome is the point-in-time result of polling one asynchronous job.
// Pending is a valid outcome, not an error. ErrorText and Command are only
// populated for failed jobs.
type JobOutcome struct {
	Status    JobStatus
	ErrorText string
	Command   string
}
