package purge

import "github.com/synoprune/synoprune/internal/synology"

// LocalDeletion is the outcome of one filesystem removal (or, in a dry
// run, one planned removal).
type LocalDeletion struct {
	TaskID string `json:"task_id"`
	Path   string `json:"path"`
	Err    error  `json:"-"`
}

// Result is the aggregate report of one purge run. It lists every
// selected task, not only the successfully purged ones, and is built
// fresh per call.
type Result struct {
	RunID        string                  `json:"run_id"`
	Message      string                  `json:"message"`
	Tasks        []synology.Task         `json:"tasks"`
	TotalSize    int64                   `json:"total_size"`
	DryRun       bool                    `json:"dry_run"`
	Deletions    []synology.DeleteResult `json:"deletions,omitempty"`
	Local        []LocalDeletion         `json:"local,omitempty"`
	SuccessCount int                     `json:"successful_count"`
	FailedCount  int                     `json:"failed_count"`
}
