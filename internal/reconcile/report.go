package reconcile

import (
	"fmt"
	"time"
)

// Classification is the outcome of comparing one file, or one leftover
// catalog entry, against the catalog.
type Classification string

// Classifications. The string values double as metric labels.
const (
	Unchanged       Classification = "unchanged"
	Modified        Classification = "modified"
	New             Classification = "new"
	Duplicate       Classification = "duplicate"
	Renamed         Classification = "renamed"
	RenamedModified Classification = "renamed_modified"
	Orphaned        Classification = "orphaned"
)

// Report summarizes one pass.
type Report struct {
	PassID   string        `json:"passId"`
	Root     string        `json:"root"`
	DryRun   bool          `json:"dryRun"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`

	Scanned         int `json:"scanned"`
	Unchanged       int `json:"unchanged"`
	Modified        int `json:"modified"`
	New             int `json:"new"`
	Duplicates      int `json:"duplicates"`
	Renamed         int `json:"renamed"`
	RenamedModified int `json:"renamedModified"`
	Orphaned        int `json:"orphaned"`
	OrphanFailures  int `json:"orphanFailures"`

	ThumbnailsGenerated int `json:"thumbnailsGenerated"`
}

// Count returns the number of items given classification c.
func (r Report) Count(c Classification) int {
	switch c {
	case Unchanged:
		return r.Unchanged
	case Modified:
		return r.Modified
	case New:
		return r.New
	case Duplicate:
		return r.Duplicates
	case Renamed:
		return r.Renamed
	case RenamedModified:
		return r.RenamedModified
	case Orphaned:
		return r.Orphaned
	}
	return 0
}

// Changes is the number of catalog mutations the pass made, or would have
// made in a dry run. A renamed and modified file counts once.
func (r Report) Changes() int {
	return r.Modified + r.New + r.Duplicates + r.Renamed + r.RenamedModified + r.Orphaned
}

func (r *Report) add(c Classification) {
	switch c {
	case Unchanged:
		r.Unchanged++
	case Modified:
		r.Modified++
	case New:
		r.New++
	case Duplicate:
		r.Duplicates++
	case Renamed:
		r.Renamed++
	case RenamedModified:
		r.RenamedModified++
	case Orphaned:
		r.Orphaned++
	}
}

func (r Report) String() string {
	return fmt.Sprintf("scanned=%d unchanged=%d modified=%d new=%d duplicates=%d renamed=%d renamed+modified=%d orphaned=%d (failed %d) thumbnails=%d in %v",
		r.Scanned, r.Unchanged, r.Modified, r.New, r.Duplicates, r.Renamed, r.RenamedModified,
		r.Orphaned, r.OrphanFailures, r.ThumbnailsGenerated, r.Duration.Round(time.Millisecond))
}
