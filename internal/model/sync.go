package model

// SyncRequest is one client batch: the owner, its current path snapshot and
// the queued changes in enqueue order.
type SyncRequest struct {
	Name    string  `json:"name"`
	Path    *Path   `json:"path,omitempty"`
	Changes Changes `json:"changes"`
}

// Validate checks the batch at the boundary before any merge happens.
func (r SyncRequest) Validate() error {
	if r.Name == "" {
		return NewValidationError("name", "missing name")
	}
	if r.Path != nil {
		if err := r.Path.Validate(); err != nil {
			return err
		}
	}
	return r.Changes.Validate()
}

// SyncResponse acknowledges a merged batch.
type SyncResponse struct {
	User User `json:"user"`
}

// ProgressUpdate is the realtime form of a progress report.
type ProgressUpdate struct {
	Name         string   `json:"name"`
	Path         *Path    `json:"path,omitempty"`
	ModuleID     string   `json:"moduleId,omitempty"`
	PointsDelta  int      `json:"pointsDelta,omitempty"`
	PathProgress *float64 `json:"pathProgress,omitempty"`
}

// MergeResult describes the effect of one merge on the authoritative user.
type MergeResult struct {
	User User
	// Applied counts changes that had an effect on the record.
	Applied int
	// Ignored counts changes accepted as no-ops: unknown kinds and kinds
	// the server does not merge.
	Ignored int
	// Awarded is the number of points added by this merge.
	Awarded int
	// Badges lists labels newly granted by this merge, in batch order.
	Badges []string
	// ModuleID is the last module completed in the batch, if any.
	ModuleID string
}

// LastBadge returns the most recently granted badge or an empty string.
func (r MergeResult) LastBadge() string {
	if len(r.Badges) == 0 {
		return ""
	}
	return r.Badges[len(r.Badges)-1]
}
