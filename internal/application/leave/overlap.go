package leave

import (
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// hasOverlap is the pure overlap predicate over a staff member's existing
// leaves. Three interval relationships each independently trigger overlap:
//
//  1. an existing leave's start falls within [start, end];
//  2. an existing leave's end falls within [start, end];
//  3. an existing leave fully spans [start, end].
//
// Rejected leaves never block: a rejected range is effectively free again.
// excludeLeaveID lets an in-place edit re-validate against all other
// leaves without colliding with itself.
func hasOverlap(existing []domain.Leave, start, end time.Time, excludeLeaveID string) bool {
	for _, l := range existing {
		if l.ID == excludeLeaveID || l.Status == domain.LeaveRejected || l.SoftDeleted {
			continue
		}

		startsWithin := !l.StartDate.Before(start) && !l.StartDate.After(end)
		endsWithin := !l.EndDate.Before(start) && !l.EndDate.After(end)
		spans := !l.StartDate.After(start) && !l.EndDate.Before(end)

		if startsWithin || endsWithin || spans {
			return true
		}
	}
	return false
}
