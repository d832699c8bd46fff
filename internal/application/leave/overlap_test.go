package leave

import (
	"testing"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHasOverlapPredicate(t *testing.T) {
	existing := []domain.Leave{
		{ID: "l1", StartDate: day(10), EndDate: day(12), Status: domain.LeavePending},
		{ID: "l2", StartDate: day(20), EndDate: day(22), Status: domain.LeaveRejected},
		{ID: "l3", StartDate: day(25), EndDate: day(27), Status: domain.LeaveApproved, SoftDeleted: true},
	}

	tests := []struct {
		name       string
		start, end time.Time
		exclude    string
		want       bool
	}{
		{name: "touching start boundary", start: day(12), end: day(14), want: true},
		{name: "touching end boundary", start: day(8), end: day(10), want: true},
		{name: "strictly inside", start: day(11), end: day(11), want: true},
		{name: "strictly outside", start: day(13), end: day(19), want: false},
		{name: "rejected range is free", start: day(20), end: day(22), want: false},
		{name: "soft-deleted range is free", start: day(25), end: day(27), want: false},
		{name: "excluded record ignored", start: day(10), end: day(12), exclude: "l1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasOverlap(existing, tt.start, tt.end, tt.exclude))
		})
	}
}
