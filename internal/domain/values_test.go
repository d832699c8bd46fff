package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStage(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		want    Stage
		wantErr bool
	}{
		{name: "not started", input: 1, want: StageNotStarted},
		{name: "in progress", input: 2, want: StageInProgress},
		{name: "review", input: 3, want: StageReview},
		{name: "completed", input: 4, want: StageCompleted},
		{name: "zero", input: 0, wantErr: true},
		{name: "out of range", input: 5, wantErr: true},
		{name: "negative", input: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPriority(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Priority
		wantErr bool
	}{
		{name: "high", input: "high", want: PriorityHigh},
		{name: "uppercase", input: "LOW", want: PriorityLow},
		{name: "empty defaults to normal", input: "", want: PriorityNormal},
		{name: "unknown", input: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPriority(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRole(t *testing.T) {
	got, err := NewRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got)

	_, err = NewRole("manager")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestNewEntityKind(t *testing.T) {
	for _, valid := range []string{"task", "contact", "lead", "team", "meeting", "call", "leave"} {
		_, err := NewEntityKind(valid)
		require.NoError(t, err, "kind %s should be valid", valid)
	}

	_, err := NewEntityKind("invoice")
	assert.ErrorIs(t, err, ErrInvalidEntityKind)
}

func TestLeaveTypeIsHalfDay(t *testing.T) {
	assert.True(t, LeaveMorning.IsHalfDay())
	assert.True(t, LeaveAfternoon.IsHalfDay())
	assert.False(t, LeaveFullDay.IsHalfDay())
}

func TestLeaveStatusDecided(t *testing.T) {
	assert.False(t, LeavePending.Decided())
	assert.True(t, LeaveApproved.Decided())
	assert.True(t, LeaveRejected.Decided())
}

func TestLeaveOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
	}
	leave := &Leave{StartDate: day(10), EndDate: day(12)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{name: "identical", start: day(10), end: day(12), want: true},
		{name: "starts inside", start: day(11), end: day(20), want: true},
		{name: "ends inside", start: day(1), end: day(10), want: true},
		{name: "spans", start: day(1), end: day(20), want: true},
		{name: "single day inside", start: day(11), end: day(11), want: true},
		{name: "adjacent before", start: day(1), end: day(9), want: false},
		{name: "adjacent after", start: day(13), end: day(20), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.Overlaps(tt.start, tt.end))
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, 3, 15, 2, 30, 0, 0, loc) // 2025-03-14 21:30 UTC
	got := DateOnly(in)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), got)
}
