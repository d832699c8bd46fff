package handler

import (
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// Wire DTOs. Dates that are calendar days (leave intervals) render as
// "2006-01-02"; instants render as RFC 3339.

type taskDTO struct {
	ID          string             `json:"id"`
	Requirement string             `json:"requirement"`
	ContactID   string             `json:"contactId"`
	StaffID     string             `json:"staffId"`
	Stage       int                `json:"stage"`
	Priority    string             `json:"priority"`
	FinishBy    *time.Time         `json:"finishBy,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Description string             `json:"description,omitempty"`
	TeamWork    []teamWorkEntryDTO `json:"teamWork"`
	Rework      bool               `json:"rework"`
	Reject      bool               `json:"reject"`
	NewUpdate   bool               `json:"newUpdate"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Etag        string             `json:"etag"`
}

type teamWorkEntryDTO struct {
	Date      time.Time `json:"date"`
	StaffID   string    `json:"staffId"`
	StaffName string    `json:"staffName"`
	Stage     int       `json:"stage"`
	Notes     string    `json:"notes"`
}

func mapTaskToDTO(t *domain.Task) taskDTO {
	teamWork := make([]teamWorkEntryDTO, len(t.TeamWork))
	for i, e := range t.TeamWork {
		teamWork[i] = teamWorkEntryDTO{
			Date:      e.Date,
			StaffID:   e.StaffID,
			StaffName: e.StaffName,
			Stage:     int(e.Stage),
			Notes:     e.Notes,
		}
	}
	return taskDTO{
		ID:          t.ID,
		Requirement: t.Requirement,
		ContactID:   t.ContactID,
		StaffID:     t.StaffID,
		Stage:       int(t.Stage),
		Priority:    string(t.Priority),
		FinishBy:    t.FinishBy,
		Notes:       t.Notes,
		Description: t.Description,
		TeamWork:    teamWork,
		Rework:      t.Rework,
		Reject:      t.Reject,
		NewUpdate:   t.NewUpdate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Etag:        t.Etag(),
	}
}

type personDTO struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func mapLeadToDTO(l *domain.Lead) personDTO {
	return personDTO{
		ID:        l.ID,
		StaffID:   l.StaffID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Source:    l.Source,
		CreatedAt: l.CreatedAt,
	}
}

func mapContactToDTO(c *domain.Contact) personDTO {
	return personDTO{
		ID:        c.ID,
		StaffID:   c.StaffID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Source:    c.Source,
		CreatedAt: c.CreatedAt,
	}
}

type meetingDTO struct {
	ID          string    `json:"id"`
	ContactID   string    `json:"contactId"`
	StaffID     string    `json:"staffId"`
	Subject     string    `json:"subject"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func mapMeetingToDTO(m *domain.Meeting) meetingDTO {
	return meetingDTO{
		ID:          m.ID,
		ContactID:   m.ContactID,
		StaffID:     m.StaffID,
		Subject:     m.Subject,
		ScheduledAt: m.ScheduledAt,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}

type callDTO struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contactId"`
	StaffID    string    `json:"staffId"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func mapCallToDTO(c *domain.Call) callDTO {
	return callDTO{
		ID:         c.ID,
		ContactID:  c.ContactID,
		StaffID:    c.StaffID,
		Subject:    c.Subject,
		OccurredAt: c.OccurredAt,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
	}
}

type leaveDTO struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	HalfTime  string    `json:"halfTime,omitempty"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Etag      string    `json:"etag"`
}

func mapLeaveToDTO(l *domain.Leave) leaveDTO {
	return leaveDTO{
		ID:        l.ID,
		StaffID:   l.StaffID,
		Type:      string(l.Type),
		Category:  string(l.Category),
		HalfTime:  string(l.HalfTime),
		StartDate: l.StartDate.Format(time.DateOnly),
		EndDate:   l.EndDate.Format(time.DateOnly),
		Status:    string(l.Status),
		Reason:    l.Reason,
		CreatedAt: l.CreatedAt,
		Etag:      l.Etag(),
	}
}

type punchDTO struct {
	ID      string    `json:"id"`
	StaffID string    `json:"staffId"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
}

func mapPunchToDTO(p *domain.AttendancePunch) punchDTO {
	return punchDTO{
		ID:      p.ID,
		StaffID: p.StaffID,
		Kind:    string(p.Kind),
		At:      p.At,
	}
}

type trashEntryDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	EntityID  string    `json:"entityId"`
	ActorID   string    `json:"actorId"`
	DeletedAt time.Time `json:"deletedAt"`
	Payload   any       `json:"payload,omitempty"`
}

func mapTrashEntryToDTO(e domain.TrashEntry, payload any) trashEntryDTO {
	return trashEntryDTO{
		ID:        e.ID,
		Kind:      string(e.Kind),
		EntityID:  e.EntityID,
		ActorID:   e.ActorID,
		DeletedAt: e.DeletedAt,
		Payload:   payload,
	}
}
