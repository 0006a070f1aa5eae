package checkin

import "time"

// ===== Requests =====

// POST /events
type CreateEventRequest struct {
	Name         string            `json:"name" binding:"required"`
	Date         string            `json:"date" binding:"required"` // YYYY-MM-DD
	Participants []ParticipantSeed `json:"participants,omitempty"`
}

// インポート済みロスターの1行分。present/checked_in_at は常に初期値で作られる。
type ParticipantSeed struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Guest        string `json:"guest"`
	StatusReason string `json:"status_reason"`
	Manager      string `json:"manager"`
}

// POST /events/:event_id/checkins
type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

// POST /events/:event_id/participants
type AddParticipantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ===== Responses =====

type ParticipantResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Guest        string     `json:"guest"`
	StatusReason string     `json:"status_reason"`
	Manager      string     `json:"manager"`
	Present      bool       `json:"present"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
}

type EventSummaryResponse struct {
	EventID           string    `json:"event_id"`
	Name              string    `json:"name"`
	Date              string    `json:"date"`
	CreatedAt         time.Time `json:"created_at"`
	PresentCount      int       `json:"present_count"`
	TotalCount        int       `json:"total_count"`
	PresentPercentage int       `json:"present_percentage"`
}

type EventDetailResponse struct {
	EventSummaryResponse
	Participants []ParticipantResponse `json:"participants"`
}

// スキャン1回分の結果。unrecognized / already_present はエラーではなく通常の結果。
type CheckInResult string

const (
	ResultSuccess        CheckInResult = "success"
	ResultAlreadyPresent CheckInResult = "already_present"
	ResultUnrecognized   CheckInResult = "unrecognized"
)

type CheckInResponse struct {
	Result      CheckInResult        `json:"result"`
	Participant *ParticipantResponse `json:"participant,omitempty"`
}

type MetricsResponse struct {
	PresentCount      int `json:"present_count"`
	TotalCount        int `json:"total_count"`
	PresentPercentage int `json:"present_percentage"`
}
