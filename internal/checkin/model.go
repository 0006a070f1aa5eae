package checkin

import "time"

const (
	DateLayout = "2006-01-02"

	// 手動追加参加者のID接頭辞。インポート元の登録ID空間と衝突しない名前空間。
	ManualIDPrefix = "MANUAL_"

	// 手動追加時の既定値
	DefaultManualEmail  = "Not provided"
	DefaultManualGuest  = "No"
	DefaultManualStatus = "Added manually"
	DefaultManualMgr    = "N/A"
)

// 参加者1名分。ID はインポート元の登録IDで、スキャンされたトークンと照合される。
// 不変条件: Present == true のとき、かつそのときに限り CheckedInAt != nil。
type Participant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Guest        string     `json:"guest"`
	StatusReason string     `json:"status_reason"`
	Manager      string     `json:"manager"`
	Present      bool       `json:"present"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
}

// イベント1件分。Participants はインポート順（手動追加は末尾）。
// この構造体がそのままスナップショットのJSON形になる。
type Event struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Date         string        `json:"date"` // YYYY-MM-DD
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (p Participant) toDTO() ParticipantResponse {
	return ParticipantResponse{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Guest:        p.Guest,
		StatusReason: p.StatusReason,
		Manager:      p.Manager,
		Present:      p.Present,
		CheckedInAt:  p.CheckedInAt,
	}
}

func (e Event) toSummary() EventSummaryResponse {
	m := computeMetrics(e.Participants)
	return EventSummaryResponse{
		EventID:           e.ID,
		Name:              e.Name,
		Date:              e.Date,
		CreatedAt:         e.CreatedAt,
		PresentCount:      m.PresentCount,
		TotalCount:        m.TotalCount,
		PresentPercentage: m.PresentPercentage,
	}
}
