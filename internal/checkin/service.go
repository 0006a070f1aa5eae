package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model (LIMS系と同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeParseError      Code = "PARSE_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrParse(msg string) *APIError    { return &APIError{Code: CodeParseError, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeParseError:
			return 422
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

// スナップショットの読み書き境界。読み込みは失敗しても空コレクションに縮退する。
type Snapshotter interface {
	Load(ctx context.Context) ([]Event, error)
	Save(ctx context.Context, events []Event) error
}

// Service は全イベントと参加者の台帳を単独で所有する。
// 変更操作は mu で直列化され、1操作ごとにスナップショット全体を保存する。
// シングルユーザ運用の端末向けなので台帳全体のロック1本で足りる。
type Service struct {
	mu      sync.Mutex
	snap    Snapshotter
	events  []Event
	mutated bool // 読み込み後に1度でも変更があったか

	now   func() time.Time
	newID func() string
}

func NewService(snap Snapshotter) *Service {
	return &Service{
		snap:  snap,
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}
}

// Load: 起動時にスナップショットから台帳を復元する。失敗しても空で開始する。
func (s *Service) Load(ctx context.Context) {
	events, err := s.snap.Load(ctx)
	if err != nil {
		log.Printf("[WARN] snapshot load failed, starting empty: %v", err)
		events = nil
	}
	s.mu.Lock()
	s.events = events
	s.mutated = false
	s.mu.Unlock()
	log.Printf("[INFO] loaded %d event(s) from snapshot", len(events))
}

// persist: mu を保持したまま呼ぶこと。
// 起動直後の手つかずの空コレクションは保存しない（未読込の既存スナップショットを
// 空で上書きしないためのガード）。一度でも変更が入れば空でも保存する。
func (s *Service) persist(ctx context.Context) {
	if len(s.events) == 0 && !s.mutated {
		return
	}
	if err := s.snap.Save(ctx, s.events); err != nil {
		// メモリ上の台帳が正であり、次の変更時に全量スナップショットで追いつく
		log.Printf("[ERROR] snapshot save failed: %v", err)
	}
}

// Flush: 現在の台帳を明示的に書き出す（終了処理用）。
func (s *Service) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist(ctx)
}

// GET /events
func (s *Service) ListEvents(ctx context.Context) []EventSummaryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EventSummaryResponse, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.toSummary())
	}
	return out
}

// GET /events/:event_id
func (s *Service) GetEvent(ctx context.Context, eventID string, f Filter) (EventDetailResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return EventDetailResponse{}, ErrNotFound("event not found")
	}

	filtered := FilterParticipants(e.Participants, f)
	out := EventDetailResponse{
		EventSummaryResponse: e.toSummary(), // 指標はフィルタ前の全参加者に対して算出
		Participants:         make([]ParticipantResponse, 0, len(filtered)),
	}
	for _, p := range filtered {
		out.Participants = append(out.Participants, p.toDTO())
	}
	return out, nil
}

// POST /events
func (s *Service) CreateEvent(ctx context.Context, in CreateEventRequest) (EventDetailResponse, error) {
	name := strings.TrimSpace(in.Name)
	date := strings.TrimSpace(in.Date)
	if name == "" || date == "" {
		return EventDetailResponse{}, ErrInvalid("name and date are required")
	}
	if _, err := time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		return EventDetailResponse{}, ErrInvalid("date must be YYYY-MM-DD")
	}

	participants := seedParticipants(in.Participants)

	s.mu.Lock()
	defer s.mu.Unlock()

	e := Event{
		ID:           s.newID(),
		Name:         name,
		Date:         date,
		Participants: participants,
		CreatedAt:    s.now().UTC(),
	}
	s.events = append(s.events, e)
	s.mutated = true
	s.persist(ctx)

	out := EventDetailResponse{
		EventSummaryResponse: e.toSummary(),
		Participants:         make([]ParticipantResponse, 0, len(e.Participants)),
	}
	for _, p := range e.Participants {
		out.Participants = append(out.Participants, p.toDTO())
	}
	return out, nil
}

// DELETE /events/:event_id
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.events {
		if e.ID == eventID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.mutated = true
			s.persist(ctx)
			return nil
		}
	}
	return ErrNotFound("event not found")
}

// POST /events/:event_id/checkins
// スキャン1検知＝トークン1つ。同じトークンの再送は2回目以降 already_present を
// 返すだけで状態は変えない（重複スキャン抑止）。
func (s *Service) CheckIn(ctx context.Context, eventID, token string) (CheckInResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return CheckInResponse{}, ErrNotFound("event not found")
	}

	for i := range e.Participants {
		p := &e.Participants[i]
		if p.ID != token {
			continue
		}
		if p.Present {
			dto := p.toDTO()
			return CheckInResponse{Result: ResultAlreadyPresent, Participant: &dto}, nil
		}
		t := s.now().UTC()
		p.Present = true
		p.CheckedInAt = &t
		s.mutated = true
		s.persist(ctx)

		dto := p.toDTO()
		return CheckInResponse{Result: ResultSuccess, Participant: &dto}, nil
	}

	// 不明トークンは何も変更しない。エラーではなく通常の結果。
	return CheckInResponse{Result: ResultUnrecognized}, nil
}

// PUT /events/:event_id/participants/:participant_id/presence
// スキャンと違い無条件のトグル。手動訂正用。
func (s *Service) TogglePresence(ctx context.Context, eventID, participantID string) (ParticipantResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return ParticipantResponse{}, ErrNotFound("event not found")
	}

	for i := range e.Participants {
		p := &e.Participants[i]
		if p.ID != participantID {
			continue
		}
		if p.Present {
			p.Present = false
			p.CheckedInAt = nil
		} else {
			t := s.now().UTC()
			p.Present = true
			p.CheckedInAt = &t
		}
		s.mutated = true
		s.persist(ctx)
		return p.toDTO(), nil
	}
	return ParticipantResponse{}, ErrNotFound("participant not found")
}

// POST /events/:event_id/participants
// 手動追加は「受付で本人が目の前にいる」操作なので、その場で出席扱いにする。
func (s *Service) AddManualParticipant(ctx context.Context, eventID string, in AddParticipantRequest) (ParticipantResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ParticipantResponse{}, ErrInvalid("name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = DefaultManualEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return ParticipantResponse{}, ErrNotFound("event not found")
	}

	t := s.now().UTC()
	p := Participant{
		ID:           ManualIDPrefix + s.newID(),
		Name:         name,
		Email:        email,
		Guest:        DefaultManualGuest,
		StatusReason: DefaultManualStatus,
		Manager:      DefaultManualMgr,
		Present:      true,
		CheckedInAt:  &t,
	}
	e.Participants = append(e.Participants, p)
	s.mutated = true
	s.persist(ctx)

	return p.toDTO(), nil
}

// GET /events/:event_id/metrics
func (s *Service) Metrics(ctx context.Context, eventID string) (MetricsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return MetricsResponse{}, ErrNotFound("event not found")
	}
	return computeMetrics(e.Participants), nil
}

// EventSnapshot: ロスター出力用に1イベント分のコピーを返す。
// 呼び出し側が台帳の実体を触らないよう、参加者リストは複製する。
func (s *Service) EventSnapshot(ctx context.Context, eventID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return Event{}, ErrNotFound("event not found")
	}
	out := *e
	out.Participants = append([]Participant(nil), e.Participants...)
	return out, nil
}

// ===== helpers =====

// findEvent: mu を保持したまま呼ぶこと。返値は events 内の実体を指す。
func (s *Service) findEvent(eventID string) *Event {
	for i := range s.events {
		if s.events[i].ID == eventID {
			return &s.events[i]
		}
	}
	return nil
}

// seedParticipants: 取り込み行を正規化する。登録IDが空の行と、既出IDの重複行は
// 読み飛ばす（行単位の不備はエラーにしない方針）。
func seedParticipants(seeds []ParticipantSeed) []Participant {
	out := make([]Participant, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))
	for _, row := range seeds {
		id := strings.TrimSpace(row.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			log.Printf("[WARN] duplicate registration id %q skipped", id)
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Participant{
			ID:           id,
			Name:         strings.TrimSpace(row.Name),
			Email:        strings.TrimSpace(row.Email),
			Guest:        strings.TrimSpace(row.Guest),
			StatusReason: strings.TrimSpace(row.StatusReason),
			Manager:      strings.TrimSpace(row.Manager),
		})
	}
	return out
}

func computeMetrics(list []Participant) MetricsResponse {
	present := 0
	for _, p := range list {
		if p.Present {
			present++
		}
	}
	m := MetricsResponse{PresentCount: present, TotalCount: len(list)}
	if m.TotalCount > 0 {
		m.PresentPercentage = int(math.Round(float64(present) / float64(m.TotalCount) * 100))
	}
	return m
}
