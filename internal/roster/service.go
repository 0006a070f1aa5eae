package roster

import (
	"context"
	"io"
	"strings"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
)

// Service: ロスターの取り込み・書き出しを台帳操作に橋渡しする薄い層。
// 出欠状態そのものには一切触らない。
type Service struct {
	ledger *checkin.Service
}

func NewService(ledger *checkin.Service) *Service { return &Service{ledger: ledger} }

// Import: CSVを解析して新規イベントとして台帳に登録する。
// イベント名・開催日はファイルを読む前に検証する（旧アプリと同じ順序）。
func (s *Service) Import(ctx context.Context, file io.Reader, eventName, eventDate string) (checkin.EventDetailResponse, error) {
	if strings.TrimSpace(eventName) == "" || strings.TrimSpace(eventDate) == "" {
		return checkin.EventDetailResponse{}, checkin.ErrInvalid("name and date are required")
	}

	seeds, err := ParseRoster(file)
	if err != nil {
		return checkin.EventDetailResponse{}, err
	}

	return s.ledger.CreateEvent(ctx, checkin.CreateEventRequest{
		Name:         eventName,
		Date:         eventDate,
		Participants: seeds,
	})
}

// Export: 台帳の現在状態をCSVとファイル名にして返す。
func (s *Service) Export(ctx context.Context, eventID string) (string, []byte, error) {
	e, err := s.ledger.EventSnapshot(ctx, eventID)
	if err != nil {
		return "", nil, err
	}
	data, err := WriteRoster(e)
	if err != nil {
		return "", nil, checkin.ErrInternal(err.Error())
	}
	return ExportFilename(e), data, nil
}
