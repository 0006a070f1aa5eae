package roster

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
)

// 取り込み側のヘッダ照合はこの断片への部分一致（大文字小文字無視）。
// 列の並び順は問わず、見つからない列は空文字で埋める。
const (
	fragRegistration = "registration"
	fragFullName     = "full name"
	fragEmail        = "email"
	fragGuest        = "guest"
	fragStatus       = "status"
	fragManager      = "manager"
)

// ParseRoster: CSVロスターを参加者シードに変換する。
// 1行目をヘッダとして扱い、登録ID列が空の行は不備行として読み飛ばす。
// 表データとして読めない入力のみ PARSE_ERROR になる。
func ParseRoster(r io.Reader) ([]checkin.ParticipantSeed, error) {
	// Excel出力のBOM付きUTF-8をそのまま受けられるようにする
	raw, err := io.ReadAll(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	if err != nil {
		return nil, checkin.ErrParse("unable to read uploaded file")
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, checkin.ErrParse("file is not valid tabular data")
	}
	if len(records) == 0 {
		return nil, checkin.ErrParse("file has no header row")
	}

	headers := records[0]
	idIdx := findColumn(headers, fragRegistration)
	nameIdx := findColumn(headers, fragFullName)
	emailIdx := findColumn(headers, fragEmail)
	guestIdx := findColumn(headers, fragGuest)
	statusIdx := findColumn(headers, fragStatus)
	managerIdx := findColumn(headers, fragManager)

	seeds := make([]checkin.ParticipantSeed, 0, len(records)-1)
	for _, row := range records[1:] {
		id := cell(row, idIdx)
		if id == "" {
			continue
		}
		seeds = append(seeds, checkin.ParticipantSeed{
			ID:           id,
			Name:         cell(row, nameIdx),
			Email:        cell(row, emailIdx),
			Guest:        cell(row, guestIdx),
			StatusReason: cell(row, statusIdx),
			Manager:      cell(row, managerIdx),
		})
	}
	return seeds, nil
}

// ===== helpers =====

// sniffDelimiter: フランス語圏のExcelはセミコロン区切りでCSVを吐くため、
// ヘッダ行を見て区切り文字を推定する。
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func findColumn(headers []string, fragment string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), fragment) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
