package roster

import (
	"bytes"
	"encoding/csv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
)

// 出力列は固定順・固定見出し。取り込み側とヘッダ表記は違うが、
// 参加者データとしては意味的に往復できる。
var exportHeader = []string{
	"Full name",
	"Email address",
	"Guest",
	"Status reason",
	"Manager",
	"Present",
	"Arrival time",
}

const arrivalLayout = "2006-01-02 15:04:05"

// WriteRoster: 現在の出欠状態をCSVに直列化する。フィルタは掛けず全参加者をロスター順で出す。
// Excelでそのまま開けるようBOM付きUTF-8で書く。
func WriteRoster(e checkin.Event) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(transform.NewWriter(&b, unicode.UTF8BOM.NewEncoder()))

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, p := range e.Participants {
		present := "No"
		if p.Present {
			present = "Yes"
		}
		arrival := ""
		if p.CheckedInAt != nil {
			arrival = p.CheckedInAt.UTC().Format(arrivalLayout)
		}
		record := []string{p.Name, p.Email, p.Guest, p.StatusReason, p.Manager, present, arrival}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ExportFilename: イベント名（空白は _ に置換）と開催日から一意なファイル名を組み立てる。
func ExportFilename(e checkin.Event) string {
	name := strings.Join(strings.Fields(e.Name), "_")
	return "emargement_" + name + "_" + e.Date + ".csv"
}
