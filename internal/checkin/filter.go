package checkin

import "strings"

// ===== Lookup & Filter =====

type Status string

const (
	StatusAll     Status = "all"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// ParseStatus: クエリパラメータの status を解釈。空は "all" 扱い。
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	}
	return "", ErrInvalid("status must be one of all, present, absent")
}

type Filter struct {
	Query  string
	Status Status
}

// FilterParticipants: 在否フィルタと検索文字列のAND。入力順を保ったままの射影で、並べ替えはしない。
// 検索は name / email / manager への大文字小文字無視の部分一致（OR）。
func FilterParticipants(list []Participant, f Filter) []Participant {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Participant, 0, len(list))
	for _, p := range list {
		if f.Status == StatusPresent && !p.Present {
			continue
		}
		if f.Status == StatusAbsent && p.Present {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p Participant, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Email), query) ||
		strings.Contains(strings.ToLower(p.Manager), query)
}
