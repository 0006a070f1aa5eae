package checkin

import "testing"

func filterFixture() []Participant {
	return []Participant{
		{ID: "1", Name: "John Smith", Email: "john@x.com", Manager: "Dupont", Present: true},
		{ID: "2", Name: "Ada Lovelace", Email: "ada@x.com", Manager: "Smith"},
		{ID: "3", Name: "Grace Hopper", Email: "grace.smith@x.com", Manager: "Dupont", Present: true},
		{ID: "4", Name: "Joan Clarke", Email: "joan@x.com", Manager: "Turing"},
	}
}

func ids(list []Participant) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []Participant, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, g)
		}
	}
}

func TestFilterStatusOnly(t *testing.T) {
	list := filterFixture()

	assertIDs(t, FilterParticipants(list, Filter{Status: StatusAll}), "1", "2", "3", "4")
	assertIDs(t, FilterParticipants(list, Filter{Status: StatusPresent}), "1", "3")
	assertIDs(t, FilterParticipants(list, Filter{Status: StatusAbsent}), "2", "4")
}

func TestFilterQueryMatchesNameEmailManager(t *testing.T) {
	list := filterFixture()

	// name / email / manager のいずれかに部分一致すればよい（OR）
	assertIDs(t, FilterParticipants(list, Filter{Query: "SMITH", Status: StatusAll}), "1", "2", "3")
	assertIDs(t, FilterParticipants(list, Filter{Query: "turing", Status: StatusAll}), "4")
	assertIDs(t, FilterParticipants(list, Filter{Query: "ada@", Status: StatusAll}), "2")
}

func TestFilterIsConjunctive(t *testing.T) {
	list := filterFixture()

	// 検索語と在席状態はAND
	assertIDs(t, FilterParticipants(list, Filter{Query: "smith", Status: StatusPresent}), "1", "3")
	assertIDs(t, FilterParticipants(list, Filter{Query: "smith", Status: StatusAbsent}), "2")
}

func TestFilterEmptyQueryMatchesEverything(t *testing.T) {
	list := filterFixture()
	assertIDs(t, FilterParticipants(list, Filter{Query: "   ", Status: StatusAll}), "1", "2", "3", "4")
}

func TestFilterPreservesInputOrder(t *testing.T) {
	list := []Participant{
		{ID: "z", Name: "smith z"},
		{ID: "a", Name: "smith a"},
		{ID: "m", Name: "smith m"},
	}
	assertIDs(t, FilterParticipants(list, Filter{Query: "smith", Status: StatusAll}), "z", "a", "m")
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"":        StatusAll,
		"all":     StatusAll,
		"Present": StatusPresent,
		" absent": StatusAbsent,
	} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseStatus("everyone"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
