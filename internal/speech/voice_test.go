package speech

import (
	"reflect"
	"testing"
)

func TestCandidatesPreferredOrder(t *testing.T) {
	voices := []Voice{
		{Name: "Asteria", Model: "aura-asteria-en", Lang: "en-US"},
		{Name: "Orion", Model: "aura-orion-en", Lang: "en-US"},
		{Name: "Luna", Model: "aura-luna-en", Lang: "en-US"},
	}
	got := Candidates(voices, []string{"orion", "Asteria"})
	want := []Voice{voices[1], voices[0]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranked = %v, want %v", got, want)
	}
}

func TestCandidatesDeduplicates(t *testing.T) {
	voices := []Voice{
		{Name: "Asteria", Model: "aura-asteria-en", Lang: "en-US"},
	}
	got := Candidates(voices, []string{"aster", "asteria"})
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
}

func TestCandidatesFallbackTiers(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		want   []string
	}{
		{
			name: "google tier",
			voices: []Voice{
				{Name: "fr-voice", Model: "m1", Lang: "fr-FR"},
				{Name: "Google UK English", Model: "m2", Lang: "en-GB"},
			},
			want: []string{"Google UK English"},
		},
		{
			name: "english tier",
			voices: []Voice{
				{Name: "voix", Model: "m1", Lang: "fr-FR"},
				{Name: "Athena", Model: "m2", Lang: "en-GB"},
			},
			want: []string{"Athena"},
		},
		{
			name: "everything tier",
			voices: []Voice{
				{Name: "voix", Model: "m1", Lang: "fr-FR"},
				{Name: "stimme", Model: "m2", Lang: "de-DE"},
			},
			want: []string{"voix", "stimme"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Candidates(tc.voices, []string{"nomatch"})
			var names []string
			for _, v := range got {
				names = append(names, v.Name)
			}
			if !reflect.DeepEqual(names, tc.want) {
				t.Fatalf("names = %v, want %v", names, tc.want)
			}
		})
	}
}

func TestCandidatesEmpty(t *testing.T) {
	if got := Candidates(nil, []string{"orion"}); got != nil {
		t.Fatalf("expected nil for empty voice list, got %v", got)
	}
}

func TestAssignmentsRoundRobin(t *testing.T) {
	voices := []Voice{
		{Name: "Orion", Model: "aura-orion-en", Lang: "en-US"},
		{Name: "Asteria", Model: "aura-asteria-en", Lang: "en-US"},
	}
	preferred := []string{"Orion", "Asteria"}
	got := Assignments(voices, []string{"Sarah Chen", "Marcus Reed", "Priya Patel"}, preferred)

	if got["Sarah Chen"].Model != "aura-orion-en" {
		t.Errorf("first interviewer = %s, want aura-orion-en", got["Sarah Chen"].Model)
	}
	if got["Marcus Reed"].Model != "aura-asteria-en" {
		t.Errorf("second interviewer = %s, want aura-asteria-en", got["Marcus Reed"].Model)
	}
	// Wraps past the candidate list.
	if got["Priya Patel"].Model != "aura-orion-en" {
		t.Errorf("third interviewer = %s, want aura-orion-en", got["Priya Patel"].Model)
	}
}

func TestAssignmentsReproducible(t *testing.T) {
	voices := auraVoices
	names := []string{"A", "B", "C"}
	preferred := []string{"Orion", "Asteria", "Arcas"}
	first := Assignments(voices, names, preferred)
	second := Assignments(voices, names, preferred)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("assignment not reproducible: %v vs %v", first, second)
	}
}

func TestAssignmentsEmptyNameKeyedByPosition(t *testing.T) {
	voices := []Voice{{Name: "Orion", Model: "aura-orion-en", Lang: "en-US"}}
	got := Assignments(voices, []string{""}, nil)
	if _, ok := got["Interviewer_0"]; !ok {
		t.Fatalf("expected Interviewer_0 key, got %v", got)
	}
}
