// Package speech turns interviewer questions into audible playback.
package speech

import (
	"fmt"
	"strings"
)

// Voice is one synthesized voice offered by an engine.
type Voice struct {
	Name  string // display name, e.g. "Asteria"
	Model string // engine model identifier, e.g. "aura-asteria-en"
	Lang  string // BCP-47 language tag, e.g. "en-US"
}

// Candidates ranks the available voices for assignment. Preference names are
// matched as case-insensitive substrings against voice names, in list order,
// de-duplicated. When nothing matches, the fallback tiers are: voices whose
// name contains "google", then voices whose language tag starts with "en",
// then every available voice.
func Candidates(voices []Voice, preferred []string) []Voice {
	if len(voices) == 0 {
		return nil
	}

	var ranked []Voice
	seen := make(map[string]bool)
	for _, want := range preferred {
		w := strings.ToLower(want)
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.Name), w) && !seen[v.Model] {
				ranked = append(ranked, v)
				seen[v.Model] = true
				break
			}
		}
	}
	if len(ranked) > 0 {
		return ranked
	}

	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), "google") {
			ranked = append(ranked, v)
		}
	}
	if len(ranked) > 0 {
		return ranked
	}

	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			ranked = append(ranked, v)
		}
	}
	if len(ranked) > 0 {
		return ranked
	}

	return voices
}

// Assignments maps each interviewer name to a voice, round-robin over the
// ranked candidate list by panel position. The mapping is a pure function of
// its inputs. Interviewers with empty names are keyed by position.
func Assignments(voices []Voice, interviewers []string, preferred []string) map[string]Voice {
	base := Candidates(voices, preferred)
	if len(base) == 0 || len(interviewers) == 0 {
		return map[string]Voice{}
	}

	out := make(map[string]Voice, len(interviewers))
	for i, name := range interviewers {
		key := name
		if key == "" {
			key = fmt.Sprintf("Interviewer_%d", i)
		}
		out[key] = base[i%len(base)]
	}
	return out
}
