package feed

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Audience tags a viewer can opt into
const (
	AudienceStraight = "straight"
	AudienceGay      = "gay"
	AudienceBisexual = "bisexual"
	AudienceTrans    = "trans"
	AudienceLesbian  = "lesbian"
	AudienceAnimated = "animated"
)

// DefaultAudience applies when a viewer has not chosen any audience tags
const DefaultAudience = AudienceStraight

// AllAudiences is the audience enumeration in canonical order
var AllAudiences = []string{
	AudienceStraight,
	AudienceGay,
	AudienceBisexual,
	AudienceTrans,
	AudienceLesbian,
	AudienceAnimated,
}

// NormalizeAudiences lowercases and trims the input, drops unknown values
// and duplicates, and returns the survivors in canonical order. An empty
// result becomes the default audience.
func NormalizeAudiences(in []string) []string {
	wanted := make(map[string]bool, len(in))
	for _, a := range in {
		wanted[strings.ToLower(strings.TrimSpace(a))] = true
	}

	out := make([]string, 0, len(AllAudiences))
	for _, a := range AllAudiences {
		if wanted[a] {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return []string{DefaultAudience}
	}
	return out
}

// ParseAudiences reads a stored preference value, either a JSON array or a
// comma-separated list, and normalizes it.
func ParseAudiences(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NormalizeAudiences(nil)
	}

	var list []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return NormalizeAudiences(list)
		}
	}
	return NormalizeAudiences(strings.Split(raw, ","))
}

// IsAudience reports whether a is part of the enumeration
func IsAudience(a string) bool {
	for _, known := range AllAudiences {
		if a == known {
			return true
		}
	}
	return false
}
