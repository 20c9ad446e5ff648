package risk

import (
	"log/slog"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelNone     Level = "none"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// riskRank is an explicit total order. Never compare declaration order -
// the vocabulary might get reordered.
var riskRank = map[Level]int{
	LevelUnknown:  -1,
	LevelNone:     0,
	LevelLow:      1,
	LevelMedium:   2,
	LevelHigh:     3,
	LevelCritical: 4,
}

func Rank(l Level) int {
	rank, ok := riskRank[l]
	if !ok {
		return riskRank[LevelUnknown]
	}
	return rank
}

// Max returns the more severe of the two levels. Ties keep the first value,
// which makes the raise operation commutative and idempotent.
func Max(a, b Level) Level {
	if Rank(b) > Rank(a) {
		return b
	}
	return a
}

// Classify maps a numeric CVSS score and a source-reported severity text to
// a risk level. The numeric score wins whenever it is present and positive.
func Classify(cvssScore float64, severityText string) Level {
	switch {
	case cvssScore >= 9.0:
		return LevelCritical
	case cvssScore >= 7.0:
		return LevelHigh
	case cvssScore >= 4.0:
		return LevelMedium
	case cvssScore > 0.0:
		return LevelLow
	}

	switch strings.ToLower(strings.TrimSpace(severityText)) {
	case "critical":
		return LevelCritical
	case "high":
		return LevelHigh
	case "medium", "moderate":
		return LevelMedium
	case "low":
		return LevelLow
	case "":
		return LevelUnknown
	default:
		return LevelNone
	}
}

// ScoreFromVector derives a base score from a CVSS vector string. Returns 0
// if the vector cannot be parsed.
func ScoreFromVector(vector string) float64 {
	if vector == "" {
		return 0
	}

	switch {
	case strings.HasPrefix(vector, "CVSS:3.0"):
		cvss, err := gocvss30.ParseVector(vector)
		if err != nil {
			slog.Warn("could not parse CVSS vector", "vector", vector, "err", err)
			return 0
		}
		return cvss.BaseScore()
	case strings.HasPrefix(vector, "CVSS:3.1"):
		cvss, err := gocvss31.ParseVector(vector)
		if err != nil {
			slog.Warn("could not parse CVSS vector", "vector", vector, "err", err)
			return 0
		}
		return cvss.BaseScore()
	case strings.HasPrefix(vector, "CVSS:4.0"):
		cvss, err := gocvss40.ParseVector(vector)
		if err != nil {
			slog.Warn("could not parse CVSS vector", "vector", vector, "err", err)
			return 0
		}
		return cvss.Score()
	default:
		// should be CVSS v2.0 or is invalid
		cvss, err := gocvss20.ParseVector(vector)
		if err != nil {
			slog.Warn("could not parse CVSS vector", "vector", vector, "err", err)
			return 0
		}
		return cvss.BaseScore()
	}
}
