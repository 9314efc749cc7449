package analyze

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"pipetriage/src/contracts"
	"pipetriage/src/sanitize"
)

var (
	// Severity detection patterns
	fatalPattern = regexp.MustCompile(`(?i)\b(FATAL|PANIC|CRITICAL)\b`)
	errorPattern = regexp.MustCompile(`(?i)\b(ERROR|ERR|EXCEPTION|FAILURE|FAILED)\b`)

	// Normalization patterns: volatile tokens become placeholders so the
	// same failure hashes identically across builds.
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`)
	uuidPattern      = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	hexPattern       = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	numberPattern    = regexp.MustCompile(`\b\d+\b`)

	// A severity keyword near the start of the line, followed by a bracket
	// or colon, is a strong signal the line is a real log statement.
	highConfidencePattern = regexp.MustCompile(`(?i)^.{0,50}\b(FATAL|ERROR|EXCEPTION|CRITICAL)\s*[\[:]`)
)

// minLineLength filters out noise lines too short to carry a message.
const minLineLength = 10

// confidenceFloor drops findings the scoring heuristics consider noise.
const confidenceFloor = 0.5

// ScanLines scans task log lines for probable failure causes. Only ERROR and
// FATAL lines above the confidence floor become findings; the result is
// sorted by confidence descending, ties broken by line number.
func ScanLines(lines []string) []contracts.Finding {
	var findings []contracts.Finding

	for i, line := range lines {
		clean := sanitize.CleanLine(line)
		trimmed := strings.TrimSpace(clean)
		if len(trimmed) < minLineLength {
			continue
		}

		severity := detectSeverity(trimmed)
		if severity != "ERROR" && severity != "FATAL" {
			continue
		}

		confidence := scoreConfidence(trimmed, severity)
		if confidence < confidenceFloor {
			continue
		}

		normalized := NormalizeMessage(trimmed)
		findings = append(findings, contracts.Finding{
			LineNumber:      i + 1,
			RawMessage:      clean,
			NormalizedMsg:   normalized,
			Severity:        severity,
			ConfidenceScore: confidence,
			MessageHash:     MessageHash(normalized),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].ConfidenceScore != findings[j].ConfidenceScore {
			return findings[i].ConfidenceScore > findings[j].ConfidenceScore
		}
		return findings[i].LineNumber < findings[j].LineNumber
	})
	return findings
}

// detectSeverity determines the severity level of a log line.
func detectSeverity(line string) string {
	if fatalPattern.MatchString(line) {
		return "FATAL"
	}
	if errorPattern.MatchString(line) {
		return "ERROR"
	}
	return "INFO"
}

// scoreConfidence calculates a confidence score for a candidate line.
func scoreConfidence(line string, severity string) float64 {
	score := 0.5

	if highConfidencePattern.MatchString(line) {
		score += 0.3
	}
	if severity == "FATAL" {
		score += 0.2
	} else if severity == "ERROR" {
		score += 0.1
	}

	// Penalize common false positives.
	lower := strings.ToLower(line)
	if strings.Contains(lower, "test") && strings.Contains(lower, "passed") {
		score -= 0.3
	}
	if strings.Contains(lower, "deprecated") || strings.Contains(lower, "deprecation") {
		score -= 0.2
	}
	if strings.Contains(lower, "retry") {
		score -= 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// NormalizeMessage replaces volatile tokens in a log message so structurally
// identical failures compare equal.
func NormalizeMessage(msg string) string {
	normalized := msg
	normalized = timestampPattern.ReplaceAllString(normalized, "[TIMESTAMP]")
	normalized = uuidPattern.ReplaceAllString(normalized, "[UUID]")
	normalized = hexPattern.ReplaceAllString(normalized, "[HEX]")
	normalized = numberPattern.ReplaceAllString(normalized, "[NUM]")
	return strings.TrimSpace(normalized)
}

// MessageHash hashes a normalized message for recurrence tracking.
func MessageHash(normalized string) string {
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}
