// internal/analysis/analyzer.go

// Package analysis parses free-text AI assistant responses for brand
// mentions. All functions are pure and deterministic: same inputs, same
// result, no external calls.
package analysis

import (
	"regexp"
	"strings"

	"github.com/ranksight/ranksight-backend/internal/models"
)

// Analysis is the parsed outcome for one response text.
type Analysis struct {
	IsMentioned      bool
	MentionContext   *string
	Position         *int
	CompetitorsFound []string
	ResponseQuality  models.ResponseQuality
}

const (
	maxContextLength      = 240
	detailedMinTextLength = 200
	detailedMinContextPad = 40
)

// genericCompetitors is the fallback list used when a shop has not configured
// competitors of its own.
var genericCompetitors = []string{
	"Amazon", "Walmart", "Target", "eBay", "Etsy",
	"Best Buy", "Costco", "Shein", "Temu", "AliExpress",
}

var listMarker = regexp.MustCompile(`(?:^|\s)(\d{1,2})[.)]\s+`)

// Analyze inspects a raw response for the brand. brandDomain may be empty; if
// set, its root (e.g. "acme" from "acme.com") counts as a mention too.
// Position stays nil when the brand is mentioned outside any enumerable list:
// mentioned-but-unranked is a distinct, valid state.
func Analyze(text, brandName, brandDomain string, competitors []string) Analysis {
	result := Analysis{ResponseQuality: models.QualityNone}
	if strings.TrimSpace(text) == "" || strings.TrimSpace(brandName) == "" {
		return result
	}

	lowerText := strings.ToLower(text)
	needles := []string{strings.ToLower(strings.TrimSpace(brandName))}
	if root := domainRoot(brandDomain); root != "" && root != needles[0] {
		needles = append(needles, root)
	}

	mentionIdx := -1
	for _, needle := range needles {
		if idx := strings.Index(lowerText, needle); idx >= 0 && (mentionIdx < 0 || idx < mentionIdx) {
			mentionIdx = idx
		}
	}

	result.CompetitorsFound = findCompetitors(lowerText, brandName, competitors)
	if mentionIdx < 0 {
		return result
	}

	result.IsMentioned = true
	context := sentenceAround(text, mentionIdx)
	result.MentionContext = &context
	result.Position = listPosition(text, needles)
	result.ResponseQuality = classifyQuality(text, brandName, context)

	return result
}

// domainRoot reduces "www.acme-shop.com" to "acme-shop".
func domainRoot(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if idx := strings.IndexAny(domain, "/?"); idx >= 0 {
		domain = domain[:idx]
	}
	if idx := strings.Index(domain, "."); idx > 0 {
		domain = domain[:idx]
	}
	if len(domain) < 3 {
		return ""
	}
	return domain
}

func findCompetitors(lowerText, brandName string, competitors []string) []string {
	candidates := competitors
	if len(candidates) == 0 {
		candidates = genericCompetitors
	}

	lowerBrand := strings.ToLower(strings.TrimSpace(brandName))
	var found []string
	seen := make(map[string]bool)
	for _, name := range candidates {
		trimmed := strings.TrimSpace(name)
		lower := strings.ToLower(trimmed)
		if trimmed == "" || lower == lowerBrand || seen[lower] {
			continue
		}
		if strings.Contains(lowerText, lower) {
			found = append(found, trimmed)
			seen[lower] = true
		}
	}
	return found
}

// listPosition returns the 1-based rank of the brand among detected list
// entries, or nil when the response has no enumerable structure.
func listPosition(text string, needles []string) *int {
	if pos := numberedListPosition(text, needles); pos != nil {
		return pos
	}
	return separatedListPosition(text, needles)
}

func numberedListPosition(text string, needles []string) *int {
	markers := listMarker.FindAllStringIndex(text, -1)
	if len(markers) < 2 {
		return nil
	}

	for i, marker := range markers {
		start := marker[1]
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		entry := strings.ToLower(text[start:end])
		for _, needle := range needles {
			if strings.Contains(entry, needle) {
				rank := i + 1
				return &rank
			}
		}
	}
	return nil
}

// separatedListPosition handles "Nike, Adidas, and Reebok" style enumerations
// within the sentence that mentions the brand.
func separatedListPosition(text string, needles []string) *int {
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		mentioned := false
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				mentioned = true
				break
			}
		}
		if !mentioned || strings.Count(sentence, ",")+strings.Count(sentence, ";") < 2 {
			continue
		}

		entries := splitEntries(sentence)
		if len(entries) < 3 {
			continue
		}
		for i, entry := range entries {
			lowerEntry := strings.ToLower(entry)
			for _, needle := range needles {
				if strings.Contains(lowerEntry, needle) {
					rank := i + 1
					return &rank
				}
			}
		}
	}
	return nil
}

func splitEntries(sentence string) []string {
	replaced := strings.NewReplacer(";", ",", " and ", ",", " or ", ",").Replace(sentence)
	parts := strings.Split(replaced, ",")
	var entries []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		// Long fragments are prose, not list entries.
		if trimmed != "" && len(trimmed) <= 60 {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == '!' || r == '?'
	})
}

// sentenceAround extracts the sentence containing the mention, capped so the
// stored excerpt stays short.
func sentenceAround(text string, idx int) string {
	start := idx
	for start > 0 {
		r := text[start-1]
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			break
		}
		start--
	}
	end := idx
	for end < len(text) {
		r := text[end]
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			end++
			break
		}
		end++
	}

	excerpt := strings.TrimSpace(text[start:end])
	if len(excerpt) > maxContextLength {
		excerpt = excerpt[:maxContextLength]
	}
	return excerpt
}

// classifyQuality distinguishes a detailed answer from a bare name-drop.
func classifyQuality(text, brandName, context string) models.ResponseQuality {
	descriptive := len(context) >= len(brandName)+detailedMinContextPad
	if descriptive && len(text) >= detailedMinTextLength {
		return models.QualityDetailed
	}
	return models.QualityBrief
}
