// internal/analysis/analyzer_test.go
package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranksight/ranksight-backend/internal/models"
)

func TestAnalyzeNumberedList(t *testing.T) {
	result := Analyze("1. Nike 2. Adidas 3. Reebok", "Adidas", "", []string{"Nike", "Reebok"})

	assert.True(t, result.IsMentioned)
	require.NotNil(t, result.Position)
	assert.Equal(t, 2, *result.Position)
	assert.Equal(t, []string{"Nike", "Reebok"}, result.CompetitorsFound)
}

func TestAnalyzeNotMentioned(t *testing.T) {
	result := Analyze("The best running shoes come from Nike and Reebok.", "Adidas", "", []string{"Nike"})

	assert.False(t, result.IsMentioned)
	assert.Nil(t, result.Position)
	assert.Nil(t, result.MentionContext)
	assert.Equal(t, models.QualityNone, result.ResponseQuality)
	assert.Equal(t, []string{"Nike"}, result.CompetitorsFound)
}

func TestAnalyzeMentionedButUnranked(t *testing.T) {
	text := "Adidas makes solid running shoes with a wide range of models."
	result := Analyze(text, "Adidas", "", nil)

	assert.True(t, result.IsMentioned)
	assert.Nil(t, result.Position, "prose mention must not default to position 1")
	require.NotNil(t, result.MentionContext)
	assert.Contains(t, *result.MentionContext, "Adidas")
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	result := Analyze("Many runners recommend ADIDAS for daily training.", "adidas", "", nil)

	assert.True(t, result.IsMentioned)
}

func TestAnalyzeDomainRootMention(t *testing.T) {
	result := Analyze("You could also check ridgeline for trail gear.", "Ridgeline Outfitters", "www.ridgeline.com", nil)

	assert.True(t, result.IsMentioned)
}

func TestAnalyzeCommaSeparatedList(t *testing.T) {
	text := "Popular picks include Nike, Adidas, Reebok, and New Balance for most runners."
	result := Analyze(text, "Reebok", "", []string{"Nike", "Adidas"})

	assert.True(t, result.IsMentioned)
	require.NotNil(t, result.Position)
	assert.Equal(t, 3, *result.Position)
}

func TestAnalyzeExcludesBrandFromCompetitors(t *testing.T) {
	result := Analyze("Adidas and Nike both sell trail shoes.", "Adidas", "", []string{"Adidas", "Nike"})

	assert.Equal(t, []string{"Nike"}, result.CompetitorsFound)
}

func TestAnalyzeGenericCompetitorFallback(t *testing.T) {
	result := Analyze("Most people just buy from Amazon or Walmart instead.", "Ridgeline", "", nil)

	assert.Contains(t, result.CompetitorsFound, "Amazon")
	assert.Contains(t, result.CompetitorsFound, "Walmart")
}

func TestAnalyzeQualityClassification(t *testing.T) {
	detailed := "Adidas is a strong choice for runners because its Boost midsole keeps energy return high over long distances. " +
		strings.Repeat("The brand also offers wide sizing and durable outsoles. ", 3)
	result := Analyze(detailed, "Adidas", "", nil)
	assert.Equal(t, models.QualityDetailed, result.ResponseQuality)

	brief := Analyze("Try Adidas.", "Adidas", "", nil)
	assert.Equal(t, models.QualityBrief, brief.ResponseQuality)
}

func TestAnalyzeDeterministic(t *testing.T) {
	text := "1. Nike 2. Adidas 3. Reebok — all three make good daily trainers."
	first := Analyze(text, "Adidas", "adidas.com", []string{"Nike", "Reebok"})
	second := Analyze(text, "Adidas", "adidas.com", []string{"Nike", "Reebok"})

	assert.Equal(t, first, second)
}

func TestAnalyzeEmptyInputs(t *testing.T) {
	assert.False(t, Analyze("", "Adidas", "", nil).IsMentioned)
	assert.False(t, Analyze("some text", "", "", nil).IsMentioned)
}
