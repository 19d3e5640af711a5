// internal/scoring/rules_test.go
package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/models"
)

func completeProduct() catalog.Product {
	return catalog.Product{
		ID:             1001,
		Title:          "Trail Runner Pro",
		Handle:         "trail-runner-pro",
		BodyHTML:       "<p>" + strings.Repeat("A breathable trail running shoe built for long distances. ", 8) + "</p>",
		Vendor:         "Ridgeline",
		ProductType:    "Footwear",
		Tags:           []string{"running", "trail", "outdoor"},
		SEOTitle:       "Trail Runner Pro | Ridgeline",
		SEODescription: "Lightweight trail running shoe with breathable mesh upper.",
		Images: []catalog.ProductImage{
			{Src: "https://cdn.example.com/shoe.jpg", Alt: "Side view of the Trail Runner Pro"},
		},
		MetafieldCount: 3,
		Available:      true,
	}
}

func TestScoreCompleteProduct(t *testing.T) {
	result := Score(completeProduct())

	assert.Equal(t, 100, result.AIScore)
	assert.Empty(t, result.Issues)
	assert.True(t, result.HasDescription)
	assert.True(t, result.HasImages)
	assert.True(t, result.HasMetafields)
}

func TestScoreEmptyProductLandsInCriticalBucket(t *testing.T) {
	result := Score(catalog.Product{ID: 1, Title: "Bare"})

	codes := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		codes = append(codes, issue.Code)
	}

	assert.Contains(t, codes, CodeMissingDescription)
	assert.Contains(t, codes, CodeNoImages)
	assert.Contains(t, codes, CodeNoTags)
	assert.Less(t, result.AIScore, 40)
	assert.GreaterOrEqual(t, result.AIScore, 0)
	assert.Equal(t, models.SeverityCritical, Bucket(result.AIScore))
}

func TestScoreDeterministic(t *testing.T) {
	p := completeProduct()
	p.SEOTitle = ""
	p.Tags = nil

	first := Score(p)
	second := Score(p)

	assert.Equal(t, first.AIScore, second.AIScore)
	assert.Equal(t, first.Issues, second.Issues)
}

func TestScoreBounds(t *testing.T) {
	products := []catalog.Product{
		{},
		completeProduct(),
		{BodyHTML: "short", Images: []catalog.ProductImage{{Src: "a.jpg"}}},
		{BodyHTML: strings.Repeat("long description ", 40), Tags: []string{"x"}},
	}

	for _, p := range products {
		result := Score(p)
		assert.GreaterOrEqual(t, result.AIScore, 0)
		assert.LessOrEqual(t, result.AIScore, 100)
	}
}

func TestScoreStripsHTMLBeforeLengthCheck(t *testing.T) {
	p := completeProduct()
	// Markup-heavy but under 100 visible characters.
	p.BodyHTML = "<div><span><strong>" + strings.Repeat("ok ", 10) + "</strong></span></div>"

	result := Score(p)

	hasShort := false
	for _, issue := range result.Issues {
		if issue.Code == CodeDescriptionTooShort {
			hasShort = true
		}
	}
	assert.True(t, hasShort)
	assert.Less(t, result.DescriptionLength, 100)
}

func TestScoreMissingAltTextOnlyWhenImagesExist(t *testing.T) {
	p := completeProduct()
	p.Images = []catalog.ProductImage{{Src: "a.jpg"}, {Src: "b.jpg"}}

	result := Score(p)

	var codes []string
	for _, issue := range result.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, CodeMissingAltText)
	assert.NotContains(t, codes, CodeNoImages)
}

func TestRichDescriptionRefundsDeductions(t *testing.T) {
	p := completeProduct()
	p.SEOTitle = ""

	long := Score(p) // rich description, one deduction

	p.BodyHTML = "<p>A decent description that clears the minimum length bar for products, padded out to be comfortably over one hundred characters long.</p>"
	medium := Score(p)

	assert.Greater(t, long.AIScore, medium.AIScore)
}

func TestBucketThresholds(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, Bucket(39))
	assert.Equal(t, models.SeverityWarning, Bucket(40))
	assert.Equal(t, models.SeverityWarning, Bucket(69))
	assert.Equal(t, models.SeverityInfo, Bucket(70))
	assert.Equal(t, models.SeverityInfo, Bucket(89))
	assert.Equal(t, models.IssueSeverity(""), Bucket(90))
}
