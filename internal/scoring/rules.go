// internal/scoring/rules.go

// Package scoring grades one catalog product for AI readiness: how likely
// generative assistants are to surface and cite its content. Scoring is a
// pure deduction model, deterministic over a product snapshot.
//
// Deduction table (all checks run in order, score starts at 100):
//
//	missing_description      -25  critical
//	description_too_short    -10  warning   (under 100 visible characters)
//	no_images                -20  critical
//	missing_alt_text         -10  warning   (images present, none with alt)
//	missing_seo_title        -10  warning
//	missing_seo_description  -10  warning
//	no_tags                   -8  warning
//	missing_vendor            -4  info
//	missing_product_type      -4  info
//	no_metafields             -5  info
//
// A rich description (300+ visible characters) refunds 6 points of content
// deductions. The final score is clamped to [0, 100].
package scoring

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/models"
)

const (
	minDescriptionLength  = 100
	richDescriptionLength = 300
	richDescriptionBonus  = 6
)

const (
	CodeMissingDescription    = "missing_description"
	CodeDescriptionTooShort   = "description_too_short"
	CodeNoImages              = "no_images"
	CodeMissingAltText        = "missing_alt_text"
	CodeMissingSEOTitle       = "missing_seo_title"
	CodeMissingSEODescription = "missing_seo_description"
	CodeNoTags                = "no_tags"
	CodeMissingVendor         = "missing_vendor"
	CodeMissingProductType    = "missing_product_type"
	CodeNoMetafields          = "no_metafields"
)

// Result is the scored outcome for one product.
type Result struct {
	AIScore           int
	Issues            []models.Issue
	HasImages         bool
	HasDescription    bool
	HasMetafields     bool
	DescriptionLength int
}

// stripPolicy removes all markup so length checks see visible text only.
var stripPolicy = bluemonday.StrictPolicy()

// Score applies the deduction table to a product snapshot. Pure: no I/O, no
// randomness; the same snapshot always yields the same score and issue list.
func Score(p catalog.Product) Result {
	description := strings.TrimSpace(stripPolicy.Sanitize(p.BodyHTML))
	descriptionLength := len([]rune(description))

	result := Result{
		HasImages:         len(p.Images) > 0,
		HasDescription:    descriptionLength > 0,
		HasMetafields:     p.MetafieldCount > 0,
		DescriptionLength: descriptionLength,
	}

	deduction := 0
	addIssue := func(severity models.IssueSeverity, code, message string, points int) {
		deduction += points
		result.Issues = append(result.Issues, models.Issue{
			Severity: severity,
			Code:     code,
			Message:  message,
		})
	}

	if descriptionLength == 0 {
		addIssue(models.SeverityCritical, CodeMissingDescription,
			"Product has no description; AI assistants have nothing to cite.", 25)
	} else if descriptionLength < minDescriptionLength {
		addIssue(models.SeverityWarning, CodeDescriptionTooShort,
			"Description is under 100 characters; too thin for AI answers.", 10)
	}

	if len(p.Images) == 0 {
		addIssue(models.SeverityCritical, CodeNoImages,
			"Product has no images.", 20)
	} else if !anyImageHasAlt(p.Images) {
		addIssue(models.SeverityWarning, CodeMissingAltText,
			"No product image has alt text.", 10)
	}

	if strings.TrimSpace(p.SEOTitle) == "" {
		addIssue(models.SeverityWarning, CodeMissingSEOTitle,
			"SEO title is not set.", 10)
	}
	if strings.TrimSpace(p.SEODescription) == "" {
		addIssue(models.SeverityWarning, CodeMissingSEODescription,
			"SEO description is not set.", 10)
	}

	if len(p.Tags) == 0 {
		addIssue(models.SeverityWarning, CodeNoTags,
			"Product has no tags to anchor topical relevance.", 8)
	}
	if strings.TrimSpace(p.Vendor) == "" {
		addIssue(models.SeverityInfo, CodeMissingVendor,
			"Vendor is not set.", 4)
	}
	if strings.TrimSpace(p.ProductType) == "" {
		addIssue(models.SeverityInfo, CodeMissingProductType,
			"Product type is not set.", 4)
	}
	if p.MetafieldCount == 0 {
		addIssue(models.SeverityInfo, CodeNoMetafields,
			"Product has no metafields with structured attributes.", 5)
	}

	// Quality content caps the achievable deduction.
	if descriptionLength >= richDescriptionLength && deduction >= richDescriptionBonus {
		deduction -= richDescriptionBonus
	}

	score := 100 - deduction
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	result.AIScore = score

	return result
}

func anyImageHasAlt(images []catalog.ProductImage) bool {
	for _, img := range images {
		if strings.TrimSpace(img.Alt) != "" {
			return true
		}
	}
	return false
}

// Bucket maps a score onto its severity bucket. Scores of 90 and above are
// considered clean and return an empty severity.
func Bucket(score int) models.IssueSeverity {
	switch {
	case score < 40:
		return models.SeverityCritical
	case score < 70:
		return models.SeverityWarning
	case score < 90:
		return models.SeverityInfo
	default:
		return ""
	}
}
