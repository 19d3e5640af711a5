// internal/catalog/shopify.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
)

const defaultAPIVersion = "2024-07"

// ShopifySource fetches products through the Shopify Admin GraphQL API. It is
// the production Source implementation; tests substitute a fake.
type ShopifySource struct {
	client     *http.Client
	apiVersion string

	// baseURL overrides the shop-domain URL; used by tests.
	baseURL string
}

func NewShopifySource(timeout time.Duration, apiVersion string) *ShopifySource {
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &ShopifySource{
		client:     &http.Client{Timeout: timeout},
		apiVersion: apiVersion,
	}
}

const productsQuery = `
query($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        legacyResourceId
        title
        handle
        descriptionHtml
        vendor
        productType
        tags
        status
        seo { title description }
        metafields(first: 10) { edges { node { key } } }
        images(first: 20) { edges { node { url altText } } }
      }
    }
  }
}`

const productByIDQuery = `
query($id: ID!) {
  product(id: $id) {
    legacyResourceId
    title
    handle
    descriptionHtml
    vendor
    productType
    tags
    status
    seo { title description }
    metafields(first: 10) { edges { node { key } } }
    images(first: 20) { edges { node { url altText } } }
  }
}`

type gqlProduct struct {
	LegacyResourceID string   `json:"legacyResourceId"`
	Title            string   `json:"title"`
	Handle           string   `json:"handle"`
	DescriptionHTML  string   `json:"descriptionHtml"`
	Vendor           string   `json:"vendor"`
	ProductType      string   `json:"productType"`
	Tags             []string `json:"tags"`
	Status           string   `json:"status"`
	SEO              struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"seo"`
	Metafields struct {
		Edges []struct {
			Node struct {
				Key string `json:"key"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
	Images struct {
		Edges []struct {
			Node struct {
				URL     string `json:"url"`
				AltText string `json:"altText"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

type gqlResponse struct {
	Data struct {
		Products *struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node gqlProduct `json:"node"`
			} `json:"edges"`
		} `json:"products"`
		Product *gqlProduct `json:"product"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *ShopifySource) FetchPage(ctx context.Context, shopDomain, accessToken, cursor string, pageSize int) (*Page, error) {
	variables := map[string]interface{}{"first": pageSize}
	if cursor != "" {
		variables["after"] = cursor
	}

	parsed, err := s.execute(ctx, shopDomain, accessToken, productsQuery, variables)
	if err != nil {
		return nil, err
	}
	if parsed.Data.Products == nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "malformed products response from %s", shopDomain)
	}

	page := &Page{}
	for _, edge := range parsed.Data.Products.Edges {
		product, err := toProduct(edge.Node)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *product)
	}
	if parsed.Data.Products.PageInfo.HasNextPage {
		page.NextCursor = parsed.Data.Products.PageInfo.EndCursor
	}

	return page, nil
}

func (s *ShopifySource) FetchProductByID(ctx context.Context, shopDomain, accessToken string, id int64) (*Product, error) {
	variables := map[string]interface{}{
		"id": fmt.Sprintf("gid://shopify/Product/%d", id),
	}

	parsed, err := s.execute(ctx, shopDomain, accessToken, productByIDQuery, variables)
	if err != nil {
		return nil, err
	}
	if parsed.Data.Product == nil {
		return nil, nil
	}

	return toProduct(*parsed.Data.Product)
}

func (s *ShopifySource) execute(ctx context.Context, shopDomain, accessToken, query string, variables map[string]interface{}) (*gqlResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog query: %w", err)
	}

	base := fmt.Sprintf("https://%s", shopDomain)
	if s.baseURL != "" {
		base = s.baseURL
	}
	url := fmt.Sprintf("%s/admin/api/%s/graphql.json", base, s.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "catalog request to %s failed: %v", shopDomain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"shop":   shopDomain,
			"status": resp.StatusCode,
		}).Warn("Catalog API returned non-200 status")
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "catalog returned status %d", resp.StatusCode)
	}

	var parsed gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "failed to decode catalog response: %v", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "catalog query error: %s", parsed.Errors[0].Message)
	}

	return &parsed, nil
}

func toProduct(node gqlProduct) (*Product, error) {
	id, err := strconv.ParseInt(node.LegacyResourceID, 10, 64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogUnavailable, "unparseable product id %q", node.LegacyResourceID)
	}

	product := &Product{
		ID:             id,
		Title:          node.Title,
		Handle:         node.Handle,
		BodyHTML:       node.DescriptionHTML,
		Vendor:         node.Vendor,
		ProductType:    node.ProductType,
		Tags:           node.Tags,
		SEOTitle:       node.SEO.Title,
		SEODescription: node.SEO.Description,
		MetafieldCount: len(node.Metafields.Edges),
		Available:      node.Status == "ACTIVE",
	}
	for _, edge := range node.Images.Edges {
		product.Images = append(product.Images, ProductImage{
			Src: edge.Node.URL,
			Alt: edge.Node.AltText,
		})
	}

	return product, nil
}
