// internal/catalog/product.go
package catalog

// ProductImage is one catalog image with its accessibility alt text.
type ProductImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Product is a read-only snapshot of one catalog item as the source returns
// it. The engines never mutate it.
type Product struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Handle         string         `json:"handle"`
	BodyHTML       string         `json:"body_html"`
	Vendor         string         `json:"vendor"`
	ProductType    string         `json:"product_type"`
	Tags           []string       `json:"tags"`
	SEOTitle       string         `json:"seo_title"`
	SEODescription string         `json:"seo_description"`
	Images         []ProductImage `json:"images"`
	MetafieldCount int            `json:"metafield_count"`
	Available      bool           `json:"available"`
}

// Page is one cursor-paged slice of the catalog. NextCursor is empty when the
// source is exhausted.
type Page struct {
	Items      []Product
	NextCursor string
}
