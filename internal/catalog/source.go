// internal/catalog/source.go
package catalog

import "context"

// Source is the external catalog collaborator. FetchPage follows a
// cursor-based paging contract: each page's cursor depends on the previous
// response, so pages are always fetched sequentially.
type Source interface {
	FetchPage(ctx context.Context, shopDomain, accessToken, cursor string, pageSize int) (*Page, error)
	FetchProductByID(ctx context.Context, shopDomain, accessToken string, id int64) (*Product, error)
}
