package ecommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atelier/backend/internal/domain/integration"
)

// wooResource implements integration.Resource for one REST collection
type wooResource[T any] struct {
	client *WooClient
	path   string
}

func newWooResource[T any](client *WooClient, path string) *wooResource[T] {
	return &wooResource[T]{client: client, path: path}
}

// List fetches one page of the collection
func (r *wooResource[T]) List(ctx context.Context, opts integration.ListOptions) (*integration.Page[T], error) {
	var items []T
	header, err := r.client.call(ctx, http.MethodGet, r.path, listQuery(opts), nil, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &integration.Page[T]{
		Items:      items,
		Total:      headerInt(header, "X-WP-Total"),
		TotalPages: headerInt(header, "X-WP-TotalPages"),
	}, nil
}

// ListAll walks every page of the collection
func (r *wooResource[T]) ListAll(ctx context.Context, opts integration.ListOptions) ([]T, error) {
	if opts.PerPage <= 0 {
		opts.PerPage = integration.DefaultPageSize
	}
	opts.Page = 1

	all := make([]T, 0)
	for {
		page, err := r.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		// without the header a short page is the last one
		if len(page.Items) == 0 || (page.TotalPages > 0 && opts.Page >= page.TotalPages) ||
			(page.TotalPages == 0 && len(page.Items) < opts.PerPage) {
			return all, nil
		}
		opts.Page++
	}
}

// Get fetches one record by remote id
func (r *wooResource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	if _, err := r.client.call(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create creates a record
func (r *wooResource[T]) Create(ctx context.Context, item *T) (*T, error) {
	var created T
	if _, err := r.client.call(ctx, http.MethodPost, r.path, nil, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the fields of a record
func (r *wooResource[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	var updated T
	if _, err := r.client.call(ctx, http.MethodPut, r.itemPath(id), nil, item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a record permanently
func (r *wooResource[T]) Delete(ctx context.Context, id int64) error {
	query := url.Values{"force": {"true"}}
	_, err := r.client.call(ctx, http.MethodDelete, r.itemPath(id), query, nil, nil)
	return err
}

// Batch submits req in chunks of integration.MaxBatchSize operations and
// merges the responses in submission order. A failing chunk stops the run;
// chunks already applied stay applied.
func (r *wooResource[T]) Batch(ctx context.Context, req integration.BatchRequest[T]) (*integration.BatchResponse[T], error) {
	merged := &integration.BatchResponse[T]{}
	for _, chunk := range chunkBatch(req, integration.MaxBatchSize) {
		var resp integration.BatchResponse[T]
		if _, err := r.client.call(ctx, http.MethodPost, r.path+"/batch", nil, chunk, &resp); err != nil {
			return merged, err
		}
		merged.Create = append(merged.Create, resp.Create...)
		merged.Update = append(merged.Update, resp.Update...)
		merged.Delete = append(merged.Delete, resp.Delete...)
	}
	return merged, nil
}

func (r *wooResource[T]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// chunkBatch splits req so that no chunk carries more than size operations
func chunkBatch[T any](req integration.BatchRequest[T], size int) []integration.BatchRequest[T] {
	var chunks []integration.BatchRequest[T]
	current := integration.BatchRequest[T]{}
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current)
			current = integration.BatchRequest[T]{}
		}
	}

	for _, item := range req.Create {
		if current.Len() == size {
			flush()
		}
		current.Create = append(current.Create, item)
	}
	for _, item := range req.Update {
		if current.Len() == size {
			flush()
		}
		current.Update = append(current.Update, item)
	}
	for _, id := range req.Delete {
		if current.Len() == size {
			flush()
		}
		current.Delete = append(current.Delete, id)
	}
	flush()
	return chunks
}

func listQuery(opts integration.ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	for k, v := range opts.Extra {
		q.Set(k, v)
	}
	return q
}
