package integration

// ItemError is the per-item error the remote reports inside batch responses
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchStatus is embedded in every remote record so batch responses can
// carry per-item failures
type BatchStatus struct {
	Error *ItemError `json:"error,omitempty"`
}

// Failed reports whether the remote rejected the item
func (s BatchStatus) Failed() bool {
	return s.Error != nil
}

// ItemError returns the per-item error, nil when the item was accepted
func (s BatchStatus) ItemError() *ItemError {
	return s.Error
}

// RemoteRecord is implemented by every record the push reconciler exchanges
type RemoteRecord interface {
	RemoteID() int64
	ItemError() *ItemError
}

// RemoteImage is an image reference on a remote record
type RemoteImage struct {
	ID   int64  `json:"id,omitempty"`
	Src  string `json:"src,omitempty"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// RemoteRef is a lightweight {id, name, slug} reference
type RemoteRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// RemoteAttribute is a global product attribute
type RemoteAttribute struct {
	BatchStatus
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Type        string `json:"type,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	HasArchives bool   `json:"has_archives"`
}

// RemoteTerm is a value of a global attribute
type RemoteTerm struct {
	BatchStatus
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	MenuOrder   int    `json:"menu_order"`
	Count       int    `json:"count,omitempty"`
}

// RemoteTag is a product tag
type RemoteTag struct {
	BatchStatus
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// RemoteCategory is a product category
type RemoteCategory struct {
	BatchStatus
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug,omitempty"`
	Parent      int64        `json:"parent"`
	Description string       `json:"description,omitempty"`
	Count       int          `json:"count,omitempty"`
	Image       *RemoteImage `json:"image,omitempty"`
}

// RemoteProduct is a catalog product. Prices travel as decimal strings.
type RemoteProduct struct {
	BatchStatus
	ID            int64         `json:"id,omitempty"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug,omitempty"`
	Type          string        `json:"type,omitempty"`
	Status        string        `json:"status,omitempty"`
	Description   string        `json:"description,omitempty"`
	SKU           string        `json:"sku,omitempty"`
	RegularPrice  string        `json:"regular_price"`
	SalePrice     string        `json:"sale_price"`
	ManageStock   bool          `json:"manage_stock"`
	StockQuantity *int64        `json:"stock_quantity"`
	Categories    []RemoteRef   `json:"categories,omitempty"`
	Tags          []RemoteRef   `json:"tags,omitempty"`
	Images        []RemoteImage `json:"images,omitempty"`
	Variations    []int64       `json:"variations,omitempty"`
}

// RemoteVariationAttribute is the attribute option a variation selects
type RemoteVariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// RemoteVariation is one variant of a variable product
type RemoteVariation struct {
	BatchStatus
	ID            int64                      `json:"id,omitempty"`
	SKU           string                     `json:"sku,omitempty"`
	RegularPrice  string                     `json:"regular_price"`
	SalePrice     string                     `json:"sale_price"`
	ManageStock   bool                       `json:"manage_stock"`
	StockQuantity *int64                     `json:"stock_quantity"`
	Image         *RemoteImage               `json:"image,omitempty"`
	Attributes    []RemoteVariationAttribute `json:"attributes,omitempty"`
}

// RemoteMedia is an uploaded media library item
type RemoteMedia struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
	Title     struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
}

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteAttribute) RemoteID() int64 { return r.ID }

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteTerm) RemoteID() int64 { return r.ID }

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteTag) RemoteID() int64 { return r.ID }

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteCategory) RemoteID() int64 { return r.ID }

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteProduct) RemoteID() int64 { return r.ID }

// RemoteID returns the remote identifier, 0 before creation
func (r RemoteVariation) RemoteID() int64 { return r.ID }
