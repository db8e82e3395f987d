package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogSyncService reconciles the local catalog with the remote one.
// Attributes, their terms and tags are pushed; products and categories are pulled.
type CatalogSyncService struct {
	gateway    integration.CatalogGateway
	attributes catalog.AttributeRepository
	terms      catalog.TermRepository
	tags       catalog.TagRepository
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	options    SyncOptions
	recorder   SyncRecorder
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewCatalogSyncService creates a new CatalogSyncService
func NewCatalogSyncService(
	gateway integration.CatalogGateway,
	attributes catalog.AttributeRepository,
	terms catalog.TermRepository,
	tags catalog.TagRepository,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	options SyncOptions,
	logger *zap.Logger,
) *CatalogSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSyncService{
		gateway:    gateway,
		attributes: attributes,
		terms:      terms,
		tags:       tags,
		products:   products,
		categories: categories,
		options:    options,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// SyncRecorder receives the outcome of every finished run
type SyncRecorder interface {
	RecordSync(ctx context.Context, operation string, result *integration.SyncResult)
}

// SetRecorder sets the recorder notified after each run
func (s *CatalogSyncService) SetRecorder(recorder SyncRecorder) {
	s.recorder = recorder
}

// SyncAll pushes attributes, waits the configured phase delay, then pushes
// tags. A failed attribute phase aborts the run before tags are touched.
func (s *CatalogSyncService) SyncAll(ctx context.Context) (*integration.SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	result := integration.NewSyncResult(s.now())

	if err := s.pushAttributes(ctx, result); err != nil {
		result.Fail(err)
		s.logResult(ctx, "catalog", result.Finish(s.now()))
		return result, nil
	}

	if err := s.sleep(ctx, s.options.PhaseDelay); err != nil {
		result.Fail(err)
		s.logResult(ctx, "catalog", result.Finish(s.now()))
		return result, nil
	}

	if err := s.pushTags(ctx, result); err != nil {
		result.Fail(err)
	}
	s.logResult(ctx, "catalog", result.Finish(s.now()))
	return result, nil
}

// SyncAttributes pushes attributes and their terms
func (s *CatalogSyncService) SyncAttributes(ctx context.Context) (*integration.SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	result := integration.NewSyncResult(s.now())
	if err := s.pushAttributes(ctx, result); err != nil {
		result.Fail(err)
	}
	s.logResult(ctx, "attributes", result.Finish(s.now()))
	return result, nil
}

// SyncTags pushes tags
func (s *CatalogSyncService) SyncTags(ctx context.Context) (*integration.SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	result := integration.NewSyncResult(s.now())
	if err := s.pushTags(ctx, result); err != nil {
		result.Fail(err)
	}
	s.logResult(ctx, "tags", result.Finish(s.now()))
	return result, nil
}

// PullProducts upserts every remote product, with its variations, by remote id
func (s *CatalogSyncService) PullProducts(ctx context.Context) (*integration.SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	result := integration.NewSyncResult(s.now())
	result.Phases = append(result.Phases, integration.PhaseProducts)

	remotes, err := s.gateway.Products().ListAll(ctx, integration.ListOptions{PerPage: integration.DefaultPageSize})
	if err != nil {
		result.Fail(err)
		s.logResult(ctx, "products", result.Finish(s.now()))
		return result, nil
	}

	for _, rp := range remotes {
		itemID := fmt.Sprintf("%d", rp.ID)
		product, err := s.productFromRemote(rp)
		if err != nil {
			result.AddFailure(integration.PhaseProducts, itemID, "invalid_product", err.Error())
			continue
		}

		var variations []catalog.Variation
		if product.Type == catalog.ProductTypeVariable {
			remoteVariations, err := s.gateway.Variations(rp.ID).ListAll(ctx, integration.ListOptions{PerPage: integration.DefaultPageSize})
			if err != nil {
				result.AddFailure(integration.PhaseProducts, itemID, "variations_unavailable", err.Error())
				continue
			}
			variations, err = variationsFromRemote(remoteVariations)
			if err != nil {
				result.AddFailure(integration.PhaseProducts, itemID, "invalid_variation", err.Error())
				continue
			}
		}

		if err := s.products.UpsertByRemoteID(ctx, product, variations); err != nil {
			result.AddFailure(integration.PhaseProducts, itemID, "local_write", err.Error())
			continue
		}
		result.Pulled++
	}

	s.logResult(ctx, "products", result.Finish(s.now()))
	return result, nil
}

// PullCategories upserts every remote category by remote id, then links
// parents once all of them exist locally
func (s *CatalogSyncService) PullCategories(ctx context.Context) (*integration.SyncResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	result := integration.NewSyncResult(s.now())
	result.Phases = append(result.Phases, integration.PhaseCategories)

	remotes, err := s.gateway.Categories().ListAll(ctx, integration.ListOptions{PerPage: integration.DefaultPageSize})
	if err != nil {
		result.Fail(err)
		s.logResult(ctx, "categories", result.Finish(s.now()))
		return result, nil
	}

	local := make(map[int64]uuid.UUID, len(remotes))
	for _, rc := range remotes {
		category := categoryFromRemote(rc)
		if err := s.categories.UpsertByRemoteID(ctx, category); err != nil {
			result.AddFailure(integration.PhaseCategories, fmt.Sprintf("%d", rc.ID), "local_write", err.Error())
			continue
		}
		local[rc.ID] = category.ID
		result.Pulled++
	}

	for _, rc := range remotes {
		id, ok := local[rc.ID]
		if !ok || rc.Parent == 0 {
			continue
		}
		parentID, ok := local[rc.Parent]
		if !ok {
			parent, err := s.categories.FindByRemoteID(ctx, rc.Parent)
			if err != nil {
				result.AddFailure(integration.PhaseCategories, fmt.Sprintf("%d", rc.ID), "parent_missing", err.Error())
				continue
			}
			parentID = parent.ID
		}
		if err := s.categories.Update(ctx, id, map[string]any{"parent_id": parentID}); err != nil {
			result.AddFailure(integration.PhaseCategories, fmt.Sprintf("%d", rc.ID), "local_write", err.Error())
		}
	}

	s.logResult(ctx, "categories", result.Finish(s.now()))
	return result, nil
}

// UploadMedia forwards a file to the remote media library
func (s *CatalogSyncService) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader) (*MediaResponse, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filename) == "" {
		return nil, shared.NewValidationError("file", "file name is required")
	}
	media, err := s.gateway.UploadMedia(ctx, filename, contentType, body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Media uploaded",
		zap.Int64("media_id", media.ID),
		zap.String("filename", filename))
	return &MediaResponse{
		ID:        media.ID,
		SourceURL: media.SourceURL,
		MimeType:  media.MimeType,
		Title:     media.Title.Rendered,
	}, nil
}

// ---------------------------------------------------------------------------
// Push phases
// ---------------------------------------------------------------------------

func (s *CatalogSyncService) pushAttributes(ctx context.Context, result *integration.SyncResult) error {
	result.Phases = append(result.Phases, integration.PhaseAttributes)

	rows, err := s.attributes.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load local attributes: %w", err)
	}
	locals := make([]*catalog.Attribute, len(rows))
	for i := range rows {
		locals[i] = &rows[i]
	}

	err = pushCollection(ctx, pushPlan[*catalog.Attribute, integration.RemoteAttribute]{
		phase:    integration.PhaseAttributes,
		resource: s.gateway.Attributes(),
		locals:   locals,
		prune:    s.options.PruneRemote,
		now:      s.now,
		label:    func(a *catalog.Attribute) string { return a.ID.String() },
		encode: func(a *catalog.Attribute, id int64) integration.RemoteAttribute {
			return integration.RemoteAttribute{
				ID:          id,
				Name:        a.Name,
				Slug:        a.Slug,
				Type:        a.Type,
				OrderBy:     a.OrderBy,
				HasArchives: a.HasArchives,
			}
		},
		save: s.attributes.MarkSynced,
		adopt: func(ctx context.Context, r integration.RemoteAttribute) error {
			attr, err := catalog.NewAttribute(r.Name)
			if err != nil {
				return err
			}
			if r.Slug != "" {
				attr.Slug = r.Slug
			}
			if r.Type != "" {
				attr.Type = r.Type
			}
			if r.OrderBy != "" {
				attr.OrderBy = r.OrderBy
			}
			attr.HasArchives = r.HasArchives
			attr.MarkSynced(r.ID, s.now())
			if err := s.attributes.Create(ctx, attr); err != nil {
				return err
			}
			locals = append(locals, attr)
			return nil
		},
	}, result)
	if err != nil {
		return err
	}

	result.Phases = append(result.Phases, integration.PhaseTerms)
	for _, attr := range locals {
		if attr.RemoteID == nil {
			continue
		}
		if err := s.pushTerms(ctx, attr, result); err != nil {
			// a failed term batch does not invalidate the attribute itself
			result.AddFailure(integration.PhaseTerms, attr.ID.String(), "terms_failed", err.Error())
		}
	}
	return nil
}

func (s *CatalogSyncService) pushTerms(ctx context.Context, attr *catalog.Attribute, result *integration.SyncResult) error {
	rows, err := s.terms.ListByAttribute(ctx, attr.ID)
	if err != nil {
		return fmt.Errorf("load local terms: %w", err)
	}
	locals := make([]*catalog.Term, len(rows))
	for i := range rows {
		locals[i] = &rows[i]
	}

	return pushCollection(ctx, pushPlan[*catalog.Term, integration.RemoteTerm]{
		phase:    integration.PhaseTerms,
		resource: s.gateway.Terms(*attr.RemoteID),
		locals:   locals,
		prune:    s.options.PruneRemote,
		now:      s.now,
		label:    func(t *catalog.Term) string { return t.ID.String() },
		encode: func(t *catalog.Term, id int64) integration.RemoteTerm {
			return integration.RemoteTerm{
				ID:          id,
				Name:        t.Name,
				Slug:        t.Slug,
				Description: t.Description,
				MenuOrder:   t.MenuOrder,
			}
		},
		save: s.terms.MarkSynced,
		adopt: func(ctx context.Context, r integration.RemoteTerm) error {
			term, err := catalog.NewTerm(attr.ID, r.Name)
			if err != nil {
				return err
			}
			if r.Slug != "" {
				term.Slug = r.Slug
			}
			term.Description = r.Description
			term.MenuOrder = r.MenuOrder
			term.MarkSynced(r.ID, s.now())
			return s.terms.Create(ctx, term)
		},
	}, result)
}

func (s *CatalogSyncService) pushTags(ctx context.Context, result *integration.SyncResult) error {
	result.Phases = append(result.Phases, integration.PhaseTags)

	rows, err := s.tags.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load local tags: %w", err)
	}
	locals := make([]*catalog.Tag, len(rows))
	for i := range rows {
		locals[i] = &rows[i]
	}

	return pushCollection(ctx, pushPlan[*catalog.Tag, integration.RemoteTag]{
		phase:    integration.PhaseTags,
		resource: s.gateway.Tags(),
		locals:   locals,
		prune:    s.options.PruneRemote,
		now:      s.now,
		label:    func(t *catalog.Tag) string { return t.ID.String() },
		encode: func(t *catalog.Tag, id int64) integration.RemoteTag {
			return integration.RemoteTag{
				ID:          id,
				Name:        t.Name,
				Slug:        t.Slug,
				Description: t.Description,
			}
		},
		save: s.tags.MarkSynced,
		adopt: func(ctx context.Context, r integration.RemoteTag) error {
			tag, err := catalog.NewTag(r.Name, r.Description)
			if err != nil {
				return err
			}
			if r.Slug != "" {
				tag.Slug = r.Slug
			}
			tag.Count = r.Count
			tag.MarkSynced(r.ID, s.now())
			return s.tags.Create(ctx, tag)
		},
	}, result)
}

// pushPlan describes how one local collection maps onto its remote collection
type pushPlan[L catalog.Syncable, R integration.RemoteRecord] struct {
	phase    integration.SyncPhase
	resource integration.Resource[R]
	locals   []L
	prune    bool
	now      func() time.Time
	label    func(L) string
	// encode builds the wire record; id is 0 for creations
	encode func(local L, id int64) R
	save   func(ctx context.Context, local L) error
	adopt  func(ctx context.Context, remote R) error
}

// pushCollection diffs the local and remote collections by remote id and
// submits one batch. Local rows without a live remote counterpart are
// created, the others updated. Remote-only rows are deleted when pruning,
// adopted locally otherwise. Per-item errors land in result; the returned
// error is reserved for failures of the whole phase.
func pushCollection[L catalog.Syncable, R integration.RemoteRecord](ctx context.Context, p pushPlan[L, R], result *integration.SyncResult) error {
	remotes, err := p.resource.ListAll(ctx, integration.ListOptions{PerPage: integration.DefaultPageSize})
	if err != nil {
		return err
	}
	remoteIDs := make(map[int64]struct{}, len(remotes))
	for _, r := range remotes {
		remoteIDs[r.RemoteID()] = struct{}{}
	}

	var (
		req      integration.BatchRequest[R]
		created  []L
		updated  []L
		localIDs = make(map[int64]struct{}, len(p.locals))
	)
	for _, l := range p.locals {
		rid := l.GetRemoteID()
		if rid != nil {
			if _, ok := remoteIDs[*rid]; ok {
				localIDs[*rid] = struct{}{}
				req.Update = append(req.Update, p.encode(l, *rid))
				updated = append(updated, l)
				continue
			}
		}
		req.Create = append(req.Create, p.encode(l, 0))
		created = append(created, l)
	}

	var orphans []R
	for _, r := range remotes {
		if _, ok := localIDs[r.RemoteID()]; ok {
			continue
		}
		if p.prune {
			req.Delete = append(req.Delete, r.RemoteID())
		} else {
			orphans = append(orphans, r)
		}
	}

	for _, r := range orphans {
		if err := p.adopt(ctx, r); err != nil {
			result.AddFailure(p.phase, fmt.Sprintf("%d", r.RemoteID()), "local_write", err.Error())
			continue
		}
		result.Pulled++
	}

	if req.Len() == 0 {
		return nil
	}

	resp, batchErr := p.resource.Batch(ctx, req)
	if resp != nil {
		now := p.now()
		settle := func(items []R, locals []L, counter *int) {
			for i, item := range items {
				if i >= len(locals) {
					break
				}
				l := locals[i]
				if ie := item.ItemError(); ie != nil {
					result.AddFailure(p.phase, p.label(l), ie.Code, ie.Message)
					continue
				}
				l.MarkSynced(item.RemoteID(), now)
				if err := p.save(ctx, l); err != nil {
					result.AddFailure(p.phase, p.label(l), "local_write", err.Error())
					continue
				}
				*counter++
			}
		}
		settle(resp.Create, created, &result.Created)
		settle(resp.Update, updated, &result.Updated)
		for i, item := range resp.Delete {
			if ie := item.ItemError(); ie != nil {
				itemID := fmt.Sprintf("%d", item.RemoteID())
				if i < len(req.Delete) {
					itemID = fmt.Sprintf("%d", req.Delete[i])
				}
				result.AddFailure(p.phase, itemID, ie.Code, ie.Message)
				continue
			}
			result.Deleted++
		}
	}
	return batchErr
}

// ---------------------------------------------------------------------------
// Pull conversion
// ---------------------------------------------------------------------------

func (s *CatalogSyncService) productFromRemote(rp integration.RemoteProduct) (*catalog.Product, error) {
	regular, err := parseRemotePrice(rp.RegularPrice)
	if err != nil {
		return nil, fmt.Errorf("regular_price: %w", err)
	}
	sale, err := parseRemotePrice(rp.SalePrice)
	if err != nil {
		return nil, fmt.Errorf("sale_price: %w", err)
	}

	remoteID := rp.ID
	syncedAt := s.now()
	product := &catalog.Product{
		BaseEntity:   shared.NewBaseEntity(),
		RemoteID:     &remoteID,
		Name:         strings.TrimSpace(rp.Name),
		Slug:         rp.Slug,
		SKU:          rp.SKU,
		Type:         catalog.ProductType(rp.Type),
		Status:       catalog.ProductStatus(rp.Status),
		Description:  rp.Description,
		RegularPrice: regular,
		SalePrice:    sale,
		ManageStock:  rp.ManageStock,
		SyncedAt:     &syncedAt,
	}
	if product.Name == "" {
		return nil, errors.New("product has no name")
	}
	if product.Slug == "" {
		product.Slug = catalog.Slugify(product.Name)
	}
	if product.Type != catalog.ProductTypeVariable {
		product.Type = catalog.ProductTypeSimple
	}
	if !product.Status.IsValid() {
		product.Status = catalog.ProductStatusDraft
	}
	if rp.StockQuantity != nil {
		product.StockQuantity = *rp.StockQuantity
	}
	if len(rp.Images) > 0 {
		product.Image = rp.Images[0].Src
	}
	for _, c := range rp.Categories {
		product.CategoryIDs = append(product.CategoryIDs, c.ID)
	}
	for _, t := range rp.Tags {
		product.TagIDs = append(product.TagIDs, t.ID)
	}
	return product, nil
}

func variationsFromRemote(remotes []integration.RemoteVariation) ([]catalog.Variation, error) {
	variations := make([]catalog.Variation, 0, len(remotes))
	for _, rv := range remotes {
		regular, err := parseRemotePrice(rv.RegularPrice)
		if err != nil {
			return nil, fmt.Errorf("variation %d regular_price: %w", rv.ID, err)
		}
		sale, err := parseRemotePrice(rv.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("variation %d sale_price: %w", rv.ID, err)
		}
		remoteID := rv.ID
		v := catalog.Variation{
			BaseEntity:   shared.NewBaseEntity(),
			RemoteID:     &remoteID,
			SKU:          rv.SKU,
			RegularPrice: regular,
			SalePrice:    sale,
			ManageStock:  rv.ManageStock,
		}
		if rv.StockQuantity != nil {
			v.StockQuantity = *rv.StockQuantity
		}
		if rv.Image != nil {
			v.Image = rv.Image.Src
		}
		for _, a := range rv.Attributes {
			v.Attributes = append(v.Attributes, catalog.VariationAttribute{
				RemoteAttributeID: a.ID,
				Name:              a.Name,
				Option:            a.Option,
			})
		}
		variations = append(variations, v)
	}
	return variations, nil
}

func categoryFromRemote(rc integration.RemoteCategory) *catalog.Category {
	remoteID := rc.ID
	category := &catalog.Category{
		BaseEntity:  shared.NewBaseEntity(),
		RemoteID:    &remoteID,
		Name:        strings.TrimSpace(rc.Name),
		Slug:        rc.Slug,
		Description: rc.Description,
		Count:       rc.Count,
	}
	if category.Slug == "" {
		category.Slug = catalog.Slugify(category.Name)
	}
	if rc.Parent != 0 {
		parent := rc.Parent
		category.RemoteParentID = &parent
	}
	if rc.Image != nil {
		category.Image = rc.Image.Src
	}
	return category
}

// parseRemotePrice reads a remote decimal string; empty means no price
func parseRemotePrice(s string) (valueobject.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return valueobject.Zero(), nil
	}
	return valueobject.ParseMoney(s)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *CatalogSyncService) ready() error {
	if s.gateway == nil {
		return shared.NewPreconditionError("remote catalog is not configured")
	}
	return nil
}

func (s *CatalogSyncService) logResult(ctx context.Context, scope string, result *integration.SyncResult) {
	if s.recorder != nil {
		s.recorder.RecordSync(ctx, scope, result)
	}
	fields := []zap.Field{
		zap.String("scope", scope),
		zap.String("status", string(result.Status)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
		zap.Int("pulled", result.Pulled),
		zap.Int("failed", result.FailedCount),
		zap.Duration("duration", result.SyncedAt.Sub(result.StartedAt)),
	}
	if result.Status == integration.SyncStatusFailed {
		s.logger.Error("Catalog sync failed", append(fields, zap.String("error", result.Error))...)
		return
	}
	s.logger.Info("Catalog sync finished", fields...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
