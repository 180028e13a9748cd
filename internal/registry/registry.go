// Package registry owns lost and found item reports.
package registry

import (
	"context"
	"database/sql"
	"iter"
	"log/slog"
	"strings"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// DefaultPageSize is the page size Seq uses when the filter sets no limit.
const DefaultPageSize = 50

// Authorizer answers whether an identity currently holds the admin role.
type Authorizer interface {
	IsAdmin(ctx context.Context, id *model.Identity) (bool, error)
}

// Registry creates, lists and retires item reports.
type Registry struct {
	DB     *sql.DB
	Roles  Authorizer
	Logger *slog.Logger
}

// New returns a registry backed by db.
func New(db *sql.DB, roles Authorizer, logger *slog.Logger) *Registry {
	return &Registry{DB: db, Roles: roles, Logger: logger}
}

func validateDraft(d *model.ItemDraft) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Location = strings.TrimSpace(d.Location)

	if err := model.Validator().Struct(d); err != nil {
		return apperr.Validation(model.DescribeValidation(err))
	}
	switch {
	case d.Reward != nil && d.Commission != nil:
		return apperr.Validation("an item has either a reward or a commission, not both")
	case d.Kind == model.ItemKindFound && d.Reward != nil:
		return apperr.Validation("reward applies to lost items only")
	case d.Kind == model.ItemKindLost && d.Commission != nil:
		return apperr.Validation("commission applies to found items only")
	}
	return nil
}

func contactPhone(d model.ItemDraft, owner *model.Identity) string {
	if d.ContactPhone != "" {
		return model.NormalizePhone(d.ContactPhone)
	}
	return owner.Phone
}

// Create validates a draft and stores it as an active item owned by owner.
func (r *Registry) Create(ctx context.Context, d model.ItemDraft, owner *model.Identity) (*model.Item, error) {
	if owner == nil {
		return nil, apperr.Unauthorized("sign in to report an item")
	}
	if err := validateDraft(&d); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, r.DB, &model.Item{
		Kind:          d.Kind,
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		Location:      d.Location,
		EventDate:     d.EventDate,
		PhotoRef:      d.PhotoRef,
		ReporterID:    owner.UserID,
		ReporterName:  owner.Name,
		ReporterPhone: contactPhone(d, owner),
		Reward:        d.Reward,
		Commission:    d.Commission,
	})
	if err != nil {
		return nil, apperr.External("storing item", err)
	}

	r.Logger.Info("item reported", "item_id", item.ID, "kind", item.Kind, "reporter_id", owner.UserID)
	return item, nil
}

// Get returns a listed item. Deleted items are not found.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.DeletedAt != nil {
		return nil, apperr.NotFound("item not found")
	}
	return item, nil
}

// lookup returns an item even when it has been deleted.
func (r *Registry) lookup(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, r.DB, id)
	if err != nil {
		return nil, apperr.External("loading item", err)
	}
	if item == nil {
		return nil, apperr.NotFound("item not found")
	}
	return item, nil
}

// List returns items matching the filter, most recent first.
func (r *Registry) List(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	items, err := store.ListItems(ctx, r.DB, f)
	if err != nil {
		return nil, apperr.External("listing items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Seq yields every item matching the filter, fetching one page at a time.
// Each range over the sequence queries the store afresh. f.Limit sets the
// page size and f.Offset the starting position.
func (r *Registry) Seq(ctx context.Context, f model.ItemFilter) iter.Seq2[model.Item, error] {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	return func(yield func(model.Item, error) bool) {
		page := f
		for {
			items, err := store.ListItems(ctx, r.DB, page)
			if err != nil {
				yield(model.Item{}, apperr.External("listing items", err))
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if len(items) < page.Limit {
				return
			}
			page.Offset += len(items)
		}
	}
}

func (r *Registry) authorizeOwner(ctx context.Context, item *model.Item, requestor *model.Identity) error {
	if requestor == nil {
		return apperr.Unauthorized("sign in required")
	}
	if item.ReporterID == requestor.UserID {
		return nil
	}
	admin, err := r.Roles.IsAdmin(ctx, requestor)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.Forbidden("only the reporter or an admin may change this item")
	}
	return nil
}

// Update replaces an active item's report fields. The kind cannot change.
func (r *Registry) Update(ctx context.Context, id int64, d model.ItemDraft, requestor *model.Identity) (*model.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.authorizeOwner(ctx, item, requestor); err != nil {
		return nil, err
	}

	if d.Kind == "" {
		d.Kind = item.Kind
	}
	if d.Kind != item.Kind {
		return nil, apperr.Validation("item kind cannot be changed")
	}
	if err := validateDraft(&d); err != nil {
		return nil, err
	}
	if item.Status != model.ItemStatusActive {
		return nil, apperr.InvalidState("only active items can be edited")
	}

	phone := item.ReporterPhone
	if d.ContactPhone != "" {
		phone = model.NormalizePhone(d.ContactPhone)
	}

	ok, err := store.UpdateItem(ctx, r.DB, id, d, phone)
	if err != nil {
		return nil, apperr.External("updating item", err)
	}
	if !ok {
		return nil, apperr.InvalidState("only active items can be edited")
	}

	r.Logger.Info("item updated", "item_id", id, "by", requestor.UserID)
	return r.Get(ctx, id)
}

// MarkTerminal retires the item referenced by an approved claim: lost items
// become returned and found items become verified. Calling it again for an
// item that is already terminal is a no-op.
func (r *Registry) MarkTerminal(ctx context.Context, itemID, causeClaimID int64) error {
	item, err := r.lookup(ctx, itemID)
	if err != nil {
		return err
	}
	if item.IsTerminal() {
		return nil
	}

	status := model.TerminalStatusFor(item.Kind)
	changed, err := store.MarkItemTerminal(ctx, r.DB, itemID, status)
	if err != nil {
		return apperr.External("marking item terminal", err)
	}
	if changed {
		r.Logger.Info("item closed", "item_id", itemID, "status", status, "claim_id", causeClaimID)
	}
	return nil
}

// SetPaymentStatus records whether a claim on the item has been paid.
func (r *Registry) SetPaymentStatus(ctx context.Context, itemID int64, status string) error {
	if status != model.ItemPaymentPaid && status != model.ItemPaymentUnpaid {
		return apperr.Validation("unknown payment status")
	}
	if err := store.SetItemPaymentStatus(ctx, r.DB, itemID, status); err != nil {
		return apperr.External("updating item payment status", err)
	}
	return nil
}

// Delete hides an item from listings. Claims keep resolving it.
func (r *Registry) Delete(ctx context.Context, id int64, requestor *model.Identity) error {
	item, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.authorizeOwner(ctx, item, requestor); err != nil {
		return err
	}
	if err := store.DeleteItem(ctx, r.DB, id); err != nil {
		return apperr.External("deleting item", err)
	}

	r.Logger.Info("item deleted", "item_id", id, "by", requestor.UserID)
	return nil
}
