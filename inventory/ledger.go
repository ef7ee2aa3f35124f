// Package inventory owns asset records and their available-unit
// counters. It is a leaf component: the lifecycle controller calls into
// it to reserve and release units, never the other way round.
package inventory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/apperr"
	"assethub/models"
	"assethub/store"
	"assethub/utils"
)

type Ledger struct {
	assets store.AssetStore
}

func NewLedger(assets store.AssetStore) *Ledger {
	return &Ledger{assets: assets}
}

// CreateInput carries the fields an HR supplies for a new asset.
type CreateInput struct {
	Name        string
	Image       string
	Kind        string
	Quantity    int
	HREmail     string
	CompanyName string
}

func (l *Ledger) Create(ctx context.Context, in CreateInput) (*models.Asset, error) {
	if in.Name == "" || !models.ValidKind(in.Kind) || in.Quantity < 0 {
		return nil, apperr.ErrValidation
	}

	asset := &models.Asset{
		Name:              in.Name,
		Image:             in.Image,
		Kind:              in.Kind,
		ProductQuantity:   in.Quantity,
		AvailableQuantity: in.Quantity,
		HREmail:           utils.NormalizeEmail(in.HREmail),
		CompanyName:       in.CompanyName,
		CreatedAt:         time.Now().UTC(),
	}
	if err := l.assets.Insert(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (l *Ledger) Get(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	return l.assets.FindByID(ctx, id)
}

func (l *Ledger) List(ctx context.Context, filter store.AssetFilter) ([]models.Asset, error) {
	filter.HREmail = utils.NormalizeEmail(filter.HREmail)
	return l.assets.Find(ctx, filter)
}

// UpdateInput carries an owner-scoped asset edit. Quantity, when set,
// is the new total; availableQuantity moves by the same delta.
type UpdateInput struct {
	Name     string
	Image    string
	Quantity *int
}

func (l *Ledger) Update(ctx context.Context, id primitive.ObjectID, hrEmail string, in UpdateInput) (*models.Asset, error) {
	hrEmail = utils.NormalizeEmail(hrEmail)

	if in.Name != "" || in.Image != "" {
		if err := l.assets.UpdateInfo(ctx, id, hrEmail, in.Name, in.Image); err != nil {
			return nil, err
		}
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, apperr.ErrValidation
		}
		current, err := l.assets.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if delta := *in.Quantity - current.ProductQuantity; delta != 0 {
			if err := l.assets.AdjustQuantity(ctx, id, hrEmail, delta); err != nil {
				return nil, err
			}
		}
	}
	return l.assets.FindByID(ctx, id)
}

// Delete removes an asset. The caller is responsible for the
// active-assignment guard; the ledger only enforces ownership.
func (l *Ledger) Delete(ctx context.Context, id primitive.ObjectID, hrEmail string) error {
	return l.assets.Delete(ctx, id, utils.NormalizeEmail(hrEmail))
}

// ReserveUnit takes one unit from the asset's available pool. Exactly
// one of two concurrent callers contending for the last unit succeeds.
func (l *Ledger) ReserveUnit(ctx context.Context, id primitive.ObjectID) error {
	return l.assets.ReserveUnit(ctx, id)
}

// ReleaseUnit puts one unit back, clamped at the asset's total.
func (l *Ledger) ReleaseUnit(ctx context.Context, id primitive.ObjectID) error {
	return l.assets.ReleaseUnit(ctx, id)
}
