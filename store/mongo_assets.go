package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assethub/apperr"
	"assethub/models"
)

type mongoAssetStore struct {
	col *mongo.Collection
}

func (s *mongoAssetStore) Insert(ctx context.Context, asset *models.Asset) error {
	res, err := s.col.InsertOne(ctx, asset)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	asset.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoAssetStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	var asset models.Asset
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return &asset, nil
}

func (s *mongoAssetStore) Find(ctx context.Context, filter AssetFilter) ([]models.Asset, error) {
	query := bson.M{}
	if filter.HREmail != "" {
		query["hrEmail"] = filter.HREmail
	}
	if filter.NameSubstring != "" {
		query["name"] = bson.M{"$regex": filter.NameSubstring, "$options": "i"}
	}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.OnlyAvailable {
		query["availableQuantity"] = bson.M{"$gt": 0}
	}

	opts := options.Find()
	if filter.SortByRecency {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find assets: %w", err)
	}
	defer cursor.Close(ctx)

	var assets []models.Asset
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (s *mongoAssetStore) UpdateInfo(ctx context.Context, id primitive.ObjectID, hrEmail, name, image string) error {
	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if image != "" {
		set["image"] = image
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "hrEmail": hrEmail}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.missingOrForbidden(ctx, id)
	}
	return nil
}

func (s *mongoAssetStore) AdjustQuantity(ctx context.Context, id primitive.ObjectID, hrEmail string, delta int) error {
	if delta == 0 {
		return nil
	}

	// Both counters move together; a negative delta is refused when it
	// would push either below zero.
	filter := bson.M{"_id": id, "hrEmail": hrEmail}
	if delta < 0 {
		filter["availableQuantity"] = bson.M{"$gte": -delta}
		filter["productQuantity"] = bson.M{"$gte": -delta}
	}

	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{
		"productQuantity":   delta,
		"availableQuantity": delta,
	}})
	if err != nil {
		return fmt.Errorf("adjust asset quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		asset, ferr := s.FindByID(ctx, id)
		if ferr != nil {
			return ferr
		}
		if asset.HREmail != hrEmail {
			return apperr.ErrForbidden
		}
		return apperr.ErrValidation
	}
	return nil
}

func (s *mongoAssetStore) Delete(ctx context.Context, id primitive.ObjectID, hrEmail string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "hrEmail": hrEmail})
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if res.DeletedCount == 0 {
		return s.missingOrForbidden(ctx, id)
	}
	return nil
}

func (s *mongoAssetStore) ReserveUnit(ctx context.Context, id primitive.ObjectID) error {
	// Decrement-if-positive as one conditional update; under contention
	// for the last unit exactly one caller matches.
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "availableQuantity": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"availableQuantity": -1}})
	if err != nil {
		return fmt.Errorf("reserve unit: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return apperr.ErrInventoryExhausted
	}
	return nil
}

func (s *mongoAssetStore) ReleaseUnit(ctx context.Context, id primitive.ObjectID) error {
	// Clamped at productQuantity so a stray double release is a no-op.
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "$expr": bson.M{"$lt": bson.A{"$availableQuantity", "$productQuantity"}}},
		bson.M{"$inc": bson.M{"availableQuantity": 1}})
	if err != nil {
		return fmt.Errorf("release unit: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindByID(ctx, id); ferr != nil {
			return ferr
		}
	}
	return nil
}

// missingOrForbidden tells a missing asset apart from one owned by a
// different HR after a scoped update matched nothing.
func (s *mongoAssetStore) missingOrForbidden(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return apperr.ErrForbidden
}
