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

type mongoAccountStore struct {
	col *mongo.Collection
}

func (s *mongoAccountStore) Insert(ctx context.Context, account *models.Account) error {
	res, err := s.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	account.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (s *mongoAccountStore) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) error {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.BirthDate != nil {
		set["birthDate"] = *upd.BirthDate
	}
	if upd.CompanyName != nil {
		set["companyName"] = *upd.CompanyName
	}
	if upd.CompanyLogo != nil {
		set["companyLogo"] = *upd.CompanyLogo
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *mongoAccountStore) ClaimSeat(ctx context.Context, hrEmail string) error {
	// Guarded increment: only matches while a seat remains, so two
	// concurrent first-time approvals cannot both claim the last seat.
	res, err := s.col.UpdateOne(ctx,
		bson.M{
			"email": hrEmail,
			"role":  models.RoleHR,
			"$expr": bson.M{"$lt": bson.A{"$currentEmployees", "$packageLimit"}},
		},
		bson.M{"$inc": bson.M{"currentEmployees": 1}})
	if err != nil {
		return fmt.Errorf("claim seat: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindByEmail(ctx, hrEmail); ferr != nil {
			return ferr
		}
		return apperr.ErrCapacityExceeded
	}
	return nil
}

func (s *mongoAccountStore) ReleaseSeat(ctx context.Context, hrEmail string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"email": hrEmail, "currentEmployees": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"currentEmployees": -1}})
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

func (s *mongoAccountStore) GrantAffiliation(ctx context.Context, employeeEmail string, aff models.Affiliation) (bool, error) {
	// The $ne guard makes re-granting a no-op rather than a duplicate.
	res, err := s.col.UpdateOne(ctx,
		bson.M{"email": employeeEmail, "affiliations.hrEmail": bson.M{"$ne": aff.HREmail}},
		bson.M{"$push": bson.M{"affiliations": aff}})
	if err != nil {
		return false, fmt.Errorf("grant affiliation: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindByEmail(ctx, employeeEmail); ferr != nil {
			return false, ferr
		}
		return false, nil
	}
	return true, nil
}

func (s *mongoAccountStore) ListAffiliatedTo(ctx context.Context, hrEmail string) ([]models.Account, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"affiliations.hrEmail": hrEmail},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find affiliated accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []models.Account
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}
