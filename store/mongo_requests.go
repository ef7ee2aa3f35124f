package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assethub/apperr"
	"assethub/models"
)

type mongoRequestStore struct {
	col *mongo.Collection
}

func (s *mongoRequestStore) Insert(ctx context.Context, req *models.Request) error {
	res, err := s.col.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoRequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var req models.Request
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

func (s *mongoRequestStore) ListByEmployee(ctx context.Context, email string) ([]models.Request, error) {
	return s.list(ctx, bson.M{"employeeEmail": email})
}

func (s *mongoRequestStore) ListByHR(ctx context.Context, hrEmail string, filter RequestFilter) ([]models.Request, error) {
	query := bson.M{"hrEmail": hrEmail}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		query["$or"] = []bson.M{
			{"employeeName": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"assetName": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	return s.list(ctx, query)
}

func (s *mongoRequestStore) list(ctx context.Context, query bson.M) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}})
	cursor, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

func (s *mongoRequestStore) MarkApproved(ctx context.Context, id primitive.ObjectID, processedBy string, at time.Time) error {
	return s.transition(ctx, id, models.StatusPending, bson.M{
		"status":       models.StatusApproved,
		"approvalDate": at,
		"processedBy":  processedBy,
	})
}

func (s *mongoRequestStore) MarkRejected(ctx context.Context, id primitive.ObjectID, processedBy string, at time.Time) error {
	return s.transition(ctx, id, models.StatusPending, bson.M{
		"status":       models.StatusRejected,
		"approvalDate": at,
		"processedBy":  processedBy,
	})
}

func (s *mongoRequestStore) MarkReturned(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return s.transition(ctx, id, models.StatusApproved, bson.M{
		"status":     models.StatusReturned,
		"returnDate": at,
	})
}

// transition is a compare-and-set on status; losing the race surfaces
// as InvalidTransition, a missing document as NotFound.
func (s *mongoRequestStore) transition(ctx context.Context, id primitive.ObjectID, from string, set bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return apperr.ErrInvalidTransition
	}
	return nil
}

type mongoAssignmentStore struct {
	col *mongo.Collection
}

func (s *mongoAssignmentStore) Insert(ctx context.Context, a *models.Assignment) error {
	res, err := s.col.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoAssignmentStore) FindByRequestID(ctx context.Context, requestID primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	err := s.col.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

func (s *mongoAssignmentStore) ListByHR(ctx context.Context, hrEmail string) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"hrEmail": hrEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("find assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var assignments []models.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

func (s *mongoAssignmentStore) MarkReturned(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.AssignmentActive},
		bson.M{"$set": bson.M{"status": models.AssignmentReturned, "returnedAt": at}})
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if res.MatchedCount == 0 {
		var a models.Assignment
		if ferr := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); ferr == mongo.ErrNoDocuments {
			return apperr.ErrNotFound
		} else if ferr != nil {
			return fmt.Errorf("find assignment: %w", ferr)
		}
		return apperr.ErrInvalidTransition
	}
	return nil
}

func (s *mongoAssignmentStore) CountActiveByAsset(ctx context.Context, assetID primitive.ObjectID) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"assetId": assetID, "status": models.AssignmentActive})
	if err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return count, nil
}
