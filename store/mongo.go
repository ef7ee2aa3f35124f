package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores bundles the Mongo-backed store implementations built from one
// database handle. Constructed once in main and injected from there.
type Stores struct {
	Assets      AssetStore
	Accounts    AccountStore
	Requests    RequestStore
	Assignments AssignmentStore
}

func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Assets:      &mongoAssetStore{col: db.Collection("assets")},
		Accounts:    &mongoAccountStore{col: db.Collection("accounts")},
		Requests:    &mongoRequestStore{col: db.Collection("requests")},
		Assignments: &mongoAssignmentStore{col: db.Collection("assignments")},
	}
}
