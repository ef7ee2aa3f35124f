// models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset kinds. A returnable asset cycles back into inventory when the
// holder gives it up; a non-returnable one is consumed on approval.
const (
	KindReturnable    = "returnable"
	KindNonReturnable = "non-returnable"
)

type Asset struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Image             string             `bson:"image,omitempty" json:"image,omitempty"`
	Kind              string             `bson:"kind" json:"kind"` // returnable, non-returnable
	ProductQuantity   int                `bson:"productQuantity" json:"productQuantity"`
	AvailableQuantity int                `bson:"availableQuantity" json:"availableQuantity"`
	HREmail           string             `bson:"hrEmail" json:"hrEmail"`
	CompanyName       string             `bson:"companyName" json:"companyName"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

func ValidKind(kind string) bool {
	return kind == KindReturnable || kind == KindNonReturnable
}
