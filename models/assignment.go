package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AssignmentActive   = "assigned"
	AssignmentReturned = "returned"
)

// Assignment is the custody record created when a request is approved.
// It stays active until the asset is returned (returnable assets only).
type Assignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID     primitive.ObjectID `bson:"requestId" json:"requestId"`
	AssetID       primitive.ObjectID `bson:"assetId" json:"assetId"`
	AssetName     string             `bson:"assetName" json:"assetName"`
	AssetKind     string             `bson:"assetKind" json:"assetKind"`
	EmployeeEmail string             `bson:"employeeEmail" json:"employeeEmail"`
	EmployeeName  string             `bson:"employeeName" json:"employeeName"`
	HREmail       string             `bson:"hrEmail" json:"hrEmail"`
	CompanyName   string             `bson:"companyName" json:"companyName"`
	AssignedAt    time.Time          `bson:"assignedAt" json:"assignedAt"`
	ReturnedAt    *time.Time         `bson:"returnedAt,omitempty" json:"returnedAt,omitempty"`
	Status        string             `bson:"status" json:"status"` // assigned, returned
}
