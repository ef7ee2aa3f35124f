// models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses. pending is initial; rejected and returned are
// terminal, approved is terminal for non-returnable assets.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusReturned = "returned"
)

// Request is one employee's ask for a single unit of an asset. Asset
// name/kind are denormalized at submission so the history survives
// later asset edits.
type Request struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID       primitive.ObjectID `bson:"assetId" json:"assetId"`
	AssetName     string             `bson:"assetName" json:"assetName"`
	AssetKind     string             `bson:"assetKind" json:"assetKind"`
	EmployeeEmail string             `bson:"employeeEmail" json:"employeeEmail"`
	EmployeeName  string             `bson:"employeeName" json:"employeeName"`
	HREmail       string             `bson:"hrEmail" json:"hrEmail"`
	CompanyName   string             `bson:"companyName" json:"companyName"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	Status        string             `bson:"status" json:"status"`
	RequestDate   time.Time          `bson:"requestDate" json:"requestDate"`
	ApprovalDate  *time.Time         `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	ReturnDate    *time.Time         `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	ProcessedBy   string             `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
}
