// Package store is the document-store boundary. The core depends on
// these interfaces only; the Mongo implementation lives in mongo.go and
// an in-memory implementation used by tests in memory.go.
//
// Contract highlights (what the core relies on):
//   - ReserveUnit and ReleaseUnit are single conditional atomic updates
//     (decrement-if-positive, increment-if-below-total), never
//     read-modify-write pairs.
//   - Mark* request/assignment transitions are compare-and-set on the
//     current status, so a request can be approved exactly once.
//   - ClaimSeat is a guarded atomic increment against the seat limit.
//   - GrantAffiliation is idempotent: re-granting never duplicates.
//   - All identity lookups take pre-normalized (lowercased) emails.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/models"
)

// AssetFilter narrows an asset listing. Zero values mean "no filter".
type AssetFilter struct {
	HREmail       string
	NameSubstring string // case-insensitive
	Kind          string
	OnlyAvailable bool
	SortByRecency bool
}

// RequestFilter narrows an HR's request inbox.
type RequestFilter struct {
	Status string
	Search string // case-insensitive match on employee or asset name
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name        *string
	Image       *string
	BirthDate   *string
	CompanyName *string
	CompanyLogo *string
}

type AssetStore interface {
	Insert(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error)
	Find(ctx context.Context, filter AssetFilter) ([]models.Asset, error)

	// UpdateInfo sets name/image on an asset owned by hrEmail.
	UpdateInfo(ctx context.Context, id primitive.ObjectID, hrEmail, name, image string) error

	// AdjustQuantity shifts productQuantity and availableQuantity by
	// the same delta in one atomic update, refused when either counter
	// would go negative.
	AdjustQuantity(ctx context.Context, id primitive.ObjectID, hrEmail string, delta int) error

	Delete(ctx context.Context, id primitive.ObjectID, hrEmail string) error

	// ReserveUnit decrements availableQuantity iff it is positive.
	ReserveUnit(ctx context.Context, id primitive.ObjectID) error

	// ReleaseUnit increments availableQuantity, clamped at
	// productQuantity so a double return cannot overflow the total.
	ReleaseUnit(ctx context.Context, id primitive.ObjectID) error
}

type AccountStore interface {
	Insert(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) error

	// ClaimSeat increments the HR's currentEmployees iff it is below
	// packageLimit.
	ClaimSeat(ctx context.Context, hrEmail string) error

	// ReleaseSeat decrements currentEmployees iff it is positive. Used
	// to refund a claim when a concurrent approval already granted the
	// affiliation.
	ReleaseSeat(ctx context.Context, hrEmail string) error

	// GrantAffiliation appends the affiliation to the employee unless
	// an entry for the same hrEmail already exists; the bool reports
	// whether this call inserted it.
	GrantAffiliation(ctx context.Context, employeeEmail string, aff models.Affiliation) (bool, error)

	// ListAffiliatedTo returns the employees holding an affiliation to
	// the given HR.
	ListAffiliatedTo(ctx context.Context, hrEmail string) ([]models.Account, error)
}

type RequestStore interface {
	Insert(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	ListByEmployee(ctx context.Context, email string) ([]models.Request, error)
	ListByHR(ctx context.Context, hrEmail string, filter RequestFilter) ([]models.Request, error)

	// MarkApproved is a compare-and-set from pending to approved.
	MarkApproved(ctx context.Context, id primitive.ObjectID, processedBy string, at time.Time) error
	// MarkRejected is a compare-and-set from pending to rejected.
	MarkRejected(ctx context.Context, id primitive.ObjectID, processedBy string, at time.Time) error
	// MarkReturned is a compare-and-set from approved to returned.
	MarkReturned(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type AssignmentStore interface {
	Insert(ctx context.Context, a *models.Assignment) error
	FindByRequestID(ctx context.Context, requestID primitive.ObjectID) (*models.Assignment, error)
	ListByHR(ctx context.Context, hrEmail string) ([]models.Assignment, error)

	// MarkReturned is a compare-and-set from assigned to returned.
	MarkReturned(ctx context.Context, id primitive.ObjectID, at time.Time) error

	CountActiveByAsset(ctx context.Context, assetID primitive.ObjectID) (int64, error)
}
