// Package lifecycle drives a request through pending → approved →
// returned (returnable assets) or pending → rejected, keeping the
// inventory counters, affiliation records and seat counts consistent
// across those transitions.
package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/apperr"
	"assethub/inventory"
	"assethub/models"
	"assethub/store"
	"assethub/utils"
)

type Controller struct {
	ledger      *inventory.Ledger
	accounts    store.AccountStore
	requests    store.RequestStore
	assignments store.AssignmentStore
}

func NewController(ledger *inventory.Ledger, accounts store.AccountStore, requests store.RequestStore, assignments store.AssignmentStore) *Controller {
	return &Controller{
		ledger:      ledger,
		accounts:    accounts,
		requests:    requests,
		assignments: assignments,
	}
}

// Submit records a pending request. No unit is reserved here: approval
// is the sole gate, and it re-checks availability, so pending requests
// may outnumber available units.
func (c *Controller) Submit(ctx context.Context, employeeEmail string, assetID primitive.ObjectID, note string) (*models.Request, error) {
	employeeEmail = utils.NormalizeEmail(employeeEmail)

	employee, err := c.accounts.FindByEmail(ctx, employeeEmail)
	if err != nil {
		return nil, err
	}
	if employee.Role != models.RoleEmployee {
		return nil, apperr.ErrForbidden
	}

	asset, err := c.ledger.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}

	// Asset name/kind/owner are snapshotted so the request's history
	// survives later asset edits.
	req := &models.Request{
		AssetID:       asset.ID,
		AssetName:     asset.Name,
		AssetKind:     asset.Kind,
		EmployeeEmail: employee.Email,
		EmployeeName:  employee.Name,
		HREmail:       asset.HREmail,
		CompanyName:   asset.CompanyName,
		Note:          note,
		Status:        models.StatusPending,
		RequestDate:   time.Now().UTC(),
	}
	if err := c.requests.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve processes a pending request: it reserves a unit first (the
// irrevocable step), then applies the idempotent account-side effects,
// then flips the request status with a compare-and-set. Any failure
// after the reservation releases the unit so the count never stays
// decremented without a matching status change.
func (c *Controller) Approve(ctx context.Context, requestID primitive.ObjectID, actingHR string) (*models.Request, error) {
	actingHR = utils.NormalizeEmail(actingHR)

	req, err := c.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.HREmail != actingHR {
		return nil, apperr.ErrForbidden
	}
	if req.Status != models.StatusPending {
		return nil, apperr.ErrInvalidTransition
	}

	hr, err := c.accounts.FindByEmail(ctx, actingHR)
	if err != nil {
		return nil, err
	}
	employee, err := c.accounts.FindByEmail(ctx, req.EmployeeEmail)
	if err != nil {
		return nil, err
	}

	// First approval under this HR consumes a seat; later ones reuse
	// the existing affiliation. Precheck here, authoritative claim
	// below.
	affiliated := employee.HasAffiliation(hr.Email)
	if !affiliated && hr.CurrentEmployees >= hr.PackageLimit {
		return nil, apperr.ErrCapacityExceeded
	}

	if err := c.ledger.ReserveUnit(ctx, req.AssetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if !affiliated {
		if err := c.accounts.ClaimSeat(ctx, hr.Email); err != nil {
			c.compensateRelease(ctx, req.AssetID)
			return nil, err
		}
		aff := models.Affiliation{
			CompanyName: hr.CompanyName,
			HREmail:     hr.Email,
			JoinedAt:    now,
		}
		granted, err := c.accounts.GrantAffiliation(ctx, employee.Email, aff)
		if err != nil {
			c.refundSeat(ctx, hr.Email)
			c.compensateRelease(ctx, req.AssetID)
			return nil, err
		}
		if !granted {
			// A concurrent approval affiliated this employee between
			// our read and the claim; refund the extra seat.
			c.refundSeat(ctx, hr.Email)
		}
	}

	if err := c.requests.MarkApproved(ctx, requestID, hr.Email, now); err != nil {
		// A concurrent processor won the status race; give the unit
		// back. The affiliation, being idempotent, is left in place.
		c.compensateRelease(ctx, req.AssetID)
		return nil, err
	}

	assignment := &models.Assignment{
		RequestID:     req.ID,
		AssetID:       req.AssetID,
		AssetName:     req.AssetName,
		AssetKind:     req.AssetKind,
		EmployeeEmail: req.EmployeeEmail,
		EmployeeName:  req.EmployeeName,
		HREmail:       req.HREmail,
		CompanyName:   req.CompanyName,
		AssignedAt:    now,
		Status:        models.AssignmentActive,
	}
	if err := c.assignments.Insert(ctx, assignment); err != nil {
		// The approval already stands; the custody record is derivable
		// from the request, so log and report rather than unwind.
		log.Printf("approve %s: assignment insert failed: %v", requestID.Hex(), err)
		return nil, err
	}

	return c.requests.FindByID(ctx, requestID)
}

// Reject flips a pending request to rejected. No inventory or
// affiliation side effects.
func (c *Controller) Reject(ctx context.Context, requestID primitive.ObjectID, actingHR string) (*models.Request, error) {
	actingHR = utils.NormalizeEmail(actingHR)

	req, err := c.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.HREmail != actingHR {
		return nil, apperr.ErrForbidden
	}

	if err := c.requests.MarkRejected(ctx, requestID, actingHR, time.Now().UTC()); err != nil {
		return nil, err
	}
	return c.requests.FindByID(ctx, requestID)
}

// Return closes custody for an approved request of a returnable asset
// and puts the unit back into inventory. The status CAS goes first so
// only the actor who wins it restocks; if the release then fails, the
// request stays returned with the unit still counted out, mirroring
// the bounded window the approve path accepts after its status flip.
// The log line below carries the request id for reconciliation.
func (c *Controller) Return(ctx context.Context, requestID primitive.ObjectID, actor string) (*models.Request, error) {
	actor = utils.NormalizeEmail(actor)

	req, err := c.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.EmployeeEmail != actor && req.HREmail != actor {
		return nil, apperr.ErrForbidden
	}
	if req.AssetKind != models.KindReturnable {
		return nil, apperr.ErrNotReturnable
	}

	now := time.Now().UTC()
	if err := c.requests.MarkReturned(ctx, requestID, now); err != nil {
		return nil, err
	}

	if assignment, err := c.assignments.FindByRequestID(ctx, requestID); err == nil {
		if err := c.assignments.MarkReturned(ctx, assignment.ID, now); err != nil &&
			!errors.Is(err, apperr.ErrInvalidTransition) {
			log.Printf("return %s: assignment close failed: %v", requestID.Hex(), err)
		}
	}

	if err := c.ledger.ReleaseUnit(ctx, req.AssetID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		// The return already stands; surface the error so the operator
		// can restock the asset by hand rather than unwind the status.
		log.Printf("return %s: release of asset %s failed: %v", requestID.Hex(), req.AssetID.Hex(), err)
		return nil, err
	}

	return c.requests.FindByID(ctx, requestID)
}

// ListForEmployee returns the employee's requests, newest first.
func (c *Controller) ListForEmployee(ctx context.Context, email string) ([]models.Request, error) {
	return c.requests.ListByEmployee(ctx, utils.NormalizeEmail(email))
}

// ListForHR returns the HR inbox, newest first, with optional
// status/search narrowing.
func (c *Controller) ListForHR(ctx context.Context, hrEmail string, filter store.RequestFilter) ([]models.Request, error) {
	return c.requests.ListByHR(ctx, utils.NormalizeEmail(hrEmail), filter)
}

// Team returns the employees affiliated to the acting HR.
func (c *Controller) Team(ctx context.Context, hrEmail string) ([]models.Account, error) {
	return c.accounts.ListAffiliatedTo(ctx, utils.NormalizeEmail(hrEmail))
}

// DeleteAsset removes an asset after the active-assignment guard:
// deleting while units are out on assignment is refused as a conflict.
func (c *Controller) DeleteAsset(ctx context.Context, assetID primitive.ObjectID, hrEmail string) error {
	active, err := c.assignments.CountActiveByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperr.ErrConflict
	}
	return c.ledger.Delete(ctx, assetID, hrEmail)
}

func (c *Controller) refundSeat(ctx context.Context, hrEmail string) {
	if err := c.accounts.ReleaseSeat(ctx, hrEmail); err != nil {
		log.Printf("seat refund for %s failed: %v", hrEmail, err)
	}
}

func (c *Controller) compensateRelease(ctx context.Context, assetID primitive.ObjectID) {
	if err := c.ledger.ReleaseUnit(ctx, assetID); err != nil {
		log.Printf("compensating release for asset %s failed: %v", assetID.Hex(), err)
	}
}
