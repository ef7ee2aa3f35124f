package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/apperr"
	"assethub/models"
)

// NewMemoryStores builds map-backed stores honoring the same atomicity
// contract as the Mongo implementation: every conditional update runs
// under one lock, so reserve/claim/transition races resolve to exactly
// one winner. Used by the test suite.
func NewMemoryStores() *Stores {
	m := &memory{
		assets:      map[primitive.ObjectID]*models.Asset{},
		accounts:    map[string]*models.Account{},
		requests:    map[primitive.ObjectID]*models.Request{},
		assignments: map[primitive.ObjectID]*models.Assignment{},
	}
	return &Stores{
		Assets:      (*memAssetStore)(m),
		Accounts:    (*memAccountStore)(m),
		Requests:    (*memRequestStore)(m),
		Assignments: (*memAssignmentStore)(m),
	}
}

type memory struct {
	mu          sync.Mutex
	assets      map[primitive.ObjectID]*models.Asset
	accounts    map[string]*models.Account // keyed by normalized email
	requests    map[primitive.ObjectID]*models.Request
	assignments map[primitive.ObjectID]*models.Assignment
}

type memAssetStore memory

func (s *memAssetStore) Insert(_ context.Context, asset *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset.ID.IsZero() {
		asset.ID = primitive.NewObjectID()
	}
	cp := *asset
	s.assets[asset.ID] = &cp
	return nil
}

func (s *memAssetStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *asset
	return &cp, nil
}

func (s *memAssetStore) Find(_ context.Context, filter AssetFilter) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Asset
	for _, asset := range s.assets {
		if filter.HREmail != "" && asset.HREmail != filter.HREmail {
			continue
		}
		if filter.NameSubstring != "" &&
			!strings.Contains(strings.ToLower(asset.Name), strings.ToLower(filter.NameSubstring)) {
			continue
		}
		if filter.Kind != "" && asset.Kind != filter.Kind {
			continue
		}
		if filter.OnlyAvailable && asset.AvailableQuantity <= 0 {
			continue
		}
		out = append(out, *asset)
	}
	if filter.SortByRecency {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if out == nil {
		out = []models.Asset{}
	}
	return out, nil
}

func (s *memAssetStore) UpdateInfo(_ context.Context, id primitive.ObjectID, hrEmail, name, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if asset.HREmail != hrEmail {
		return apperr.ErrForbidden
	}
	if name != "" {
		asset.Name = name
	}
	if image != "" {
		asset.Image = image
	}
	return nil
}

func (s *memAssetStore) AdjustQuantity(_ context.Context, id primitive.ObjectID, hrEmail string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if asset.HREmail != hrEmail {
		return apperr.ErrForbidden
	}
	if asset.ProductQuantity+delta < 0 || asset.AvailableQuantity+delta < 0 {
		return apperr.ErrValidation
	}
	asset.ProductQuantity += delta
	asset.AvailableQuantity += delta
	return nil
}

func (s *memAssetStore) Delete(_ context.Context, id primitive.ObjectID, hrEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if asset.HREmail != hrEmail {
		return apperr.ErrForbidden
	}
	delete(s.assets, id)
	return nil
}

func (s *memAssetStore) ReserveUnit(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if asset.AvailableQuantity <= 0 {
		return apperr.ErrInventoryExhausted
	}
	asset.AvailableQuantity--
	return nil
}

func (s *memAssetStore) ReleaseUnit(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if asset.AvailableQuantity < asset.ProductQuantity {
		asset.AvailableQuantity++
	}
	return nil
}

type memAccountStore memory

func (s *memAccountStore) Insert(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Email]; exists {
		return apperr.ErrConflict
	}
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	cp := *account
	s.accounts[account.Email] = &cp
	return nil
}

func (s *memAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *account
	cp.Affiliations = append([]models.Affiliation(nil), account.Affiliations...)
	return &cp, nil
}

func (s *memAccountStore) UpdateProfile(_ context.Context, email string, upd ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[email]
	if !ok {
		return apperr.ErrNotFound
	}
	if upd.Name != nil {
		account.Name = *upd.Name
	}
	if upd.Image != nil {
		account.Image = *upd.Image
	}
	if upd.BirthDate != nil {
		account.BirthDate = *upd.BirthDate
	}
	if upd.CompanyName != nil {
		account.CompanyName = *upd.CompanyName
	}
	if upd.CompanyLogo != nil {
		account.CompanyLogo = *upd.CompanyLogo
	}
	return nil
}

func (s *memAccountStore) ClaimSeat(_ context.Context, hrEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[hrEmail]
	if !ok {
		return apperr.ErrNotFound
	}
	if account.Role != models.RoleHR || account.CurrentEmployees >= account.PackageLimit {
		return apperr.ErrCapacityExceeded
	}
	account.CurrentEmployees++
	return nil
}

func (s *memAccountStore) ReleaseSeat(_ context.Context, hrEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[hrEmail]
	if !ok {
		return apperr.ErrNotFound
	}
	if account.CurrentEmployees > 0 {
		account.CurrentEmployees--
	}
	return nil
}

func (s *memAccountStore) GrantAffiliation(_ context.Context, employeeEmail string, aff models.Affiliation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[employeeEmail]
	if !ok {
		return false, apperr.ErrNotFound
	}
	for _, existing := range account.Affiliations {
		if existing.HREmail == aff.HREmail {
			return false, nil
		}
	}
	account.Affiliations = append(account.Affiliations, aff)
	return true, nil
}

func (s *memAccountStore) ListAffiliatedTo(_ context.Context, hrEmail string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Account{}
	for _, account := range s.accounts {
		for _, aff := range account.Affiliations {
			if aff.HREmail == hrEmail {
				out = append(out, *account)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memRequestStore memory

func (s *memRequestStore) Insert(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *memRequestStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *memRequestStore) ListByEmployee(_ context.Context, email string) ([]models.Request, error) {
	return s.list(func(r *models.Request) bool { return r.EmployeeEmail == email })
}

func (s *memRequestStore) ListByHR(_ context.Context, hrEmail string, filter RequestFilter) ([]models.Request, error) {
	search := strings.ToLower(filter.Search)
	return s.list(func(r *models.Request) bool {
		if r.HREmail != hrEmail {
			return false
		}
		if filter.Status != "" && r.Status != filter.Status {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.EmployeeName), search) &&
			!strings.Contains(strings.ToLower(r.AssetName), search) {
			return false
		}
		return true
	})
}

func (s *memRequestStore) list(match func(*models.Request) bool) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Request{}
	for _, req := range s.requests {
		if match(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

func (s *memRequestStore) MarkApproved(_ context.Context, id primitive.ObjectID, processedBy string, at time.Time) error {
	return s.transition(id, models.StatusPending, func(r *models.Request) {
		r.Status = models.StatusApproved
		r.ApprovalDate = &at
		r.ProcessedBy = processedBy
	})
}

func (s *memRequestStore) MarkRejected(_ context.Context, id primitive.ObjectID, processedBy string, at time.Time) error {
	return s.transition(id, models.StatusPending, func(r *models.Request) {
		r.Status = models.StatusRejected
		r.ApprovalDate = &at
		r.ProcessedBy = processedBy
	})
}

func (s *memRequestStore) MarkReturned(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return s.transition(id, models.StatusApproved, func(r *models.Request) {
		r.Status = models.StatusReturned
		r.ReturnDate = &at
	})
}

func (s *memRequestStore) transition(id primitive.ObjectID, from string, apply func(*models.Request)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if req.Status != from {
		return apperr.ErrInvalidTransition
	}
	apply(req)
	return nil
}

type memAssignmentStore memory

func (s *memAssignmentStore) Insert(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	s.assignments[a.ID] = &cp
	return nil
}

func (s *memAssignmentStore) FindByRequestID(_ context.Context, requestID primitive.ObjectID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.RequestID == requestID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *memAssignmentStore) ListByHR(_ context.Context, hrEmail string) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range s.assignments {
		if a.HREmail == hrEmail {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (s *memAssignmentStore) MarkReturned(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if a.Status != models.AssignmentActive {
		return apperr.ErrInvalidTransition
	}
	a.Status = models.AssignmentReturned
	a.ReturnedAt = &at
	return nil
}

func (s *memAssignmentStore) CountActiveByAsset(_ context.Context, assetID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.assignments {
		if a.AssetID == assetID && a.Status == models.AssignmentActive {
			count++
		}
	}
	return count, nil
}
