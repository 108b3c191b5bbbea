package services_test

import (
	"context"
	"testing"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AssignmentRepository ---
type MockAssignmentRepository struct {
	mock.Mock
	ReplaceAssignmentsFn        func(ctx context.Context, orderID string, assignments []domain.OrderAssignment) error
	ListAssignmentsByWorkerFn   func(ctx context.Context, workerID string) ([]domain.OrderAssignment, error)
	SetStarredFn                func(ctx context.Context, assignmentID, workerID string, starred bool) error
	UpsertMarkedDoneFn          func(ctx context.Context, orderID, workerID string, done bool) error
	DeleteAssignmentsByWorkerFn func(ctx context.Context, workerID, companyID string) error
}

func (m *MockAssignmentRepository) ReplaceAssignments(ctx context.Context, orderID string, assignments []domain.OrderAssignment) error {
	if m.ReplaceAssignmentsFn != nil {
		return m.ReplaceAssignmentsFn(ctx, orderID, assignments)
	}
	args := m.Called(ctx, orderID, assignments)
	return args.Error(0)
}

func (m *MockAssignmentRepository) ListAssignmentsByWorker(ctx context.Context, workerID string) ([]domain.OrderAssignment, error) {
	if m.ListAssignmentsByWorkerFn != nil {
		return m.ListAssignmentsByWorkerFn(ctx, workerID)
	}
	args := m.Called(ctx, workerID)
	var assignments []domain.OrderAssignment
	if args.Get(0) != nil {
		assignments = args.Get(0).([]domain.OrderAssignment)
	}
	return assignments, args.Error(1)
}

func (m *MockAssignmentRepository) SetStarred(ctx context.Context, assignmentID, workerID string, starred bool) error {
	if m.SetStarredFn != nil {
		return m.SetStarredFn(ctx, assignmentID, workerID, starred)
	}
	args := m.Called(ctx, assignmentID, workerID, starred)
	return args.Error(0)
}

func (m *MockAssignmentRepository) UpsertMarkedDone(ctx context.Context, orderID, workerID string, done bool) error {
	if m.UpsertMarkedDoneFn != nil {
		return m.UpsertMarkedDoneFn(ctx, orderID, workerID, done)
	}
	args := m.Called(ctx, orderID, workerID, done)
	return args.Error(0)
}

func (m *MockAssignmentRepository) DeleteAssignmentsByWorker(ctx context.Context, workerID, companyID string) error {
	if m.DeleteAssignmentsByWorkerFn != nil {
		return m.DeleteAssignmentsByWorkerFn(ctx, workerID, companyID)
	}
	args := m.Called(ctx, workerID, companyID)
	return args.Error(0)
}

// --- Mock ProfileRepository ---
type MockProfileRepository struct {
	mock.Mock
	FindProfileByIDFn       func(ctx context.Context, profileID string) (*domain.Profile, error)
	EnsureProfileFn         func(ctx context.Context, profile domain.Profile) error
	UpdateProfileFieldsFn   func(ctx context.Context, profileID, fullName, email string, role domain.Role, stage domain.SetupStage, updatedBy string) error
	SetCompanyFn            func(ctx context.Context, profileID, companyID string, stage domain.SetupStage, updatedBy string) error
	DetachFromCompanyFn     func(ctx context.Context, profileID, companyID string, updatedBy string) error
	ListProfilesByCompanyFn func(ctx context.Context, companyID string) ([]domain.Profile, error)
}

func (m *MockProfileRepository) FindProfileByID(ctx context.Context, profileID string) (*domain.Profile, error) {
	if m.FindProfileByIDFn != nil {
		return m.FindProfileByIDFn(ctx, profileID)
	}
	args := m.Called(ctx, profileID)
	var profile *domain.Profile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileRepository) EnsureProfile(ctx context.Context, profile domain.Profile) error {
	if m.EnsureProfileFn != nil {
		return m.EnsureProfileFn(ctx, profile)
	}
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateProfileFields(ctx context.Context, profileID, fullName, email string, role domain.Role, stage domain.SetupStage, updatedBy string) error {
	if m.UpdateProfileFieldsFn != nil {
		return m.UpdateProfileFieldsFn(ctx, profileID, fullName, email, role, stage, updatedBy)
	}
	args := m.Called(ctx, profileID, fullName, email, role, stage, updatedBy)
	return args.Error(0)
}

func (m *MockProfileRepository) SetCompany(ctx context.Context, profileID, companyID string, stage domain.SetupStage, updatedBy string) error {
	if m.SetCompanyFn != nil {
		return m.SetCompanyFn(ctx, profileID, companyID, stage, updatedBy)
	}
	args := m.Called(ctx, profileID, companyID, stage, updatedBy)
	return args.Error(0)
}

func (m *MockProfileRepository) DetachFromCompany(ctx context.Context, profileID, companyID string, updatedBy string) error {
	if m.DetachFromCompanyFn != nil {
		return m.DetachFromCompanyFn(ctx, profileID, companyID, updatedBy)
	}
	args := m.Called(ctx, profileID, companyID, updatedBy)
	return args.Error(0)
}

func (m *MockProfileRepository) ListProfilesByCompany(ctx context.Context, companyID string) ([]domain.Profile, error) {
	if m.ListProfilesByCompanyFn != nil {
		return m.ListProfilesByCompanyFn(ctx, companyID)
	}
	args := m.Called(ctx, companyID)
	var profiles []domain.Profile
	if args.Get(0) != nil {
		profiles = args.Get(0).([]domain.Profile)
	}
	return profiles, args.Error(1)
}

// --- Test Suite ---
type AssignmentServiceTestSuite struct {
	suite.Suite
	mockAssignmentRepo *MockAssignmentRepository
	mockOrderRepo      *MockOrderRepository
	mockProfileRepo    *MockProfileRepository
	service            portssvc.AssignmentSvcFacade

	companyID string
	manager   *domain.Profile
	worker    *domain.Profile
}

func (suite *AssignmentServiceTestSuite) SetupTest() {
	suite.mockAssignmentRepo = new(MockAssignmentRepository)
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockProfileRepo = new(MockProfileRepository)
	suite.service = services.NewAssignmentService(portsrepo.RepositoryProvider{
		AssignmentRepo: suite.mockAssignmentRepo,
		OrderRepo:      suite.mockOrderRepo,
		ProfileRepo:    suite.mockProfileRepo,
	}, nil)

	suite.companyID = uuid.NewString()
	suite.manager = &domain.Profile{
		ProfileID:  uuid.NewString(),
		Role:       domain.RoleManager,
		CompanyID:  &suite.companyID,
		SetupStage: domain.StageCompanyResolved,
	}
	suite.worker = &domain.Profile{
		ProfileID:  uuid.NewString(),
		Role:       domain.RoleWorker,
		CompanyID:  &suite.companyID,
		SetupStage: domain.StageCompanyResolved,
	}
}

func (suite *AssignmentServiceTestSuite) memberProfile(workerID string) *domain.Profile {
	return &domain.Profile{ProfileID: workerID, Role: domain.RoleWorker, CompanyID: &suite.companyID}
}

// --- AssignWorkers Tests ---

func (suite *AssignmentServiceTestSuite) TestAssignWorkers_WorkerForbidden() {
	ctx := context.Background()

	assignments, err := suite.service.AssignWorkers(ctx, suite.worker, uuid.NewString(), []string{uuid.NewString()})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(assignments)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "ReplaceAssignments", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestAssignWorkers_DedupesAndResetsFlags() {
	ctx := context.Background()
	orderID := uuid.NewString()
	workerA := uuid.NewString()
	workerB := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, CompanyID: suite.companyID, AssignmentType: domain.AssignmentSpecific},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: orderID, WorkerID: workerA, Starred: true, MarkedDone: true},
		},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()
	suite.mockProfileRepo.On("FindProfileByID", ctx, workerA).Return(suite.memberProfile(workerA), nil).Once()
	suite.mockProfileRepo.On("FindProfileByID", ctx, workerB).Return(suite.memberProfile(workerB), nil).Once()
	suite.mockAssignmentRepo.On("ReplaceAssignments", ctx, orderID, mock.MatchedBy(func(rows []domain.OrderAssignment) bool {
		if len(rows) != 2 {
			return false
		}
		for _, row := range rows {
			// A worker kept across the replace still loses both flags.
			if row.Starred || row.MarkedDone || row.AssignmentID == "" {
				return false
			}
		}
		return rows[0].WorkerID == workerA && rows[1].WorkerID == workerB
	})).Return(nil).Once()

	assignments, err := suite.service.AssignWorkers(ctx, suite.manager, orderID, []string{workerA, workerB, workerA})

	suite.Require().NoError(err)
	suite.Len(assignments, 2)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
	suite.mockProfileRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestAssignWorkers_RejectsNonMember() {
	ctx := context.Background()
	orderID := uuid.NewString()
	outsider := uuid.NewString()
	otherCompany := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, CompanyID: suite.companyID},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()
	suite.mockProfileRepo.On("FindProfileByID", ctx, outsider).Return(&domain.Profile{ProfileID: outsider, CompanyID: &otherCompany}, nil).Once()

	assignments, err := suite.service.AssignWorkers(ctx, suite.manager, orderID, []string{outsider})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(assignments)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "ReplaceAssignments", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestAssignWorkers_EmptyListClearsAssignments() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, CompanyID: suite.companyID},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: orderID, WorkerID: uuid.NewString()},
		},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()
	suite.mockAssignmentRepo.On("ReplaceAssignments", ctx, orderID, mock.MatchedBy(func(rows []domain.OrderAssignment) bool {
		return len(rows) == 0
	})).Return(nil).Once()

	assignments, err := suite.service.AssignWorkers(ctx, suite.manager, orderID, nil)

	suite.Require().NoError(err)
	suite.Empty(assignments)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

// --- ToggleStarred Tests ---

func (suite *AssignmentServiceTestSuite) TestToggleStarred_ScopedToOwnRow() {
	ctx := context.Background()
	assignmentID := uuid.NewString()

	suite.mockAssignmentRepo.On("SetStarred", ctx, assignmentID, suite.worker.ProfileID, true).Return(nil).Once()

	err := suite.service.ToggleStarred(ctx, suite.worker, assignmentID, true)

	suite.Require().NoError(err)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestToggleStarred_OtherWorkersRowNotFound() {
	ctx := context.Background()
	assignmentID := uuid.NewString()

	suite.mockAssignmentRepo.On("SetStarred", ctx, assignmentID, suite.worker.ProfileID, true).Return(apperrors.ErrNotFound).Once()

	err := suite.service.ToggleStarred(ctx, suite.worker, assignmentID, true)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

// --- MarkDone Tests ---

func (suite *AssignmentServiceTestSuite) TestMarkDone_GeneralOrderCreatesRowOnDemand() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, CompanyID: suite.companyID, AssignmentType: domain.AssignmentGeneral},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()
	suite.mockAssignmentRepo.On("UpsertMarkedDone", ctx, orderID, suite.worker.ProfileID, true).Return(nil).Once()

	err := suite.service.MarkDone(ctx, suite.worker, orderID, true)

	suite.Require().NoError(err)
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestMarkDone_UnassignedSpecificOrderNotFound() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, CompanyID: suite.companyID, AssignmentType: domain.AssignmentSpecific},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: orderID, WorkerID: uuid.NewString()},
		},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	err := suite.service.MarkDone(ctx, suite.worker, orderID, true)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "UpsertMarkedDone", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
