package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/core/services"
	"github.com/atelierhq/order_tracking_app/internal/platform/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
	SaveUserFn                  func(ctx context.Context, user domain.User) error
	FindUserByIDFn              func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmailFn           func(ctx context.Context, email string) (*domain.User, error)
	FindUserByProviderDetailsFn func(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	UpdateRefreshTokenFn        func(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error
	ClearRefreshTokenFn         func(ctx context.Context, userID string) error
	UpdatePasswordHashFn        func(ctx context.Context, userID string, passwordHash string) error
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	if m.FindUserByProviderDetailsFn != nil {
		return m.FindUserByProviderDetailsFn(ctx, provider, providerUserID)
	}
	args := m.Called(ctx, provider, providerUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error {
	if m.UpdateRefreshTokenFn != nil {
		return m.UpdateRefreshTokenFn(ctx, userID, refreshTokenHash, expiry)
	}
	args := m.Called(ctx, userID, refreshTokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	if m.ClearRefreshTokenFn != nil {
		return m.ClearRefreshTokenFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	if m.UpdatePasswordHashFn != nil {
		return m.UpdatePasswordHashFn(ctx, userID, passwordHash)
	}
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// --- Mock CompanyRepository ---
type MockCompanyRepository struct {
	mock.Mock
	SaveCompanyFn     func(ctx context.Context, company domain.Company) error
	FindCompanyByIDFn func(ctx context.Context, companyID string) (*domain.Company, error)
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	if m.SaveCompanyFn != nil {
		return m.SaveCompanyFn(ctx, company)
	}
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	if m.FindCompanyByIDFn != nil {
		return m.FindCompanyByIDFn(ctx, companyID)
	}
	args := m.Called(ctx, companyID)
	var company *domain.Company
	if args.Get(0) != nil {
		company = args.Get(0).(*domain.Company)
	}
	return company, args.Error(1)
}

// --- Mock InvitationRepository ---
type MockInvitationRepository struct {
	mock.Mock
	SaveInvitationFn           func(ctx context.Context, inv domain.Invitation) error
	ListInvitationsByCompanyFn func(ctx context.Context, companyID string) ([]domain.Invitation, error)
	DeleteInvitationFn         func(ctx context.Context, code, companyID string) error
	ConsumeInvitationFn        func(ctx context.Context, code, profileID string) (*domain.Invitation, error)
}

func (m *MockInvitationRepository) SaveInvitation(ctx context.Context, inv domain.Invitation) error {
	if m.SaveInvitationFn != nil {
		return m.SaveInvitationFn(ctx, inv)
	}
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvitationRepository) ListInvitationsByCompany(ctx context.Context, companyID string) ([]domain.Invitation, error) {
	if m.ListInvitationsByCompanyFn != nil {
		return m.ListInvitationsByCompanyFn(ctx, companyID)
	}
	args := m.Called(ctx, companyID)
	var invitations []domain.Invitation
	if args.Get(0) != nil {
		invitations = args.Get(0).([]domain.Invitation)
	}
	return invitations, args.Error(1)
}

func (m *MockInvitationRepository) DeleteInvitation(ctx context.Context, code, companyID string) error {
	if m.DeleteInvitationFn != nil {
		return m.DeleteInvitationFn(ctx, code, companyID)
	}
	args := m.Called(ctx, code, companyID)
	return args.Error(0)
}

func (m *MockInvitationRepository) ConsumeInvitation(ctx context.Context, code, profileID string) (*domain.Invitation, error) {
	if m.ConsumeInvitationFn != nil {
		return m.ConsumeInvitationFn(ctx, code, profileID)
	}
	args := m.Called(ctx, code, profileID)
	var inv *domain.Invitation
	if args.Get(0) != nil {
		inv = args.Get(0).(*domain.Invitation)
	}
	return inv, args.Error(1)
}

// --- Test Suite ---
type ProfileServiceTestSuite struct {
	suite.Suite
	mockProfileRepo    *MockProfileRepository
	mockCompanyRepo    *MockCompanyRepository
	mockInvitationRepo *MockInvitationRepository
	mockUserRepo       *MockUserRepository
	service            portssvc.ProfileSvcFacade
}

func (suite *ProfileServiceTestSuite) SetupTest() {
	suite.mockProfileRepo = new(MockProfileRepository)
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.mockInvitationRepo = new(MockInvitationRepository)
	suite.mockUserRepo = new(MockUserRepository)

	cfg := &config.Config{
		ProfilePollAttempts:  3,
		ProfilePollBaseDelay: time.Millisecond,
		ProfilePollMaxDelay:  4 * time.Millisecond,
	}
	suite.service = services.NewProfileService(cfg, portsrepo.RepositoryProvider{
		ProfileRepo:    suite.mockProfileRepo,
		CompanyRepo:    suite.mockCompanyRepo,
		InvitationRepo: suite.mockInvitationRepo,
		UserRepo:       suite.mockUserRepo,
	}, nil)
}

// --- WaitForProfile Tests ---

func (suite *ProfileServiceTestSuite) TestWaitForProfile_FoundOnFirstAttempt() {
	ctx := context.Background()
	profileID := uuid.NewString()
	expected := &domain.Profile{ProfileID: profileID}

	suite.mockProfileRepo.On("FindProfileByID", ctx, profileID).Return(expected, nil).Once()

	profile, err := suite.service.WaitForProfile(ctx, profileID)

	suite.Require().NoError(err)
	suite.Equal(expected, profile)
	suite.mockProfileRepo.AssertExpectations(suite.T())
}

func (suite *ProfileServiceTestSuite) TestWaitForProfile_RetriesUntilRowAppears() {
	ctx := context.Background()
	profileID := uuid.NewString()
	expected := &domain.Profile{ProfileID: profileID}

	var calls atomic.Int32
	suite.mockProfileRepo.FindProfileByIDFn = func(ctx context.Context, id string) (*domain.Profile, error) {
		if calls.Add(1) < 3 {
			return nil, apperrors.ErrNotFound
		}
		return expected, nil
	}

	profile, err := suite.service.WaitForProfile(ctx, profileID)

	suite.Require().NoError(err)
	suite.Equal(expected, profile)
	suite.EqualValues(3, calls.Load())
}

func (suite *ProfileServiceTestSuite) TestWaitForProfile_GivesUpAfterBudget() {
	ctx := context.Background()
	profileID := uuid.NewString()

	var calls atomic.Int32
	suite.mockProfileRepo.FindProfileByIDFn = func(ctx context.Context, id string) (*domain.Profile, error) {
		calls.Add(1)
		return nil, apperrors.ErrNotFound
	}

	profile, err := suite.service.WaitForProfile(ctx, profileID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(profile)
	suite.EqualValues(3, calls.Load())
}

func (suite *ProfileServiceTestSuite) TestWaitForProfile_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	profileID := uuid.NewString()

	suite.mockProfileRepo.FindProfileByIDFn = func(ctx context.Context, id string) (*domain.Profile, error) {
		cancel()
		return nil, apperrors.ErrNotFound
	}

	profile, err := suite.service.WaitForProfile(ctx, profileID)

	suite.Require().ErrorIs(err, context.Canceled)
	suite.Nil(profile)
}

// --- RepairProfile Tests ---

func (suite *ProfileServiceTestSuite) TestRepairProfile_CreatesMinimalRow() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, Email: "worker@example.com"}
	repaired := &domain.Profile{ProfileID: userID, Email: user.Email, Role: domain.RoleWorker, SetupStage: domain.StageRegistered}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()
	suite.mockProfileRepo.On("EnsureProfile", ctx, mock.MatchedBy(func(p domain.Profile) bool {
		return p.ProfileID == userID && p.Email == user.Email &&
			p.Role == domain.RoleWorker && p.SetupStage == domain.StageRegistered
	})).Return(nil).Once()
	suite.mockProfileRepo.On("FindProfileByID", ctx, userID).Return(repaired, nil).Once()

	profile, err := suite.service.RepairProfile(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(repaired, profile)
	suite.mockProfileRepo.AssertExpectations(suite.T())
}

func (suite *ProfileServiceTestSuite) TestRepairProfile_UnknownIdentity() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

	profile, err := suite.service.RepairProfile(ctx, userID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(profile)
	suite.mockProfileRepo.AssertNotCalled(suite.T(), "EnsureProfile", mock.Anything, mock.Anything)
}

// --- CompleteProfileSetup Tests ---

func (suite *ProfileServiceTestSuite) TestCompleteProfileSetup_NewCompany() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "owner@example.com"}

	suite.mockProfileRepo.On("UpdateProfileFields", ctx, user.UserID, "Olga Owner", user.Email, domain.RoleManager, domain.StageProfileUpdated, user.UserID).Return(nil).Once()
	suite.mockCompanyRepo.On("SaveCompany", ctx, mock.MatchedBy(func(c domain.Company) bool {
		return c.Name == "Atelier North" && c.CreatedBy == user.UserID && c.CompanyID != ""
	})).Return(nil).Once()
	suite.mockProfileRepo.On("SetCompany", ctx, user.UserID, mock.AnythingOfType("string"), domain.StageCompanyResolved, user.UserID).Return(nil).Once()

	err := suite.service.CompleteProfileSetup(ctx, user, domain.SignupMetadata{
		FullName:    "Olga Owner",
		Role:        domain.RoleManager,
		CompanyType: domain.CompanyTypeNew,
		CompanyName: " Atelier North ",
	})

	suite.Require().NoError(err)
	suite.mockProfileRepo.AssertExpectations(suite.T())
	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *ProfileServiceTestSuite) TestCompleteProfileSetup_InvitedSignupForcedToWorker() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "joiner@example.com"}
	inv := &domain.Invitation{Code: "ABC123XYZ", CompanyID: uuid.NewString(), Role: domain.RoleWorker}

	// The requested manager role is ignored on invited signups.
	suite.mockProfileRepo.On("UpdateProfileFields", ctx, user.UserID, "Joe Joiner", user.Email, domain.RoleWorker, domain.StageProfileUpdated, user.UserID).Return(nil).Once()
	suite.mockInvitationRepo.On("ConsumeInvitation", ctx, "ABC123XYZ", user.UserID).Return(inv, nil).Once()

	err := suite.service.CompleteProfileSetup(ctx, user, domain.SignupMetadata{
		FullName:       "Joe Joiner",
		Role:           domain.RoleManager,
		CompanyType:    domain.CompanyTypeExisting,
		InvitationCode: "ABC123XYZ",
	})

	suite.Require().NoError(err)
	suite.mockProfileRepo.AssertExpectations(suite.T())
	suite.mockInvitationRepo.AssertExpectations(suite.T())
}

func (suite *ProfileServiceTestSuite) TestCompleteProfileSetup_InvitationCodeCaseFolded() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "typist@example.com"}
	inv := &domain.Invitation{Code: "ABC123XYZ", CompanyID: uuid.NewString(), Role: domain.RoleWorker}

	suite.mockProfileRepo.On("UpdateProfileFields", ctx, user.UserID, "Tina Typist", user.Email, domain.RoleWorker, domain.StageProfileUpdated, user.UserID).Return(nil).Once()
	// Codes are generated uppercase; whatever the user typed is trimmed and
	// folded before the lookup.
	suite.mockInvitationRepo.On("ConsumeInvitation", ctx, "ABC123XYZ", user.UserID).Return(inv, nil).Once()

	err := suite.service.CompleteProfileSetup(ctx, user, domain.SignupMetadata{
		FullName:       "Tina Typist",
		CompanyType:    domain.CompanyTypeExisting,
		InvitationCode: "  abc123xyz  ",
	})

	suite.Require().NoError(err)
	suite.mockInvitationRepo.AssertExpectations(suite.T())
}

func (suite *ProfileServiceTestSuite) TestCompleteProfileSetup_SpentInvitationCode() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "late@example.com"}

	suite.mockProfileRepo.On("UpdateProfileFields", ctx, user.UserID, "Late Larry", user.Email, domain.RoleWorker, domain.StageProfileUpdated, user.UserID).Return(nil).Once()
	suite.mockInvitationRepo.On("ConsumeInvitation", ctx, "SPENTCODE", user.UserID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.CompleteProfileSetup(ctx, user, domain.SignupMetadata{
		FullName:       "Late Larry",
		CompanyType:    domain.CompanyTypeExisting,
		InvitationCode: "SPENTCODE",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ProfileServiceTestSuite) TestCompleteProfileSetup_MissingCompanyName() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "owner@example.com"}

	suite.mockProfileRepo.On("UpdateProfileFields", ctx, user.UserID, "Olga Owner", user.Email, domain.RoleManager, domain.StageProfileUpdated, user.UserID).Return(nil).Once()

	err := suite.service.CompleteProfileSetup(ctx, user, domain.SignupMetadata{
		FullName:    "Olga Owner",
		Role:        domain.RoleManager,
		CompanyType: domain.CompanyTypeNew,
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockCompanyRepo.AssertNotCalled(suite.T(), "SaveCompany", mock.Anything, mock.Anything)
}

// --- SessionState Tests ---

func (suite *ProfileServiceTestSuite) TestSessionState_MissingProfileIsAStateNotAnError() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockProfileRepo.On("FindProfileByID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

	overview, err := suite.service.SessionState(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SessionNoProfile, overview.State)
	suite.Nil(overview.Profile)
}

func (suite *ProfileServiceTestSuite) TestSessionState_DegradedProfile() {
	ctx := context.Background()
	userID := uuid.NewString()
	profile := &domain.Profile{ProfileID: userID, Role: domain.RoleWorker, SetupStage: domain.StageProfileUpdated}

	suite.mockProfileRepo.On("FindProfileByID", ctx, userID).Return(profile, nil).Once()

	overview, err := suite.service.SessionState(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SessionDegraded, overview.State)
	suite.False(overview.Capabilities.IsManager)
}

func (suite *ProfileServiceTestSuite) TestSessionState_ReadyManager() {
	ctx := context.Background()
	userID := uuid.NewString()
	companyID := uuid.NewString()
	profile := &domain.Profile{ProfileID: userID, Role: domain.RoleManager, CompanyID: &companyID, SetupStage: domain.StageCompanyResolved}

	suite.mockProfileRepo.On("FindProfileByID", ctx, userID).Return(profile, nil).Once()

	overview, err := suite.service.SessionState(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SessionReady, overview.State)
	suite.True(overview.Capabilities.IsManager)
}

// --- UpdateProfile Tests ---

func (suite *ProfileServiceTestSuite) TestUpdateProfile_EmptyNameRejected() {
	ctx := context.Background()

	profile, err := suite.service.UpdateProfile(ctx, uuid.NewString(), "   ")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(profile)
	suite.mockProfileRepo.AssertNotCalled(suite.T(), "UpdateProfileFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceTestSuite))
}
