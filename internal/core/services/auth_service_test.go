package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/core/services"
	"github.com/atelierhq/order_tracking_app/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserSvcFacade ---
type MockUserSvc struct {
	mock.Mock
}

func (m *MockUserSvc) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserSvc) CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserSvc) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserSvc) GetUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserSvc) StoreRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiry time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserSvc) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserSvc) SetPassword(ctx context.Context, userID, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

// --- Mock ProfileSvcFacade ---
type MockProfileSvc struct {
	mock.Mock
}

func (m *MockProfileSvc) FetchProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	args := m.Called(ctx, profileID)
	var profile *domain.Profile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileSvc) WaitForProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	args := m.Called(ctx, profileID)
	var profile *domain.Profile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileSvc) RepairProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	var profile *domain.Profile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileSvc) CompleteProfileSetup(ctx context.Context, user *domain.User, metadata domain.SignupMetadata) error {
	args := m.Called(ctx, user, metadata)
	return args.Error(0)
}

func (m *MockProfileSvc) UpdateProfile(ctx context.Context, profileID, fullName string) (*domain.Profile, error) {
	args := m.Called(ctx, profileID, fullName)
	var profile *domain.Profile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileSvc) SessionState(ctx context.Context, userID string) (*portssvc.SessionOverview, error) {
	args := m.Called(ctx, userID)
	var overview *portssvc.SessionOverview
	if args.Get(0) != nil {
		overview = args.Get(0).(*portssvc.SessionOverview)
	}
	return overview, args.Error(1)
}

// --- Mock TokenSvcFacade ---
type MockTokenSvc struct {
	mock.Mock
}

func (m *MockTokenSvc) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenSvc) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenSvc) ValidateAndParseRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshToken)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

// --- Test Suite ---
type AuthServiceTestSuite struct {
	suite.Suite
	mockUserSvc    *MockUserSvc
	mockProfileSvc *MockProfileSvc
	mockTokenSvc   *MockTokenSvc
	service        portssvc.AuthSvcFacade
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockUserSvc = new(MockUserSvc)
	suite.mockProfileSvc = new(MockProfileSvc)
	suite.mockTokenSvc = new(MockTokenSvc)
	suite.service = services.NewAuthService(suite.mockUserSvc, suite.mockProfileSvc, suite.mockTokenSvc)
}

func (suite *AuthServiceTestSuite) expectSessionIssued(user *domain.User) {
	ctx := context.Background()
	suite.mockTokenSvc.On("GenerateAccessToken", ctx, user).Return("access-token", time.Now().Add(time.Hour), nil).Once()
	suite.mockTokenSvc.On("GenerateRefreshToken", ctx, user).Return("refresh-token", time.Now().Add(7*24*time.Hour), nil).Once()
	suite.mockUserSvc.On("StoreRefreshToken", ctx, user.UserID, utils.HashRefreshToken("refresh-token"), mock.AnythingOfType("time.Time")).Return(nil).Once()
}

// --- SignUp Tests ---

func (suite *AuthServiceTestSuite) TestSignUp_Success() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "new@example.com"}
	metadata := domain.SignupMetadata{FullName: "New User", CompanyType: domain.CompanyTypeNew, CompanyName: "Shop"}

	suite.mockUserSvc.On("CreateUser", ctx, "new@example.com", "password123").Return(user, nil).Once()
	suite.mockProfileSvc.On("WaitForProfile", ctx, user.UserID).Return(&domain.Profile{ProfileID: user.UserID}, nil).Once()
	suite.mockProfileSvc.On("CompleteProfileSetup", ctx, user, metadata).Return(nil).Once()

	created, err := suite.service.SignUp(ctx, "new@example.com", "password123", metadata)

	suite.Require().NoError(err)
	suite.Equal(user, created)
	suite.mockProfileSvc.AssertExpectations(suite.T())
	suite.mockProfileSvc.AssertNotCalled(suite.T(), "RepairProfile", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestSignUp_TriggerRowMissingFallsBackToRepair() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "new@example.com"}
	metadata := domain.SignupMetadata{FullName: "New User", CompanyType: domain.CompanyTypeNew, CompanyName: "Shop"}

	suite.mockUserSvc.On("CreateUser", ctx, "new@example.com", "password123").Return(user, nil).Once()
	suite.mockProfileSvc.On("WaitForProfile", ctx, user.UserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockProfileSvc.On("RepairProfile", ctx, user.UserID).Return(&domain.Profile{ProfileID: user.UserID}, nil).Once()
	suite.mockProfileSvc.On("CompleteProfileSetup", ctx, user, metadata).Return(nil).Once()

	created, err := suite.service.SignUp(ctx, "new@example.com", "password123", metadata)

	suite.Require().NoError(err)
	suite.Equal(user, created)
	suite.mockProfileSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestSignUp_SetupFailureStillReturnsUser() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "new@example.com"}
	metadata := domain.SignupMetadata{FullName: "New User", CompanyType: domain.CompanyTypeExisting, InvitationCode: "BADCODE"}
	setupErr := assert.AnError

	suite.mockUserSvc.On("CreateUser", ctx, "new@example.com", "password123").Return(user, nil).Once()
	suite.mockProfileSvc.On("WaitForProfile", ctx, user.UserID).Return(&domain.Profile{ProfileID: user.UserID}, nil).Once()
	suite.mockProfileSvc.On("CompleteProfileSetup", ctx, user, metadata).Return(setupErr).Once()

	created, err := suite.service.SignUp(ctx, "new@example.com", "password123", metadata)

	// The identity exists; the caller can sign in and repair.
	suite.Require().Error(err)
	suite.Require().NotNil(created)
	suite.Equal(user.UserID, created.UserID)
}

// --- SignIn Tests ---

func (suite *AuthServiceTestSuite) TestSignIn_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com", AuthProvider: domain.ProviderLocal, PasswordHash: hash}

	suite.mockUserSvc.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil).Once()
	suite.expectSessionIssued(user)

	session, err := suite.service.SignIn(ctx, "user@example.com", "password123")

	suite.Require().NoError(err)
	suite.Require().NotNil(session)
	suite.Equal("access-token", session.AccessToken)
	suite.Equal("refresh-token", session.RefreshToken)
	suite.mockUserSvc.AssertExpectations(suite.T())
	suite.mockTokenSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestSignIn_UnknownEmailReadsAsUnauthorized() {
	ctx := context.Background()

	suite.mockUserSvc.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	session, err := suite.service.SignIn(ctx, "ghost@example.com", "password123")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(session)
}

func (suite *AuthServiceTestSuite) TestSignIn_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com", AuthProvider: domain.ProviderLocal, PasswordHash: hash}

	suite.mockUserSvc.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil).Once()

	session, err := suite.service.SignIn(ctx, "user@example.com", "wrong-password")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(session)
	suite.mockTokenSvc.AssertNotCalled(suite.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestSignIn_DisabledAccount() {
	ctx := context.Background()
	now := time.Now()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com", AuthProvider: domain.ProviderLocal, PasswordHash: hash, DisabledAt: &now}

	suite.mockUserSvc.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil).Once()

	session, err := suite.service.SignIn(ctx, "user@example.com", "password123")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(session)
}

func (suite *AuthServiceTestSuite) TestSignIn_OAuthAccountHasNoPassword() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com", AuthProvider: domain.ProviderGoogle}

	suite.mockUserSvc.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil).Once()

	session, err := suite.service.SignIn(ctx, "user@example.com", "password123")

	suite.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(session)
}

// --- SignOut Tests ---

func (suite *AuthServiceTestSuite) TestSignOut_Idempotent() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserSvc.On("ClearRefreshToken", ctx, userID).Return(apperrors.ErrNotFound).Once()

	err := suite.service.SignOut(ctx, userID)

	suite.Require().NoError(err)
}

func (suite *AuthServiceTestSuite) TestSignOut_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserSvc.On("ClearRefreshToken", ctx, userID).Return(nil).Once()

	err := suite.service.SignOut(ctx, userID)

	suite.Require().NoError(err)
	suite.mockUserSvc.AssertExpectations(suite.T())
}

// --- Refresh Tests ---

func (suite *AuthServiceTestSuite) TestRefresh_RotatesTokenPair() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com"}

	suite.mockTokenSvc.On("ValidateAndParseRefreshToken", ctx, user.UserID, "old-refresh").Return(user, nil).Once()
	suite.expectSessionIssued(user)

	session, err := suite.service.Refresh(ctx, user.UserID, "old-refresh")

	suite.Require().NoError(err)
	suite.Equal("refresh-token", session.RefreshToken)
	suite.mockTokenSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRefresh_ExpiredToken() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockTokenSvc.On("ValidateAndParseRefreshToken", ctx, userID, "stale-refresh").Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	session, err := suite.service.Refresh(ctx, userID, "stale-refresh")

	suite.Require().ErrorIs(err, apperrors.ErrRefreshTokenExpired)
	suite.Nil(session)
}

// --- ResetPassword Tests ---

func (suite *AuthServiceTestSuite) TestResetPassword_UnknownEmailIndistinguishable() {
	ctx := context.Background()

	suite.mockUserSvc.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ResetPassword(ctx, "ghost@example.com")

	suite.Require().NoError(err)
}

func (suite *AuthServiceTestSuite) TestResetPassword_KnownEmail() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "user@example.com"}

	suite.mockUserSvc.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil).Once()

	err := suite.service.ResetPassword(ctx, "user@example.com")

	suite.Require().NoError(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
