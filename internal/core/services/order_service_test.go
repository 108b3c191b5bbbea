package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock OrderRepository (based on OrderService usage) ---
type MockOrderRepository struct {
	mock.Mock
	SaveOrderFn                 func(ctx context.Context, order domain.Order) error
	ListOrdersByCompanyFn       func(ctx context.Context, companyID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error)
	ListOrdersVisibleToWorkerFn func(ctx context.Context, companyID, workerID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error)
	FindOrderByIDFn             func(ctx context.Context, orderID, companyID string) (*domain.OrderWithAssignments, error)
	UpdateOrderFn               func(ctx context.Context, order domain.Order) error
	DeleteOrderFn               func(ctx context.Context, orderID, companyID string) error
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	if m.SaveOrderFn != nil {
		return m.SaveOrderFn(ctx, order)
	}
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ListOrdersByCompany(ctx context.Context, companyID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error) {
	if m.ListOrdersByCompanyFn != nil {
		return m.ListOrdersByCompanyFn(ctx, companyID, limit, before)
	}
	args := m.Called(ctx, companyID, limit, before)
	var orders []domain.OrderWithAssignments
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.OrderWithAssignments)
	}
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersVisibleToWorker(ctx context.Context, companyID, workerID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error) {
	if m.ListOrdersVisibleToWorkerFn != nil {
		return m.ListOrdersVisibleToWorkerFn(ctx, companyID, workerID, limit, before)
	}
	args := m.Called(ctx, companyID, workerID, limit, before)
	var orders []domain.OrderWithAssignments
	if args.Get(0) != nil {
		orders = args.Get(0).([]domain.OrderWithAssignments)
	}
	return orders, args.Error(1)
}

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID, companyID string) (*domain.OrderWithAssignments, error) {
	if m.FindOrderByIDFn != nil {
		return m.FindOrderByIDFn(ctx, orderID, companyID)
	}
	args := m.Called(ctx, orderID, companyID)
	var order *domain.OrderWithAssignments
	if args.Get(0) != nil {
		order = args.Get(0).(*domain.OrderWithAssignments)
	}
	return order, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, order domain.Order) error {
	if m.UpdateOrderFn != nil {
		return m.UpdateOrderFn(ctx, order)
	}
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, orderID, companyID string) error {
	if m.DeleteOrderFn != nil {
		return m.DeleteOrderFn(ctx, orderID, companyID)
	}
	args := m.Called(ctx, orderID, companyID)
	return args.Error(0)
}

// --- Test Suite ---
type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo *MockOrderRepository
	service       portssvc.OrderSvcFacade

	companyID string
	manager   *domain.Profile
	worker    *domain.Profile
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.service = services.NewOrderService(suite.mockOrderRepo, nil)

	suite.companyID = uuid.NewString()
	suite.manager = &domain.Profile{
		ProfileID:  uuid.NewString(),
		FullName:   "Manager",
		Role:       domain.RoleManager,
		CompanyID:  &suite.companyID,
		SetupStage: domain.StageCompanyResolved,
	}
	suite.worker = &domain.Profile{
		ProfileID:  uuid.NewString(),
		FullName:   "Worker",
		Role:       domain.RoleWorker,
		CompanyID:  &suite.companyID,
		SetupStage: domain.StageCompanyResolved,
	}
}

// --- ListOrders Tests ---

func (suite *OrderServiceTestSuite) TestListOrders_ManagerSeesCompanyScope() {
	ctx := context.Background()
	expected := []domain.OrderWithAssignments{{Order: domain.Order{OrderID: uuid.NewString()}}}

	suite.mockOrderRepo.On("ListOrdersByCompany", ctx, suite.companyID, 50, (*time.Time)(nil)).Return(expected, nil).Once()

	orders, err := suite.service.ListOrders(ctx, suite.manager, portssvc.OrderListParams{})

	suite.Require().NoError(err)
	suite.Equal(expected, orders)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "ListOrdersVisibleToWorker", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestListOrders_WorkerSeesAssignedAndGeneral() {
	ctx := context.Background()
	expected := []domain.OrderWithAssignments{{Order: domain.Order{OrderID: uuid.NewString()}}}

	suite.mockOrderRepo.On("ListOrdersVisibleToWorker", ctx, suite.companyID, suite.worker.ProfileID, 50, (*time.Time)(nil)).Return(expected, nil).Once()

	orders, err := suite.service.ListOrders(ctx, suite.worker, portssvc.OrderListParams{})

	suite.Require().NoError(err)
	suite.Equal(expected, orders)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "ListOrdersByCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestListOrders_WorkerVisibilityUnion() {
	ctx := context.Background()
	assignedToMe := domain.OrderWithAssignments{
		Order: domain.Order{OrderID: "order-1", Title: "Chairs", AssignmentType: domain.AssignmentSpecific, CompanyID: suite.companyID},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: "order-1", WorkerID: suite.worker.ProfileID},
		},
	}
	general := domain.OrderWithAssignments{
		Order: domain.Order{OrderID: "order-2", Title: "Shelves", AssignmentType: domain.AssignmentGeneral, CompanyID: suite.companyID},
	}
	assignedElsewhere := domain.OrderWithAssignments{
		Order: domain.Order{OrderID: "order-3", Title: "Bench", AssignmentType: domain.AssignmentSpecific, CompanyID: suite.companyID},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: "order-3", WorkerID: uuid.NewString()},
		},
	}
	fixture := []domain.OrderWithAssignments{assignedToMe, general, assignedElsewhere}

	// The fake applies the worker-visibility predicate over the fixture:
	// assigned-to-me union general, nothing else.
	suite.mockOrderRepo.ListOrdersVisibleToWorkerFn = func(_ context.Context, companyID, workerID string, _ int, _ *time.Time) ([]domain.OrderWithAssignments, error) {
		var visible []domain.OrderWithAssignments
		for _, o := range fixture {
			if o.CompanyID != companyID {
				continue
			}
			if o.AssignmentType == domain.AssignmentGeneral {
				visible = append(visible, o)
				continue
			}
			for _, a := range o.Assignments {
				if a.WorkerID == workerID {
					visible = append(visible, o)
					break
				}
			}
		}
		return visible, nil
	}

	orders, err := suite.service.ListOrders(ctx, suite.worker, portssvc.OrderListParams{})

	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal("order-1", orders[0].OrderID)
	suite.Equal("order-2", orders[1].OrderID)
}

func (suite *OrderServiceTestSuite) TestListOrders_DegradedCallerForbidden() {
	ctx := context.Background()
	degraded := &domain.Profile{ProfileID: uuid.NewString(), Role: domain.RoleWorker}

	orders, err := suite.service.ListOrders(ctx, degraded, portssvc.OrderListParams{})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(orders)
}

func (suite *OrderServiceTestSuite) TestListOrders_LimitClamped() {
	ctx := context.Background()

	suite.mockOrderRepo.On("ListOrdersByCompany", ctx, suite.companyID, 50, (*time.Time)(nil)).Return([]domain.OrderWithAssignments{}, nil).Once()

	_, err := suite.service.ListOrders(ctx, suite.manager, portssvc.OrderListParams{Limit: 500})

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

// --- GetOrder Tests ---

func (suite *OrderServiceTestSuite) TestGetOrder_WorkerNotAssignedToSpecificOrder() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, AssignmentType: domain.AssignmentSpecific, CompanyID: suite.companyID},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: orderID, WorkerID: uuid.NewString()},
		},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	got, err := suite.service.GetOrder(ctx, suite.worker, orderID)

	// Indistinguishable from a nonexistent order.
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestGetOrder_WorkerAssignedToSpecificOrder() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, AssignmentType: domain.AssignmentSpecific, CompanyID: suite.companyID},
		Assignments: []domain.OrderAssignment{
			{AssignmentID: uuid.NewString(), OrderID: orderID, WorkerID: suite.worker.ProfileID},
		},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	got, err := suite.service.GetOrder(ctx, suite.worker, orderID)

	suite.Require().NoError(err)
	suite.Equal(order, got)
}

func (suite *OrderServiceTestSuite) TestGetOrder_WorkerSeesGeneralOrder() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, AssignmentType: domain.AssignmentGeneral, CompanyID: suite.companyID},
	}

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	got, err := suite.service.GetOrder(ctx, suite.worker, orderID)

	suite.Require().NoError(err)
	suite.Equal(order, got)
}

// --- CreateOrder Tests ---

func (suite *OrderServiceTestSuite) TestCreateOrder_Success() {
	ctx := context.Background()

	suite.mockOrderRepo.On("SaveOrder", ctx, mock.MatchedBy(func(order domain.Order) bool {
		return order.Title == "Oak table" &&
			order.Status == domain.StatusNew &&
			order.Priority == domain.PriorityMedium &&
			order.AssignmentType == domain.AssignmentGeneral &&
			order.Quantity == 1 &&
			order.ImageURLs != nil &&
			order.CompanyID == suite.companyID &&
			order.CreatedBy == suite.manager.ProfileID
	})).Return(nil).Once()

	order, err := suite.service.CreateOrder(ctx, suite.manager, portssvc.CreateOrderInput{Title: "  Oak table  "})

	suite.Require().NoError(err)
	suite.Require().NotNil(order)
	suite.Equal("Oak table", order.Title)
	suite.NotEmpty(order.OrderID)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestCreateOrder_WorkerForbidden() {
	ctx := context.Background()

	order, err := suite.service.CreateOrder(ctx, suite.worker, portssvc.CreateOrderInput{Title: "Oak table"})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(order)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_EmptyTitleRejectedBeforeSave() {
	ctx := context.Background()

	order, err := suite.service.CreateOrder(ctx, suite.manager, portssvc.CreateOrderInput{Title: "   "})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(order)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_UnknownPriorityRejected() {
	ctx := context.Background()

	order, err := suite.service.CreateOrder(ctx, suite.manager, portssvc.CreateOrderInput{Title: "Oak table", Priority: "asap"})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(order)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrder", mock.Anything, mock.Anything)
}

// --- UpdateOrder Tests ---

func (suite *OrderServiceTestSuite) TestUpdateOrder_WorkerMayOnlyChangeStatus() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, Title: "Oak table", Priority: domain.PriorityMedium, AssignmentType: domain.AssignmentGeneral, Quantity: 1, CompanyID: suite.companyID},
	}
	newTitle := "Walnut table"

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	updated, err := suite.service.UpdateOrder(ctx, suite.worker, orderID, portssvc.UpdateOrderInput{Title: &newTitle})

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(updated)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_WorkerMovesStatus() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, Title: "Oak table", Status: domain.StatusNew, Priority: domain.PriorityMedium, AssignmentType: domain.AssignmentGeneral, Quantity: 1, CompanyID: suite.companyID},
	}
	newStatus := domain.StatusInProgress

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Twice()
	suite.mockOrderRepo.On("UpdateOrder", ctx, mock.MatchedBy(func(o domain.Order) bool {
		return o.OrderID == orderID && o.Status == domain.StatusInProgress && o.LastUpdatedBy == suite.worker.ProfileID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateOrder(ctx, suite.worker, orderID, portssvc.UpdateOrderInput{Status: &newStatus})

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_UnknownStatusRejected() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, Title: "Oak table", Status: domain.StatusNew, Priority: domain.PriorityMedium, AssignmentType: domain.AssignmentGeneral, Quantity: 1, CompanyID: suite.companyID},
	}
	badStatus := domain.OrderStatus("done")

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	updated, err := suite.service.UpdateOrder(ctx, suite.manager, orderID, portssvc.UpdateOrderInput{Status: &badStatus})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_ZeroQuantityRejected() {
	ctx := context.Background()
	orderID := uuid.NewString()
	order := &domain.OrderWithAssignments{
		Order: domain.Order{OrderID: orderID, Title: "Oak table", Status: domain.StatusNew, Priority: domain.PriorityMedium, AssignmentType: domain.AssignmentGeneral, Quantity: 3, CompanyID: suite.companyID},
	}
	zero := 0

	suite.mockOrderRepo.On("FindOrderByID", ctx, orderID, suite.companyID).Return(order, nil).Once()

	updated, err := suite.service.UpdateOrder(ctx, suite.manager, orderID, portssvc.UpdateOrderInput{Quantity: &zero})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrder", mock.Anything, mock.Anything)
}

// --- DeleteOrder Tests ---

func (suite *OrderServiceTestSuite) TestDeleteOrder_ManagerOnly() {
	ctx := context.Background()
	orderID := uuid.NewString()

	err := suite.service.DeleteOrder(ctx, suite.worker, orderID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "DeleteOrder", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_Success() {
	ctx := context.Background()
	orderID := uuid.NewString()

	suite.mockOrderRepo.On("DeleteOrder", ctx, orderID, suite.companyID).Return(nil).Once()

	err := suite.service.DeleteOrder(ctx, suite.manager, orderID)

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
