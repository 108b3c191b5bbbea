package pgsql

import (
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	profileRepo := newPgxProfileRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)
	invitationRepo := newPgxInvitationRepository(dbPool)
	orderRepo := newPgxOrderRepository(dbPool)
	assignmentRepo := newPgxAssignmentRepository(dbPool)
	buyListRepo := newPgxBuyListRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:       userRepo,
		ProfileRepo:    profileRepo,
		CompanyRepo:    companyRepo,
		InvitationRepo: invitationRepo,
		OrderRepo:      orderRepo,
		AssignmentRepo: assignmentRepo,
		BuyListRepo:    buyListRepo,
	}
}
