package services

import (
	"github.com/atelierhq/order_tracking_app/internal/changefeed"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. feed may be nil in tests; publishing on a nil
// feed is a no-op.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, feed *changefeed.Feed) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuth = NewGoogleOAuthService(cfg)
	container.Profile = NewProfileService(cfg, repos, feed)
	container.Auth = NewAuthService(container.User, container.Profile, container.Token)
	container.Company = NewCompanyService(repos, feed)
	container.Order = NewOrderService(repos.OrderRepo, feed)
	container.Assignment = NewAssignmentService(repos, feed)
	container.BuyList = NewBuyListService(repos.BuyListRepo, feed)
	container.Analytics = NewAnalyticsService(repos.OrderRepo)

	return container
}
