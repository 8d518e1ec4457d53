package seeder

import (
	"context"
	"fmt"
	"strings"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/services"
	"assetadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repositories struct {
	Wallets    interfaces.Repository[models.Wallet]
	Roles      interfaces.Repository[models.Role]
	Routes     interfaces.Repository[models.ProjectRoute]
	RouteRoles interfaces.Repository[models.RouteRole]
	UserRoles  interfaces.Repository[models.UserRole]
}

// Account is a wallet created at start when it does not exist yet.
type Account struct {
	WalletAddress string
	Password      string
	UserType      int
}

type Seeder struct {
	repos       Repositories
	accounts    []Account
	entities    []string
	permissions services.PermissionService
	logger      *logger.Logger
}

func New(repos Repositories, accounts []Account, permissions services.PermissionService, log *logger.Logger) *Seeder {
	paths := make([]string, 0, len(models.Entities()))
	for _, e := range models.Entities() {
		paths = append(paths, e.Path)
	}

	return &Seeder{
		repos:       repos,
		accounts:    accounts,
		entities:    paths,
		permissions: permissions,
		logger:      log.WithField("component", "seeder"),
	}
}

// Run seeds wallets, roles, project routes, route roles and user roles.
// Every step only inserts what is missing.
func (s *Seeder) Run(ctx context.Context, routes gin.RoutesInfo) error {
	wallets, err := s.seedWallets(ctx)
	if err != nil {
		return fmt.Errorf("seed wallets: %w", err)
	}
	roles, err := s.seedRoles(ctx)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := s.seedProjectRoutes(ctx, routes); err != nil {
		return fmt.Errorf("seed project routes: %w", err)
	}
	if err := s.seedRouteRoles(ctx, roles); err != nil {
		return fmt.Errorf("seed route roles: %w", err)
	}
	if err := s.seedUserRoles(ctx, wallets, roles); err != nil {
		return fmt.Errorf("seed user roles: %w", err)
	}

	if s.permissions != nil {
		s.permissions.Invalidate(ctx)
	}
	return nil
}

func (s *Seeder) seedWallets(ctx context.Context) ([]*models.Wallet, error) {
	out := make([]*models.Wallet, 0, len(s.accounts))
	for _, acc := range s.accounts {
		wallet := &models.Wallet{
			WalletAddress: acc.WalletAddress,
			Password:      acc.Password,
			UserType:      acc.UserType,
		}
		wallet.IsActive = models.Bool(true)
		if err := wallet.BeforeCreate(); err != nil {
			return nil, err
		}

		got, created, err := s.repos.Wallets.FindOrCreate(ctx, bson.M{"walletAddress": acc.WalletAddress}, wallet)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.WithField("wallet", acc.WalletAddress).Info("Wallet seeded")
		}
		out = append(out, got)
	}
	return out, nil
}

// seedRoles returns every default role keyed by code.
func (s *Seeder) seedRoles(ctx context.Context) (map[string]*models.Role, error) {
	codes := make([]string, 0, len(defaultRoles))
	for _, name := range defaultRoles {
		codes = append(codes, RoleCode(name))
	}

	existing, err := s.repos.Roles.Find(ctx, bson.M{"code": bson.M{"$in": codes}}, nil)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*models.Role, len(existing))
	for _, r := range existing {
		byCode[r.Code] = r
	}

	var missing []*models.Role
	for _, name := range defaultRoles {
		if _, ok := byCode[RoleCode(name)]; ok {
			continue
		}
		role := &models.Role{Name: name, Code: RoleCode(name), Weight: models.Int64(1)}
		missing = append(missing, role)
		byCode[role.Code] = role
	}
	if len(missing) == 0 {
		s.logger.Debug("Roles are up to date")
		return byCode, nil
	}

	if _, err := s.repos.Roles.CreateMany(ctx, missing); err != nil {
		return nil, err
	}
	s.logger.WithField("count", len(missing)).Info("Roles seeded")
	return byCode, nil
}

func (s *Seeder) seedProjectRoutes(ctx context.Context, routes gin.RoutesInfo) error {
	existing, err := s.repos.Routes.Find(ctx, bson.M{}, nil)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Method+" "+r.RouteName] = true
	}

	var missing []*models.ProjectRoute
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/admin/") {
			continue
		}
		name := services.RouteName(r.Path)
		if seen[r.Method+" "+name] {
			continue
		}
		seen[r.Method+" "+name] = true
		missing = append(missing, &models.ProjectRoute{
			RouteName: name,
			Method:    r.Method,
			URI:       strings.ToLower(r.Path),
		})
	}
	if len(missing) == 0 {
		s.logger.Debug("Project routes are up to date")
		return nil
	}

	if _, err := s.repos.Routes.CreateMany(ctx, missing); err != nil {
		return err
	}
	s.logger.WithField("count", len(missing)).Info("Project routes seeded")
	return nil
}

func (s *Seeder) seedRouteRoles(ctx context.Context, roles map[string]*models.Role) error {
	routes, err := s.repos.Routes.Find(ctx, bson.M{}, nil)
	if err != nil {
		return err
	}
	routeIDs := make(map[string]primitive.ObjectID, len(routes))
	for _, r := range routes {
		routeIDs[r.Method+" "+r.URI] = r.ID
	}

	existing, err := s.repos.RouteRoles.Find(ctx, bson.M{}, nil)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, rr := range existing {
		if rr.RouteID != nil && rr.RoleID != nil {
			seen[rr.RouteID.Hex()+rr.RoleID.Hex()] = true
		}
	}

	var missing []*models.RouteRole
	for _, g := range Grants(s.entities) {
		routeID, ok := routeIDs[g.Method+" "+g.URI]
		if !ok {
			continue
		}
		role, ok := roles[RoleCode(g.Role)]
		if !ok {
			continue
		}
		key := routeID.Hex() + role.ID.Hex()
		if seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, &models.RouteRole{
			RouteID: models.ObjectID(routeID),
			RoleID:  models.ObjectID(role.ID),
		})
	}
	if len(missing) == 0 {
		s.logger.Debug("Route roles are up to date")
		return nil
	}

	if _, err := s.repos.RouteRoles.CreateMany(ctx, missing); err != nil {
		return err
	}
	s.logger.WithField("count", len(missing)).Info("Route roles seeded")
	return nil
}

// rolesFor maps a wallet type to its default role codes.
func rolesFor(userType int) []string {
	if userType == models.UserTypeAdmin {
		return []string{RoleCode(RoleAdmin), RoleCode(RoleSystemUser)}
	}
	return []string{RoleCode(RoleCustomer)}
}

func (s *Seeder) seedUserRoles(ctx context.Context, wallets []*models.Wallet, roles map[string]*models.Role) error {
	var missing []*models.UserRole
	for _, w := range wallets {
		if w.IsDeleted || !w.Active() {
			continue
		}

		for _, code := range rolesFor(w.UserType) {
			role, ok := roles[code]
			if !ok {
				continue
			}
			n, err := s.repos.UserRoles.Count(ctx, bson.M{"userId": w.ID, "roleId": role.ID})
			if err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			missing = append(missing, &models.UserRole{
				UserID: models.ObjectID(w.ID),
				RoleID: models.ObjectID(role.ID),
			})
		}
	}
	if len(missing) == 0 {
		s.logger.Debug("User roles are up to date")
		return nil
	}

	if _, err := s.repos.UserRoles.CreateMany(ctx, missing); err != nil {
		return err
	}
	s.logger.WithField("count", len(missing)).Info("User roles seeded")
	return nil
}
