package services

import (
	"context"
	"strings"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PermissionService resolves route permissions from the userroles,
// projectroutes and routeroles collections.
type PermissionService interface {
	RolesOf(ctx context.Context, userID primitive.ObjectID) ([]*models.Role, error)
	Authorize(ctx context.Context, userID primitive.ObjectID, method, path string) (bool, error)
	Invalidate(ctx context.Context)
}

type PermissionRepositories struct {
	Roles      interfaces.Repository[models.Role]
	Routes     interfaces.Repository[models.ProjectRoute]
	RouteRoles interfaces.Repository[models.RouteRole]
	UserRoles  interfaces.Repository[models.UserRole]
}

type permissionService struct {
	repos  PermissionRepositories
	cache  CacheService
	ttl    time.Duration
	strict bool
	logger *logger.Logger
}

// routeGrant is the cached view of one route.
type routeGrant struct {
	Registered bool     `json:"registered"`
	RoleIDs    []string `json:"roleIds"`
}

func NewPermissionService(repos PermissionRepositories, cache CacheService, ttl time.Duration, strict bool, log *logger.Logger) PermissionService {
	return &permissionService{
		repos:  repos,
		cache:  cache,
		ttl:    ttl,
		strict: strict,
		logger: log,
	}
}

// live matches documents that are neither deactivated nor soft deleted.
func live(filter bson.M) bson.M {
	filter["isActive"] = bson.M{"$ne": false}
	filter["isDeleted"] = bson.M{"$ne": true}
	return filter
}

// RouteName derives the route_name stored for a path.
func RouteName(path string) string {
	return strings.ReplaceAll(strings.ToLower(path), "/", "_")
}

func (s *permissionService) userRoleIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	key := utils.CacheKeyUserRoles + userID.Hex()

	var ids []string
	if err := s.cache.Get(ctx, key, &ids); err == nil {
		return ids, nil
	} else if !isCacheMiss(err) {
		s.logger.WithError(err).Warn("Permission cache read failed")
	}

	rows, err := s.repos.UserRoles.Find(ctx, live(bson.M{"userId": userID}), nil)
	if err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(rows))
	for _, row := range rows {
		if row.RoleID != nil {
			ids = append(ids, row.RoleID.Hex())
		}
	}

	if err := s.cache.Set(ctx, key, ids, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Permission cache write failed")
	}
	return ids, nil
}

func (s *permissionService) routeGrant(ctx context.Context, method, path string) (*routeGrant, error) {
	uri := strings.ToLower(path)
	method = strings.ToUpper(method)
	key := utils.CacheKeyRouteRoles + method + ":" + uri

	var grant routeGrant
	if err := s.cache.Get(ctx, key, &grant); err == nil {
		return &grant, nil
	} else if !isCacheMiss(err) {
		s.logger.WithError(err).Warn("Permission cache read failed")
	}

	route, err := s.repos.Routes.FindOne(ctx, live(bson.M{
		"route_name": RouteName(path),
		"uri":        uri,
		"method":     method,
	}))
	switch {
	case IsNotFound(err):
		grant = routeGrant{}
	case err != nil:
		return nil, err
	default:
		rows, err := s.repos.RouteRoles.Find(ctx, live(bson.M{"routeId": route.ID}), nil)
		if err != nil {
			return nil, err
		}
		grant = routeGrant{Registered: true, RoleIDs: make([]string, 0, len(rows))}
		for _, row := range rows {
			if row.RoleID != nil {
				grant.RoleIDs = append(grant.RoleIDs, row.RoleID.Hex())
			}
		}
	}

	if err := s.cache.Set(ctx, key, grant, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Permission cache write failed")
	}
	return &grant, nil
}

// Authorize is permissive for callers without roles and for routes that are
// not registered, unless strict mode is on.
func (s *permissionService) Authorize(ctx context.Context, userID primitive.ObjectID, method, path string) (bool, error) {
	roleIDs, err := s.userRoleIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return !s.strict, nil
	}

	grant, err := s.routeGrant(ctx, method, path)
	if err != nil {
		return false, err
	}
	if !grant.Registered {
		return !s.strict, nil
	}

	held := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}
	for _, id := range grant.RoleIDs {
		if _, ok := held[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *permissionService) RolesOf(ctx context.Context, userID primitive.ObjectID) ([]*models.Role, error) {
	ids, err := s.userRoleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Role{}, nil
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return s.repos.Roles.Find(ctx, live(bson.M{"_id": bson.M{"$in": oids}}), nil)
}

// Invalidate drops every cached permission lookup.
func (s *permissionService) Invalidate(ctx context.Context) {
	if _, err := s.cache.DeletePattern(ctx, utils.CacheKeyPermission+"*"); err != nil {
		s.logger.WithError(err).Warn("Failed to evict permission cache")
	}
}
