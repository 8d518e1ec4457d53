package models

// Entity describes one administered collection.
type Entity struct {
	// Name is the key used in cascade result maps, e.g. "assetCategory".
	Name string
	// Path is the route segment under /admin, e.g. "assetcategory".
	Path       string
	Collection string
}

var (
	AdminEntity             = Entity{Name: "admin", Path: "admin", Collection: "admins"}
	UserEntity              = Entity{Name: "user", Path: "user", Collection: "users"}
	AssetEntity             = Entity{Name: "asset", Path: "asset", Collection: "assets"}
	AssetCategoryEntity     = Entity{Name: "assetCategory", Path: "assetcategory", Collection: "assetcategories"}
	EarningsEntity          = Entity{Name: "earnings", Path: "earnings", Collection: "earnings"}
	OrderEntity             = Entity{Name: "order", Path: "order", Collection: "orders"}
	StateEntity             = Entity{Name: "state", Path: "state", Collection: "states"}
	WalletEntity            = Entity{Name: "wallet", Path: "wallet", Collection: "wallets"}
	WalletTransactionEntity = Entity{Name: "walletTransaction", Path: "wallettransaction", Collection: "wallettransactions"}
	UserTokensEntity        = Entity{Name: "userTokens", Path: "usertokens", Collection: "usertokens"}
	ActivityLogEntity       = Entity{Name: "activityLog", Path: "activitylog", Collection: "activitylogs"}
	RoleEntity              = Entity{Name: "role", Path: "role", Collection: "roles"}
	ProjectRouteEntity      = Entity{Name: "projectRoute", Path: "projectroute", Collection: "projectroutes"}
	RouteRoleEntity         = Entity{Name: "routeRole", Path: "routerole", Collection: "routeroles"}
	UserRoleEntity          = Entity{Name: "userRole", Path: "userrole", Collection: "userroles"}
)

func Entities() []Entity {
	return []Entity{
		AdminEntity,
		UserEntity,
		AssetEntity,
		AssetCategoryEntity,
		EarningsEntity,
		OrderEntity,
		StateEntity,
		WalletEntity,
		WalletTransactionEntity,
		UserTokensEntity,
		ActivityLogEntity,
		RoleEntity,
		ProjectRouteEntity,
		RouteRoleEntity,
		UserRoleEntity,
	}
}
