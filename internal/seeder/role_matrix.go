package seeder

import "strings"

const (
	RoleAdmin      = "Admin"
	RoleSeller     = "Seller"
	RoleSystemUser = "System_User"
	RoleCustomer   = "Customer"
)

var defaultRoles = []string{RoleAdmin, RoleSeller, RoleSystemUser, RoleCustomer}

// RoleCode is the stored code of a role name.
func RoleCode(name string) string {
	return strings.ToUpper(name)
}

type operation struct {
	method string
	path   string
}

var (
	opGet            = operation{"GET", "/:id"}
	opList           = operation{"POST", "/list"}
	opCount          = operation{"POST", "/count"}
	opCreate         = operation{"POST", "/create"}
	opAddBulk        = operation{"POST", "/addbulk"}
	opUpdate         = operation{"PUT", "/update/:id"}
	opPartialUpdate  = operation{"PUT", "/partial-update/:id"}
	opUpdateBulk     = operation{"PUT", "/updatebulk"}
	opSoftDelete     = operation{"PUT", "/softdelete/:id"}
	opSoftDeleteMany = operation{"PUT", "/softdeletemany"}
	opDelete         = operation{"DELETE", "/delete/:id"}
	opDeleteMany     = operation{"POST", "/deletemany"}
)

var (
	readOps   = []operation{opGet, opList, opCount}
	updateOps = []operation{opUpdate, opPartialUpdate, opUpdateBulk}
	writeOps  = concat(readOps, []operation{opCreate, opAddBulk}, updateOps)
	fullOps   = concat(writeOps, []operation{opSoftDelete, opSoftDeleteMany, opDelete, opDeleteMany})
)

func concat(groups ...[]operation) []operation {
	var out []operation
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// roleMatrix lists, per entity path, the operations each role may call.
// System_User is granted everything separately.
var roleMatrix = map[string]map[string][]operation{
	"asset": {
		RoleAdmin:    fullOps,
		RoleSeller:   fullOps,
		RoleCustomer: readOps,
	},
	"assetcategory": {
		RoleAdmin:    fullOps,
		RoleSeller:   writeOps,
		RoleCustomer: readOps,
	},
	"order": {
		RoleAdmin:    fullOps,
		RoleSeller:   concat(readOps, updateOps),
		RoleCustomer: writeOps,
	},
	"state": {
		RoleAdmin:    fullOps,
		RoleSeller:   readOps,
		RoleCustomer: readOps,
	},
	"user": {
		RoleAdmin:    fullOps,
		RoleSeller:   writeOps,
		RoleCustomer: writeOps,
	},
	"wallet": {
		RoleAdmin:    fullOps,
		RoleCustomer: writeOps,
	},
	"wallettransaction": {
		RoleAdmin:    fullOps,
		RoleCustomer: concat(readOps, []operation{opCreate, opAddBulk}),
	},
}

// Grant is one route-role row to seed.
type Grant struct {
	URI    string
	Method string
	Role   string
}

// Grants expands the matrix for the given entity paths. System_User gets
// every operation of every entity.
func Grants(entityPaths []string) []Grant {
	var out []Grant
	for _, entity := range entityPaths {
		for _, role := range defaultRoles {
			ops := roleMatrix[entity][role]
			if role == RoleSystemUser {
				ops = fullOps
			}
			for _, op := range ops {
				out = append(out, Grant{
					URI:    "/admin/" + entity + op.path,
					Method: op.method,
					Role:   role,
				})
			}
		}
	}
	return out
}
