package model

// Privilege codes checked by the HTTP layer.
const (
	PrivProductView   = "product:view"
	PrivProductManage = "product:manage"
	PrivSaleCreate    = "sale:create"
	PrivSaleView      = "sale:view"
	PrivSaleViewAll   = "sale:view_all"
	PrivStockView     = "stock:view"
	PrivStockMove     = "stock:move"
	PrivFinanceView   = "finance:view"
	PrivFinanceManage = "finance:manage"
	PrivDashboardView = "dashboard:view"
	PrivUserManage    = "user:manage"
	PrivReconcile     = "stock:reconcile"
)

var rolePrivileges = map[Role][]string{
	RoleAdmin: {
		PrivProductView, PrivProductManage,
		PrivSaleCreate, PrivSaleView, PrivSaleViewAll,
		PrivStockView, PrivStockMove, PrivReconcile,
		PrivFinanceView, PrivFinanceManage,
		PrivDashboardView, PrivUserManage,
	},
	RoleCashier: {
		PrivProductView,
		PrivSaleCreate, PrivSaleView,
		PrivStockView,
		PrivDashboardView,
	},
}

// PrivilegesFor returns the privilege codes granted to a role.
func PrivilegesFor(r Role) []string {
	return rolePrivileges[r]
}

// HasPrivilege reports whether role r carries code.
func (r Role) HasPrivilege(code string) bool {
	for _, p := range rolePrivileges[r] {
		if p == code {
			return true
		}
	}
	return false
}
