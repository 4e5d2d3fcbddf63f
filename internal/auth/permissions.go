package auth

import "searchapp_backend/internal/models"

type Permission string

// RBAC разрешения
const (
	PermSearchCreate   Permission = "searches:create"
	PermSearchEdit     Permission = "searches:edit"
	PermSearchRead     Permission = "searches:read"
	PermSearchReadAll  Permission = "searches:read:company"
	PermReportShare    Permission = "reports:share"
	PermReportRender   Permission = "reports:render"
	PermReportRead     Permission = "reports:read"
	PermSettingsManage Permission = "company:settings:write"
)

// Permissions - разрешения по ролям
var Permissions = map[models.UserRole][]Permission{
	models.UserRoleAdmin: {
		PermSearchCreate,
		PermSearchEdit,
		PermSearchRead,
		PermSearchReadAll,
		PermReportShare,
		PermReportRender,
		PermReportRead,
		PermSettingsManage,
	},
	models.UserRoleBureau: {
		PermSearchEdit,
		PermSearchRead,
		PermSearchReadAll,
		PermReportShare,
		PermReportRender,
		PermReportRead,
		PermSettingsManage,
	},
	models.UserRoleTechnicien: {
		PermSearchCreate,
		PermSearchEdit,
		PermSearchRead,
		PermReportShare,
		PermReportRender,
		PermReportRead,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission Permission) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

// SameCompany - проверка тенанта
func (p Principal) SameCompany(companyID string) bool {
	return p.CompanyID != "" && p.CompanyID == companyID
}
