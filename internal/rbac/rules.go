package rbac

const (
	PermManage   = "grading:manage"
	PermGrade    = "grading:grade"
	PermViewAll  = "grading:viewall"
	PermViewOwn  = "grading:view-own"
	PermOverride = "grading:override" // 可以操作其他评分人的实例
	PermAdmin    = "admin:users"
)

// RolePermissions 默认策略
var RolePermissions = map[string][]string{
	"student": {
		PermViewOwn,
	},
	"teacher": {
		PermManage,
		PermGrade,
		PermViewAll,
		PermViewOwn,
	},
	"admin": {
		"*",
	},
}
