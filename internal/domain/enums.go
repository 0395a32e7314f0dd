package domain

// Role is the closed set of user roles.
type Role string

const (
	RoleDev      Role = "DEV"
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleReadonly Role = "READONLY"
)

// AllRoles lists every role, most privileged first.
var AllRoles = []Role{RoleDev, RoleAdmin, RoleManager, RoleReadonly}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDev, RoleAdmin, RoleManager, RoleReadonly:
		return true
	}
	return false
}

// ClientCodeBK is the upstream source code stamped on every ingested report.
const ClientCodeBK = "BK"

// AuditAction names an entry in the audit trail.
type AuditAction string

const (
	AuditLoginSuccess   AuditAction = "auth.login.success"
	AuditLoginFailed    AuditAction = "auth.login.failed"
	AuditRefreshSuccess AuditAction = "auth.refresh.success"
	AuditRefreshFailed  AuditAction = "auth.refresh.failed"
	AuditLogout         AuditAction = "auth.logout"
	AuditMe             AuditAction = "auth.me"
	AuditTokenInvalid   AuditAction = "auth.token.invalid"
	AuditForbidden      AuditAction = "auth.forbidden"
	AuditReportUpload   AuditAction = "report.bk.upload"
	AuditReportDelete   AuditAction = "report.bk.delete"
	AuditReportKPI      AuditAction = "report.bk.kpi.update"
	AuditRead           AuditAction = "audit.read"
)

// ExportFormat selects the monthly recap rendering.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
