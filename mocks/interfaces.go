package mocks

import (
	"restau/internal/port"
	"restau/internal/service"
)

var (
	_ port.UserRepository       = (*MockUserRepo)(nil)
	_ port.RestaurantRepository = (*MockRestaurantRepo)(nil)
	_ port.AuditRepository      = (*MockAuditRepo)(nil)
	_ port.ReportRepository     = (*MockReportRepo)(nil)
	_ port.ReportSnapshotReader = (*MockSnapshotReader)(nil)
	_ port.MonthlyCache         = (*MockMonthlyCache)(nil)
	_ port.ObjectStorage        = (*MockObjectStorage)(nil)

	_ service.AuthService       = (*MockAuthService)(nil)
	_ service.AuditService      = (*MockAuditService)(nil)
	_ service.RestaurantService = (*MockRestaurantService)(nil)
	_ service.ReportService     = (*MockReportService)(nil)
)
