package dashboard_test

import (
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/dashboard"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DashboardService Suite")
}

type mockDashboardRepository struct {
	divisions   int64
	departments map[int64]int64
	users       map[int64]int64
	deptUsers   map[int64]int64
	shifts      int64

	entries []dashboard.ActivityRow
	logins  []dashboard.ActivityRow
	own     []dashboard.ActivityRow
}

func (m *mockDashboardRepository) CountDivisions() (int64, error) {
	return m.divisions, nil
}

func (m *mockDashboardRepository) CountDepartments(divisionID *int64) (int64, error) {
	if divisionID == nil {
		var total int64
		for _, c := range m.departments {
			total += c
		}
		return total, nil
	}
	return m.departments[*divisionID], nil
}

func (m *mockDashboardRepository) CountUsers(divisionID, departmentID *int64) (int64, error) {
	if departmentID != nil {
		return m.deptUsers[*departmentID], nil
	}
	if divisionID != nil {
		return m.users[*divisionID], nil
	}
	var total int64
	for _, c := range m.users {
		total += c
	}
	return total, nil
}

func (m *mockDashboardRepository) CountShifts() (int64, error) {
	return m.shifts, nil
}

func (m *mockDashboardRepository) RecentEntries(limit int) ([]dashboard.ActivityRow, error) {
	return m.entries, nil
}

func (m *mockDashboardRepository) RecentLogins(limit int) ([]dashboard.ActivityRow, error) {
	return m.logins, nil
}

func (m *mockDashboardRepository) RecentEntriesForUser(userID int64, limit int) ([]dashboard.ActivityRow, error) {
	return m.own, nil
}

func (m *mockDashboardRepository) DivisionOverview(divisionID *int64) ([]dashboard.DivisionSummary, error) {
	all := []dashboard.DivisionSummary{
		{ID: 10, Name: "Production"},
		{ID: 20, Name: "Logistics"},
	}
	if divisionID == nil {
		return all, nil
	}
	var out []dashboard.DivisionSummary
	for _, s := range all {
		if s.ID == *divisionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func ptrInt64(v int64) *int64 { return &v }

var _ = Describe("DashboardService", func() {
	var (
		repo    *mockDashboardRepository
		service *dashboard.Service
	)

	BeforeEach(func() {
		repo = &mockDashboardRepository{
			divisions:   2,
			departments: map[int64]int64{10: 3, 20: 2},
			users:       map[int64]int64{10: 12, 20: 8},
			deptUsers:   map[int64]int64{100: 5},
			shifts:      3,
		}
		service = dashboard.NewService(repo, slog.Default())
	})

	Describe("Stats", func() {
		It("counts the whole plant for admin", func() {
			stats, err := service.Stats(authz.Actor{ID: 1, Role: authz.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalDivisions).To(Equal(int64(2)))
			Expect(stats.TotalDepartments).To(Equal(int64(5)))
			Expect(stats.TotalEmployees).To(Equal(int64(20)))
			Expect(stats.ActiveShifts).To(Equal(int64(3)))
			Expect(stats.PendingApprovals).To(Equal(3))
		})

		It("confines a division manager to their division", func() {
			stats, err := service.Stats(authz.Actor{ID: 2, Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10)})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalDivisions).To(Equal(int64(1)))
			Expect(stats.TotalDepartments).To(Equal(int64(3)))
			Expect(stats.TotalEmployees).To(Equal(int64(12)))
		})

		It("confines a department manager to their department", func() {
			stats, err := service.Stats(authz.Actor{ID: 3, Role: authz.RoleDepartmentManager, DepartmentID: ptrInt64(100)})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalDepartments).To(Equal(int64(1)))
			Expect(stats.TotalEmployees).To(Equal(int64(5)))
		})

		It("shows an employee only themselves", func() {
			stats, err := service.Stats(authz.Actor{ID: 4, Role: authz.RoleEmployee})
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalDivisions).To(BeZero())
			Expect(stats.TotalEmployees).To(Equal(int64(1)))
			Expect(stats.TodayAttendance).To(Equal(100.0))
		})
	})

	Describe("RecentActivity", func() {
		BeforeEach(func() {
			now := time.Now()
			repo.entries = []dashboard.ActivityRow{{ID: 1, Action: "create", Resource: "users", UserName: "Site Admin", CreatedAt: now}}
			repo.logins = []dashboard.ActivityRow{{ID: 2, Action: "login", Resource: "auth", UserName: "Dana Ito", CreatedAt: now}}
			repo.own = []dashboard.ActivityRow{{ID: 3, Action: "update", Resource: "users", CreatedAt: now}}
		})

		It("feeds admins the raw audit trail", func() {
			activities, err := service.RecentActivity(authz.Actor{ID: 1, Role: authz.RoleAdmin}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities).To(HaveLen(1))
			Expect(activities[0].Type).To(Equal("audit"))
		})

		It("feeds managers recent logins", func() {
			activities, err := service.RecentActivity(authz.Actor{ID: 2, Role: authz.RoleDivisionManager}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities[0].Type).To(Equal("login"))
		})

		It("labels unattributed entries as System", func() {
			activities, err := service.RecentActivity(authz.Actor{ID: 4, Role: authz.RoleEmployee}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities[0].User).To(Equal("System"))
		})
	})

	Describe("DivisionOverview", func() {
		It("lists every division for admin", func() {
			overview, err := service.DivisionOverview(authz.Actor{ID: 1, Role: authz.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(overview).To(HaveLen(2))
		})

		It("lists only the actor's division otherwise", func() {
			overview, err := service.DivisionOverview(authz.Actor{ID: 2, Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10)})
			Expect(err).NotTo(HaveOccurred())
			Expect(overview).To(HaveLen(1))
			Expect(overview[0].Name).To(Equal("Production"))
		})

		It("returns nothing for the unassigned", func() {
			overview, err := service.DivisionOverview(authz.Actor{ID: 4, Role: authz.RoleEmployee})
			Expect(err).NotTo(HaveOccurred())
			Expect(overview).To(BeEmpty())
		})
	})
})
