package divisionmanager_test

import (
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/divisionmanager"
	"github.com/frahmantamala/factoryshift/internal/notification"
)

func TestDivisionManagerService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DivisionManagerService Suite")
}

type mockConsoleRepository struct {
	info        *divisionmanager.DivisionInfo
	departments int64
	total       int64
	active      int64
	managers    []divisionmanager.ManagerInfo
	summaries   []divisionmanager.DepartmentSummary
	shifts      int64
}

func (m *mockConsoleRepository) DivisionInfo(divisionID int64) (*divisionmanager.DivisionInfo, error) {
	if m.info == nil || m.info.ID != divisionID {
		return nil, internal.NewNotFoundError("division not found", internal.ErrCodeDivisionNotFound)
	}
	return m.info, nil
}

func (m *mockConsoleRepository) CountDepartments(divisionID int64) (int64, error) {
	return m.departments, nil
}

func (m *mockConsoleRepository) CountEmployees(divisionID int64) (int64, int64, error) {
	return m.total, m.active, nil
}

func (m *mockConsoleRepository) Managers(divisionID int64) ([]divisionmanager.ManagerInfo, error) {
	return m.managers, nil
}

func (m *mockConsoleRepository) Departments(divisionID int64) ([]divisionmanager.DepartmentSummary, error) {
	return m.summaries, nil
}

func (m *mockConsoleRepository) CountActiveShifts() (int64, error) {
	return m.shifts, nil
}

type mockNotifier struct {
	lastActor authz.Actor
	lastDTO   notification.SendNotificationDTO
	sent      int
}

func (m *mockNotifier) Send(actor authz.Actor, dto notification.SendNotificationDTO) (int, error) {
	m.lastActor = actor
	m.lastDTO = dto
	return m.sent, nil
}

func ptrInt64(v int64) *int64 { return &v }

var _ = Describe("DivisionManagerService", func() {
	var (
		repo     *mockConsoleRepository
		notifier *mockNotifier
		service  *divisionmanager.Service

		manager  authz.Actor
		employee authz.Actor
		unplaced authz.Actor
	)

	BeforeEach(func() {
		repo = &mockConsoleRepository{
			info:        &divisionmanager.DivisionInfo{ID: 10, Name: "Production", Color: "blue"},
			departments: 3,
			total:       12,
			active:      10,
			managers: []divisionmanager.ManagerInfo{
				{ID: 2, Name: "Dana Ito", Role: "division_manager"},
				{ID: 3, Name: "Mo Aden", Role: "department_manager"},
			},
			summaries: []divisionmanager.DepartmentSummary{
				{ID: 100, Name: "Line A", Code: "LA", DivisionID: 10, EmployeeCount: 5},
			},
			shifts: 3,
		}
		notifier = &mockNotifier{sent: 4}
		service = divisionmanager.NewService(repo, notifier, slog.Default())

		manager = authz.Actor{ID: 2, Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10)}
		employee = authz.Actor{ID: 4, Role: authz.RoleEmployee, DivisionID: ptrInt64(10)}
		unplaced = authz.Actor{ID: 5, Role: authz.RoleDivisionManager}
	})

	Describe("Overview", func() {
		It("assembles the console payload", func() {
			overview, err := service.Overview(manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(overview.DivisionInfo.Name).To(Equal("Production"))
			Expect(overview.Statistics.TotalEmployees).To(Equal(int64(12)))
			Expect(overview.Statistics.InactiveEmployees).To(Equal(int64(2)))
			Expect(overview.Statistics.ManagersCount).To(Equal(2))
			Expect(overview.Settings).To(HaveKeyWithValue("max_overtime_hours", 20))
			Expect(overview.SystemStatus).To(HaveKeyWithValue("notification_system", "active"))
		})

		It("rejects employees", func() {
			_, err := service.Overview(employee)
			appErr, ok := err.(*internal.AppError)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeScopeDenied))
		})

		It("rejects a manager without a division", func() {
			_, err := service.Overview(unplaced)
			appErr, ok := err.(*internal.AppError)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoDivisionAssigned))
		})
	})

	Describe("Stats", func() {
		It("reports division figures with placeholder attendance", func() {
			stats, err := service.Stats(manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Division.ID).To(Equal(int64(10)))
			Expect(stats.Figures.TotalDepartments).To(Equal(int64(3)))
			Expect(stats.Figures.ActiveEmployees).To(Equal(int64(10)))
			Expect(stats.Figures.TodayAttendance).To(Equal(92.5))
			Expect(stats.Figures.PendingApprovals).To(Equal(2))
		})
	})

	Describe("Departments", func() {
		It("lists department summaries", func() {
			departments, err := service.Departments(manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(departments).To(HaveLen(1))
			Expect(departments[0].EmployeeCount).To(Equal(int64(5)))
		})
	})

	Describe("PendingApprovals", func() {
		It("returns the placeholder inbox", func() {
			approvals, err := service.PendingApprovals(manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals.DivisionID).To(Equal(int64(10)))
			Expect(approvals.TotalPending).To(Equal(2))
			Expect(approvals.Approvals).To(HaveLen(2))
		})
	})

	Describe("SendNotification", func() {
		It("delegates to the notification service", func() {
			dto := notification.SendNotificationDTO{Title: "Shift change", Message: "Line A moves to night shift", Target: "employees"}
			sent, err := service.SendNotification(manager, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(4))
			Expect(notifier.lastActor.ID).To(Equal(manager.ID))
			Expect(notifier.lastDTO.Title).To(Equal("Shift change"))
		})

		It("never reaches the notifier for employees", func() {
			_, err := service.SendNotification(employee, notification.SendNotificationDTO{Title: "x", Message: "y", Target: "all"})
			Expect(err).To(HaveOccurred())
			Expect(notifier.lastDTO.Title).To(BeEmpty())
		})
	})
})
