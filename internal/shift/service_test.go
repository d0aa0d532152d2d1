package shift_test

import (
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/shift"
)

func TestShiftService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ShiftService Suite")
}

type mockShiftRepository struct {
	shifts map[int64]*shift.Shift
	nextID int64
}

func newMockShiftRepository() *mockShiftRepository {
	return &mockShiftRepository{shifts: make(map[int64]*shift.Shift), nextID: 1}
}

func (m *mockShiftRepository) List() ([]*shift.Shift, error) {
	var out []*shift.Shift
	for _, s := range m.shifts {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockShiftRepository) GetByID(id int64) (*shift.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, internal.NewNotFoundError("shift not found", internal.ErrCodeShiftNotFound)
	}
	return s, nil
}

func (m *mockShiftRepository) NameTaken(name string, excludeID int64) (bool, error) {
	for _, s := range m.shifts {
		if s.Name == name && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockShiftRepository) Create(s *shift.Shift, entry *audit.Entry) error {
	s.ID = m.nextID
	m.nextID++
	m.shifts[s.ID] = s
	return nil
}

func (m *mockShiftRepository) Update(s *shift.Shift, entry *audit.Entry) error {
	m.shifts[s.ID] = s
	return nil
}

func (m *mockShiftRepository) Delete(id int64, entry *audit.Entry) error {
	delete(m.shifts, id)
	return nil
}

var _ = Describe("ShiftService", func() {
	var (
		repo    *mockShiftRepository
		service *shift.Service

		admin    authz.Actor
		employee authz.Actor
	)

	BeforeEach(func() {
		repo = newMockShiftRepository()
		service = shift.NewService(repo, slog.Default())

		admin = authz.Actor{ID: 1, Role: authz.RoleAdmin}
		employee = authz.Actor{ID: 2, Role: authz.RoleEmployee}
	})

	It("creates a shift as admin and reads it back as anyone", func() {
		s, err := service.Create(admin, shift.CreateShiftDTO{Name: "Morning", StartTime: "06:00", EndTime: "14:00"})
		Expect(err).NotTo(HaveOccurred())

		got, err := service.Get(employee, s.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.StartTime).To(Equal("06:00"))
	})

	It("refuses shift writes from non-admins", func() {
		_, err := service.Create(employee, shift.CreateShiftDTO{Name: "Night", StartTime: "22:00", EndTime: "06:00"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
	})

	It("rejects duplicate shift names", func() {
		_, err := service.Create(admin, shift.CreateShiftDTO{Name: "Morning", StartTime: "06:00", EndTime: "14:00"})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Create(admin, shift.CreateShiftDTO{Name: "Morning", StartTime: "07:00", EndTime: "15:00"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeShiftNameTaken))
	})
})
