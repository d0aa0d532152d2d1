package user_test

import (
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type mockUserRepository struct {
	users       map[int64]*user.User
	departments map[int64]int64
	nextID      int64

	lastClearManagedDepartment bool
	lastEntry                  *audit.Entry
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:       make(map[int64]*user.User),
		departments: make(map[int64]int64),
		nextID:      1,
	}
}

func (m *mockUserRepository) add(u *user.User) *user.User {
	if u.ID == 0 {
		u.ID = m.nextID
	}
	if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepository) List(scope authz.Scope, filter user.ListFilter) ([]*user.User, int64, error) {
	var out []*user.User
	for _, u := range m.users {
		switch {
		case scope.All:
		case scope.DivisionID != nil:
			if u.DivisionID == nil || *u.DivisionID != *scope.DivisionID {
				continue
			}
		case scope.DepartmentID != nil:
			if u.DepartmentID == nil || *u.DepartmentID != *scope.DepartmentID {
				continue
			}
		case scope.SelfID != nil:
			if u.ID != *scope.SelfID {
				continue
			}
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return u, nil
}

func (m *mockUserRepository) EmailTaken(email string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UsernameTaken(username string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) EmployeeIDTaken(employeeID string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) DepartmentDivision(departmentID int64) (int64, error) {
	divisionID, ok := m.departments[departmentID]
	if !ok {
		return 0, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	}
	return divisionID, nil
}

func (m *mockUserRepository) Create(u *user.User, entry *audit.Entry) error {
	m.add(u)
	m.lastEntry = entry
	return nil
}

func (m *mockUserRepository) Update(u *user.User, clearManagedDepartment bool, entry *audit.Entry) error {
	m.users[u.ID] = u
	m.lastClearManagedDepartment = clearManagedDepartment
	m.lastEntry = entry
	return nil
}

func (m *mockUserRepository) Delete(id int64, entry *audit.Entry) error {
	delete(m.users, id)
	m.lastEntry = entry
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

var _ = Describe("UserService", func() {
	var (
		repo    *mockUserRepository
		service *user.Service

		admin    authz.Actor
		divMgr   authz.Actor
		employee authz.Actor
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		service = user.NewService(repo, bcrypt.MinCost, slog.Default())

		repo.add(&user.User{ID: 1, Email: "admin@factoryshift.io", Username: "admin", FullName: "Site Admin", Role: authz.RoleAdmin, IsActive: true})
		repo.add(&user.User{ID: 2, Email: "dana@factoryshift.io", Username: "dana", FullName: "Dana Ito", Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10), IsActive: true})
		repo.add(&user.User{ID: 3, Email: "mo@factoryshift.io", Username: "mo", FullName: "Mo Diallo", Role: authz.RoleDepartmentManager, DivisionID: ptrInt64(10), DepartmentID: ptrInt64(100), IsActive: true})
		repo.add(&user.User{ID: 4, Email: "eli@factoryshift.io", Username: "eli", FullName: "Eli Park", Role: authz.RoleEmployee, DivisionID: ptrInt64(20), DepartmentID: ptrInt64(200), IsActive: true})

		repo.departments[100] = 10
		repo.departments[150] = 10
		repo.departments[200] = 20

		admin = authz.Actor{ID: 1, Role: authz.RoleAdmin}
		divMgr = authz.Actor{ID: 2, Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10)}
		employee = authz.Actor{ID: 4, Role: authz.RoleEmployee, DivisionID: ptrInt64(20), DepartmentID: ptrInt64(200)}
	})

	Describe("List", func() {
		It("gives admins the whole directory", func() {
			_, total, err := service.List(admin, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(4)))
		})

		It("limits a division manager to their division", func() {
			users, _, err := service.List(divMgr, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			for _, u := range users {
				Expect(*u.DivisionID).To(Equal(int64(10)))
			}
		})

		It("limits an employee to themselves", func() {
			users, total, err := service.List(employee, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(users[0].ID).To(Equal(int64(4)))
		})

		It("returns an empty page for a manager with no division", func() {
			unassigned := authz.Actor{ID: 9, Role: authz.RoleDivisionManager}
			users, total, err := service.List(unassigned, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
			Expect(users).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("denies an employee reading a coworker", func() {
			_, err := service.Get(employee, 3)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("allows self-read", func() {
			u, err := service.Get(employee, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("eli"))
		})
	})

	Describe("Create", func() {
		validDTO := func() user.CreateUserDTO {
			return user.CreateUserDTO{
				Email:    "newbie@factoryshift.io",
				Username: "newbie",
				Password: "longenough",
				FullName: "New Hire",
				Role:     authz.RoleEmployee,
			}
		}

		It("creates a user with a hashed password and records an audit entry", func() {
			u, err := service.Create(admin, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.PasswordHash).NotTo(Equal("longenough"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough"))).To(Succeed())
			Expect(repo.lastEntry).NotTo(BeNil())
			Expect(repo.lastEntry.Action).To(Equal(audit.ActionCreate))
		})

		It("rejects non-admin actors", func() {
			_, err := service.Create(divMgr, validDTO())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects a taken email with a conflict", func() {
			dto := validDTO()
			dto.Email = "dana@factoryshift.io"
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})

		It("rejects a division_manager with a department assignment", func() {
			dto := validDTO()
			dto.Role = authz.RoleDivisionManager
			dto.DivisionID = ptrInt64(10)
			dto.DepartmentID = ptrInt64(100)
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRoleState))
		})

		It("rejects a department_manager whose department belongs to another division", func() {
			dto := validDTO()
			dto.Role = authz.RoleDepartmentManager
			dto.DivisionID = ptrInt64(20)
			dto.DepartmentID = ptrInt64(100)
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRoleState))
		})

		It("rejects an assignment to a department that does not exist", func() {
			dto := validDTO()
			dto.Role = authz.RoleDepartmentManager
			dto.DivisionID = ptrInt64(10)
			dto.DepartmentID = ptrInt64(999)
			_, err := service.Create(admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentNotFound))
		})
	})

	Describe("Update role transitions", func() {
		It("clears department when promoting to division_manager", func() {
			role := authz.RoleDivisionManager
			u, err := service.Update(admin, 4, user.UpdateUserDTO{Role: &role, DivisionID: ptrInt64(20)})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(authz.RoleDivisionManager))
			Expect(u.DepartmentID).To(BeNil())
		})

		It("releases the managed department when demoting a department manager", func() {
			role := authz.RoleEmployee
			u, err := service.Update(admin, 3, user.UpdateUserDTO{Role: &role})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(authz.RoleEmployee))
			Expect(repo.lastClearManagedDepartment).To(BeTrue())
		})

		It("releases the old back-reference when a department manager moves departments", func() {
			u, err := service.Update(admin, 3, user.UpdateUserDTO{DepartmentID: ptrInt64(150)})
			Expect(err).NotTo(HaveOccurred())
			Expect(*u.DepartmentID).To(Equal(int64(150)))
			Expect(repo.lastClearManagedDepartment).To(BeTrue())
		})

		It("rejects moving a department manager to a department outside their division", func() {
			_, err := service.Update(admin, 3, user.UpdateUserDTO{DepartmentID: ptrInt64(200)})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRoleState))
		})

		It("does not touch the back-reference when the role is unchanged", func() {
			name := "Mo D."
			_, err := service.Update(admin, 3, user.UpdateUserDTO{FullName: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastClearManagedDepartment).To(BeFalse())
		})

		It("refuses a division manager granting admin", func() {
			role := authz.RoleAdmin
			_, err := service.Update(divMgr, 3, user.UpdateUserDTO{Role: &role})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("refuses an employee changing their own role", func() {
			role := authz.RoleAdmin
			_, err := service.Update(employee, 4, user.UpdateUserDTO{Role: &role})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("lets an employee update their own profile fields", func() {
			name := "Eli Parker"
			u, err := service.Update(employee, 4, user.UpdateUserDTO{FullName: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.FullName).To(Equal("Eli Parker"))
		})

		It("rejects renaming to a taken email", func() {
			email := "admin@factoryshift.io"
			_, err := service.Update(admin, 4, user.UpdateUserDTO{Email: &email})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})
	})

	Describe("Delete", func() {
		It("refuses self-deletion with a conflict", func() {
			err := service.Delete(admin, 1)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCannotDeleteSelf))
		})

		It("refuses non-admin actors", func() {
			err := service.Delete(divMgr, 4)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("deletes and audits", func() {
			Expect(service.Delete(admin, 4)).To(Succeed())
			_, err := repo.GetByID(4)
			Expect(err).To(HaveOccurred())
			Expect(repo.lastEntry.Action).To(Equal(audit.ActionDelete))
		})
	})
})
