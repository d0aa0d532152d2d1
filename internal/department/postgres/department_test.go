package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditpg "github.com/frahmantamala/factoryshift/internal/audit/postgres"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/department"
)

func TestDepartmentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DepartmentRepository Suite")
}

type SQLiteDivision struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (SQLiteDivision) TableName() string {
	return "divisions"
}

type SQLiteDepartment struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Description *string   `gorm:"column:description"`
	DivisionID  int64     `gorm:"column:division_id;not null"`
	ManagerID   *int64    `gorm:"column:manager_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
}

type SQLiteUser struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"column:username"`
	Role         string `gorm:"column:role"`
	DivisionID   *int64 `gorm:"column:division_id"`
	DepartmentID *int64 `gorm:"column:department_id"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteAuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     *int64    `gorm:"column:user_id"`
	Action     string    `gorm:"column:action;not null"`
	Resource   string    `gorm:"column:resource;not null"`
	ResourceID *int64    `gorm:"column:resource_id"`
	Details    []byte    `gorm:"column:details"`
	IPAddress  *string   `gorm:"column:ip_address"`
	UserAgent  *string   `gorm:"column:user_agent"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (SQLiteAuditLog) TableName() string {
	return "audit_logs"
}

func ptrInt64(v int64) *int64 { return &v }

var _ = Describe("DepartmentRepository", func() {
	var (
		db   *gorm.DB
		repo department.RepositoryAPI
	)

	actorID := int64(1)

	mustEntry := func(action string) *audit.Entry {
		entry, err := audit.NewEntry(&actorID, action, "departments", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		return entry
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDivision{}, &SQLiteDepartment{}, &SQLiteUser{}, &SQLiteAuditLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewDepartmentRepository(db, auditpg.NewAuditRepository(db))

		Expect(db.Create(&SQLiteDivision{ID: 10, Name: "Production"}).Error).To(Succeed())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("AssignManager", func() {
		var dept *department.Department

		BeforeEach(func() {
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "Assembly", Code: "ASM", DivisionID: 10, ManagerID: ptrInt64(5)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 5, Username: "old", Role: "department_manager", DivisionID: ptrInt64(10), DepartmentID: ptrInt64(1)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 6, Username: "new", Role: "employee", DivisionID: ptrInt64(30)}).Error).To(Succeed())

			var err error
			dept, err = repo.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("updates manager, department and prior manager in one pass", func() {
			Expect(repo.AssignManager(dept, 6, mustEntry(audit.ActionAssign))).To(Succeed())

			var promoted SQLiteUser
			Expect(db.First(&promoted, 6).Error).To(Succeed())
			Expect(promoted.Role).To(Equal("department_manager"))
			Expect(*promoted.DivisionID).To(Equal(int64(10)))
			Expect(*promoted.DepartmentID).To(Equal(int64(1)))

			var row SQLiteDepartment
			Expect(db.First(&row, 1).Error).To(Succeed())
			Expect(*row.ManagerID).To(Equal(int64(6)))

			var demoted SQLiteUser
			Expect(db.First(&demoted, 5).Error).To(Succeed())
			Expect(demoted.Role).To(Equal("employee"))
		})

		It("demotes by manager_id identity, not by role scan", func() {
			// A department_manager of another department must survive.
			Expect(db.Create(&SQLiteUser{ID: 7, Username: "bystander", Role: "department_manager", DivisionID: ptrInt64(10), DepartmentID: ptrInt64(2)}).Error).To(Succeed())

			Expect(repo.AssignManager(dept, 6, mustEntry(audit.ActionAssign))).To(Succeed())

			var bystander SQLiteUser
			Expect(db.First(&bystander, 7).Error).To(Succeed())
			Expect(bystander.Role).To(Equal("department_manager"))
		})

		It("clears the back-reference of a department the new manager used to run", func() {
			Expect(db.Create(&SQLiteDepartment{ID: 2, Name: "Welding", Code: "WLD", DivisionID: 10, ManagerID: ptrInt64(8)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 8, Username: "moving", Role: "department_manager", DivisionID: ptrInt64(10), DepartmentID: ptrInt64(2)}).Error).To(Succeed())

			Expect(repo.AssignManager(dept, 8, mustEntry(audit.ActionAssign))).To(Succeed())

			var vacated SQLiteDepartment
			Expect(db.First(&vacated, 2).Error).To(Succeed())
			Expect(vacated.ManagerID).To(BeNil())

			var moved SQLiteUser
			Expect(db.First(&moved, 8).Error).To(Succeed())
			Expect(*moved.DepartmentID).To(Equal(int64(1)))
			Expect(moved.Role).To(Equal("department_manager"))
		})

		It("is a no-op demotion when reassigning the same manager", func() {
			Expect(repo.AssignManager(dept, 5, mustEntry(audit.ActionAssign))).To(Succeed())

			var current SQLiteUser
			Expect(db.First(&current, 5).Error).To(Succeed())
			Expect(current.Role).To(Equal("department_manager"))
		})
	})

	Describe("RemoveManager", func() {
		It("demotes the assigned manager and clears the back-reference", func() {
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "Assembly", Code: "ASM", DivisionID: 10, ManagerID: ptrInt64(5)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 5, Username: "mgr", Role: "department_manager", DivisionID: ptrInt64(10), DepartmentID: ptrInt64(1)}).Error).To(Succeed())

			dept, err := repo.GetByID(1)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RemoveManager(dept, mustEntry(audit.ActionRemove))).To(Succeed())

			var row SQLiteDepartment
			Expect(db.First(&row, 1).Error).To(Succeed())
			Expect(row.ManagerID).To(BeNil())

			var demoted SQLiteUser
			Expect(db.First(&demoted, 5).Error).To(Succeed())
			Expect(demoted.Role).To(Equal("employee"))
		})
	})

	Describe("EmployeeCount", func() {
		It("counts users assigned to the department", func() {
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "Assembly", Code: "ASM", DivisionID: 10}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 5, Username: "a", Role: "employee", DepartmentID: ptrInt64(1)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 6, Username: "b", Role: "employee", DepartmentID: ptrInt64(1)}).Error).To(Succeed())

			count, err := repo.EmployeeCount(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})
})
