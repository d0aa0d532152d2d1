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
	"github.com/frahmantamala/factoryshift/internal/division"
)

func TestDivisionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DivisionRepository Suite")
}

type SQLiteDivision struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string   `gorm:"column:description"`
	Color       string    `gorm:"default:blue"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SQLiteDivision) TableName() string {
	return "divisions"
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

type SQLiteDepartment struct {
	ID         int64  `gorm:"primaryKey"`
	DivisionID int64  `gorm:"column:division_id"`
	ManagerID  *int64 `gorm:"column:manager_id"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
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

var _ = Describe("DivisionRepository", func() {
	var (
		db   *gorm.DB
		repo division.RepositoryAPI
	)

	actorID := int64(1)

	mustEntry := func(action string) *audit.Entry {
		entry, err := audit.NewEntry(&actorID, action, "divisions", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		return entry
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDivision{}, &SQLiteUser{}, &SQLiteDepartment{}, &SQLiteAuditLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewDivisionRepository(db, auditpg.NewAuditRepository(db))
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Usage", func() {
		It("counts dependent departments and users", func() {
			Expect(db.Create(&SQLiteDivision{ID: 10, Name: "Production"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteDepartment{ID: 1, DivisionID: 10}).Error).To(Succeed())
			Expect(db.Create(&SQLiteDepartment{ID: 2, DivisionID: 10}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 1, Username: "a", Role: "employee", DivisionID: ptrInt64(10)}).Error).To(Succeed())

			usage, err := repo.Usage(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(usage.Departments).To(Equal(int64(2)))
			Expect(usage.Users).To(Equal(int64(1)))
		})
	})

	Describe("AssignManager", func() {
		BeforeEach(func() {
			Expect(db.Create(&SQLiteDivision{ID: 10, Name: "Production"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 5, Username: "old", Role: "division_manager", DivisionID: ptrInt64(10)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 6, Username: "new", Role: "employee", DivisionID: ptrInt64(10), DepartmentID: ptrInt64(3)}).Error).To(Succeed())
		})

		It("promotes the new manager and demotes the prior one atomically", func() {
			Expect(repo.AssignManager(10, 6, mustEntry(audit.ActionAssign))).To(Succeed())

			var promoted SQLiteUser
			Expect(db.First(&promoted, 6).Error).To(Succeed())
			Expect(promoted.Role).To(Equal("division_manager"))
			Expect(*promoted.DivisionID).To(Equal(int64(10)))
			Expect(promoted.DepartmentID).To(BeNil())

			var demoted SQLiteUser
			Expect(db.First(&demoted, 5).Error).To(Succeed())
			Expect(demoted.Role).To(Equal("employee"))
		})

		It("releases the department a promoted user used to manage", func() {
			Expect(db.Create(&SQLiteDepartment{ID: 3, DivisionID: 10, ManagerID: ptrInt64(6)}).Error).To(Succeed())

			Expect(repo.AssignManager(10, 6, mustEntry(audit.ActionAssign))).To(Succeed())

			var vacated SQLiteDepartment
			Expect(db.First(&vacated, 3).Error).To(Succeed())
			Expect(vacated.ManagerID).To(BeNil())
		})

		It("leaves managers of other divisions untouched", func() {
			Expect(db.Create(&SQLiteUser{ID: 7, Username: "other", Role: "division_manager", DivisionID: ptrInt64(20)}).Error).To(Succeed())

			Expect(repo.AssignManager(10, 6, mustEntry(audit.ActionAssign))).To(Succeed())

			var other SQLiteUser
			Expect(db.First(&other, 7).Error).To(Succeed())
			Expect(other.Role).To(Equal("division_manager"))
		})
	})

	Describe("RemoveManager", func() {
		It("demotes exactly the division's manager", func() {
			Expect(db.Create(&SQLiteDivision{ID: 10, Name: "Production"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{ID: 5, Username: "mgr", Role: "division_manager", DivisionID: ptrInt64(10)}).Error).To(Succeed())

			Expect(repo.RemoveManager(10, mustEntry(audit.ActionRemove))).To(Succeed())

			var u SQLiteUser
			Expect(db.First(&u, 5).Error).To(Succeed())
			Expect(u.Role).To(Equal("employee"))
		})
	})
})
