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
	"github.com/frahmantamala/factoryshift/internal/notification"
)

func TestNotificationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationRepository Suite")
}

type SQLiteUser struct {
	ID         int64  `gorm:"primaryKey"`
	Username   string `gorm:"column:username"`
	Role       string `gorm:"column:role"`
	DivisionID *int64 `gorm:"column:division_id"`
	IsActive   bool   `gorm:"column:is_active"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteNotification struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null"`
	Title     string     `gorm:"not null"`
	Message   string     `gorm:"not null"`
	Type      string     `gorm:"default:info"`
	Read      bool       `gorm:"default:false"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedBy *int64     `gorm:"column:created_by"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (SQLiteNotification) TableName() string {
	return "notifications"
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

var _ = Describe("NotificationRepository", func() {
	var (
		db   *gorm.DB
		repo notification.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteNotification{}, &SQLiteAuditLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewNotificationRepository(db, auditpg.NewAuditRepository(db))

		Expect(db.Create(&SQLiteUser{ID: 1, Username: "admin", Role: "admin", IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&SQLiteUser{ID: 2, Username: "dana", Role: "division_manager", DivisionID: ptrInt64(10), IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&SQLiteUser{ID: 3, Username: "eli", Role: "employee", DivisionID: ptrInt64(10), IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&SQLiteUser{ID: 4, Username: "gone", Role: "employee", DivisionID: ptrInt64(10), IsActive: false}).Error).To(Succeed())
		Expect(db.Create(&SQLiteUser{ID: 5, Username: "far", Role: "employee", DivisionID: ptrInt64(20), IsActive: true}).Error).To(Succeed())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("RecipientIDs", func() {
		It("targets all active users", func() {
			ids, err := repo.RecipientIDs(notification.TargetAll, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(1), int64(2), int64(3), int64(5)))
		})

		It("skips inactive users even when named specifically", func() {
			ids, err := repo.RecipientIDs(notification.TargetSpecific, []int64{3, 4}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(3)))
		})

		It("confines the audience to a division when asked", func() {
			ids, err := repo.RecipientIDs(notification.TargetEmployees, nil, ptrInt64(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(3)))
		})

		It("targets a single role", func() {
			ids, err := repo.RecipientIDs(notification.TargetDivisionManagers, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(2)))
		})
	})

	Describe("CreateBatch", func() {
		It("writes all rows plus the audit entry together", func() {
			actorID := int64(1)
			entry, err := audit.NewEntry(&actorID, audit.ActionSend, "notifications", nil, nil)
			Expect(err).NotTo(HaveOccurred())

			rows := []*notification.Notification{
				{UserID: 2, Title: "t", Message: "m", Type: "info", CreatedBy: &actorID},
				{UserID: 3, Title: "t", Message: "m", Type: "info", CreatedBy: &actorID},
			}
			Expect(repo.CreateBatch(rows, entry)).To(Succeed())

			var notifCount, auditCount int64
			Expect(db.Table("notifications").Count(&notifCount).Error).To(Succeed())
			Expect(db.Table("audit_logs").Count(&auditCount).Error).To(Succeed())
			Expect(notifCount).To(Equal(int64(2)))
			Expect(auditCount).To(Equal(int64(1)))
		})
	})

	Describe("Inbox operations", func() {
		BeforeEach(func() {
			Expect(db.Create(&SQLiteNotification{ID: 1, UserID: 3, Title: "a", Message: "m"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteNotification{ID: 2, UserID: 3, Title: "b", Message: "m"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteNotification{ID: 3, UserID: 2, Title: "c", Message: "m"}).Error).To(Succeed())
		})

		It("lists only the user's own rows with counts", func() {
			rows, total, err := repo.ListForUser(3, false, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(rows).To(HaveLen(2))

			counts, err := repo.CountsForUser(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts.Total).To(Equal(int64(2)))
			Expect(counts.Unread).To(Equal(int64(2)))
		})

		It("marks one as read and filters unread", func() {
			Expect(repo.MarkRead(1, 3)).To(Succeed())

			rows, total, err := repo.ListForUser(3, true, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(rows[0].ID).To(Equal(int64(2)))
		})

		It("refuses to mark someone else's notification", func() {
			err := repo.MarkRead(3, 3)
			Expect(err).To(HaveOccurred())
		})

		It("marks all read", func() {
			Expect(repo.MarkAllRead(3)).To(Succeed())
			counts, err := repo.CountsForUser(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts.Unread).To(BeZero())
		})

		It("deletes only own rows", func() {
			Expect(repo.DeleteOwn(1, 3)).To(Succeed())
			err := repo.DeleteOwn(3, 3)
			Expect(err).To(HaveOccurred())

			counts, err := repo.CountsForUser(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(counts.Total).To(Equal(int64(1)))
		})
	})
})
