package notification_test

import (
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/notification"
)

func TestNotificationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationService Suite")
}

type mockNotificationRepository struct {
	recipients map[string][]int64

	batch          []*notification.Notification
	lastEntry      *audit.Entry
	lastDivisionID *int64
}

func (m *mockNotificationRepository) RecipientIDs(target string, specificIDs []int64, divisionID *int64) ([]int64, error) {
	m.lastDivisionID = divisionID
	if target == notification.TargetSpecific {
		return specificIDs, nil
	}
	return m.recipients[target], nil
}

func (m *mockNotificationRepository) CreateBatch(rows []*notification.Notification, entry *audit.Entry) error {
	m.batch = rows
	m.lastEntry = entry
	return nil
}

func (m *mockNotificationRepository) ListForUser(userID int64, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepository) CountsForUser(userID int64) (notification.Counts, error) {
	return notification.Counts{}, nil
}

func (m *mockNotificationRepository) MarkRead(id, userID int64) error   { return nil }
func (m *mockNotificationRepository) MarkAllRead(userID int64) error    { return nil }
func (m *mockNotificationRepository) DeleteOwn(id, userID int64) error  { return nil }

func ptrInt64(v int64) *int64 { return &v }

var _ = Describe("NotificationService", func() {
	var (
		repo    *mockNotificationRepository
		service *notification.Service

		admin    authz.Actor
		divMgr   authz.Actor
		employee authz.Actor
	)

	BeforeEach(func() {
		repo = &mockNotificationRepository{recipients: map[string][]int64{
			notification.TargetAll:       {1, 2, 3},
			notification.TargetEmployees: {3},
		}}
		service = notification.NewService(repo, slog.Default())

		admin = authz.Actor{ID: 1, Role: authz.RoleAdmin}
		divMgr = authz.Actor{ID: 2, Role: authz.RoleDivisionManager, DivisionID: ptrInt64(10)}
		employee = authz.Actor{ID: 3, Role: authz.RoleEmployee}
	})

	Describe("Send", func() {
		It("fans out one row per recipient and audits the send", func() {
			sent, err := service.Send(admin, notification.SendNotificationDTO{
				Title: "Maintenance window", Message: "Line 2 down tonight", Target: notification.TargetAll,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(3))
			Expect(repo.batch).To(HaveLen(3))
			Expect(repo.batch[0].CreatedBy).To(Equal(&admin.ID))
			Expect(repo.lastEntry.Action).To(Equal(audit.ActionSend))
		})

		It("defaults the type to info", func() {
			_, err := service.Send(admin, notification.SendNotificationDTO{
				Title: "t", Message: "m", Target: notification.TargetEmployees,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.batch[0].Type).To(Equal(notification.TypeInfo))
		})

		It("confines a division manager's audience to their division", func() {
			_, err := service.Send(divMgr, notification.SendNotificationDTO{
				Title: "t", Message: "m", Target: notification.TargetAll,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastDivisionID).NotTo(BeNil())
			Expect(*repo.lastDivisionID).To(Equal(int64(10)))
		})

		It("refuses employees", func() {
			_, err := service.Send(employee, notification.SendNotificationDTO{
				Title: "t", Message: "m", Target: notification.TargetAll,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("requires user_ids for specific targeting", func() {
			_, err := service.Send(admin, notification.SendNotificationDTO{
				Title: "t", Message: "m", Target: notification.TargetSpecific,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoRecipients))
		})

		It("fails when nobody matches the audience", func() {
			_, err := service.Send(admin, notification.SendNotificationDTO{
				Title: "t", Message: "m", Target: notification.TargetDepartmentManagers,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoRecipients))
		})
	})
})
