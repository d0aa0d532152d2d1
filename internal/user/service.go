package user

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
)

type ServiceAPI interface {
	List(actor authz.Actor, filter ListFilter) ([]*User, int64, error)
	Get(actor authz.Actor, id int64) (*User, error)
	Create(actor authz.Actor, dto CreateUserDTO) (*User, error)
	Update(actor authz.Actor, id int64, dto UpdateUserDTO) (*User, error)
	Delete(actor authz.Actor, id int64) error
}

// EventPublisher is the slice of the event bus the service publishes on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns account lifecycle rules: uniqueness, role transitions and
// the manager back-reference bookkeeping that goes with them.
type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	events     EventPublisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// SetEventPublisher attaches an event bus; a nil publisher disables
// publishing.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.events = p
}

func (s *Service) List(actor authz.Actor, filter ListFilter) ([]*User, int64, error) {
	scope := authz.UserScope(actor)
	if scope.Empty {
		return []*User{}, 0, nil
	}
	return s.repo.List(scope, filter)
}

func (s *Service) Get(actor authz.Actor, id int64) (*User, error) {
	target, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d := authz.CanSeeUser(actor, target.Ref()); !d.Allowed() {
		return nil, internal.NewForbiddenError(d.Reason(), internal.ErrCodeScopeDenied)
	}
	return target, nil
}

func (s *Service) Create(actor authz.Actor, dto CreateUserDTO) (*User, error) {
	if actor.Role != authz.RoleAdmin {
		return nil, internal.NewForbiddenError("only admin can create users", internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkUniqueness(dto.Email, dto.Username, dto.EmployeeID, 0); err != nil {
		return nil, err
	}
	if !authz.AdmissibleComposite(dto.Role, dto.DivisionID, dto.DepartmentID) {
		return nil, internal.NewValidationError(
			fmt.Sprintf("role %s is not compatible with the given division/department assignment", dto.Role),
			internal.ErrCodeInvalidRoleState)
	}
	if err := s.checkDepartmentPlacement(dto.DivisionID, dto.DepartmentID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}

	u := &User{
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: string(hash),
		FullName:     dto.FullName,
		EmployeeID:   dto.EmployeeID,
		Role:         dto.Role,
		DivisionID:   dto.DivisionID,
		DepartmentID: dto.DepartmentID,
		AvatarURL:    dto.AvatarURL,
		IsActive:     active,
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionCreate, "users", nil, map[string]interface{}{
		"username": u.Username,
		"role":     u.Role,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Create(u, entry); err != nil {
		s.logger.Error("create user failed", "error", err, "username", dto.Username)
		return nil, err
	}

	if s.events != nil {
		_ = s.events.Publish(context.Background(), events.NewUserCreatedEvent(u.ID, u.Email, string(u.Role)))
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "actor_id", actor.ID)
	return u, nil
}

func (s *Service) Update(actor authz.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if d := authz.CanMutateUser(actor, target.Ref()); !d.Allowed() {
		return nil, internal.NewForbiddenError(d.Reason(), internal.ErrCodeScopeDenied)
	}
	if dto.touchesManagedFields() && actor.Role != authz.RoleAdmin && actor.Role != authz.RoleDivisionManager {
		return nil, internal.NewForbiddenError("not enough permissions to change assignments", internal.ErrCodeScopeDenied)
	}

	newEmail := target.Email
	if dto.Email != nil {
		newEmail = *dto.Email
	}
	newUsername := target.Username
	if dto.Username != nil {
		newUsername = *dto.Username
	}
	newEmployeeID := target.EmployeeID
	if dto.EmployeeID != nil {
		newEmployeeID = dto.EmployeeID
	}
	if err := s.checkUniqueness(newEmail, newUsername, newEmployeeID, id); err != nil {
		return nil, err
	}

	priorRole := target.Role
	priorDepartmentID := target.DepartmentID
	newRole := priorRole
	if dto.Role != nil && *dto.Role != priorRole {
		newRole = *dto.Role
		if d := authz.CanChangeRole(actor, target.Ref(), newRole); !d.Allowed() {
			return nil, internal.NewForbiddenError(d.Reason(), internal.ErrCodeScopeDenied)
		}
	}

	target.Email = newEmail
	target.Username = newUsername
	target.EmployeeID = newEmployeeID
	target.Role = newRole
	if dto.FullName != nil {
		target.FullName = *dto.FullName
	}
	if dto.AvatarURL != nil {
		target.AvatarURL = dto.AvatarURL
	}
	if dto.IsActive != nil {
		target.IsActive = *dto.IsActive
	}
	if dto.DivisionID != nil {
		target.DivisionID = dto.DivisionID
	}
	if dto.DepartmentID != nil {
		target.DepartmentID = dto.DepartmentID
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		target.PasswordHash = string(hash)
	}

	// Promotion out of a department-bound role drops the department
	// assignment; demotion out of department_manager, or moving a
	// department_manager to another department, releases the managed
	// department's back-reference.
	if newRole == authz.RoleDivisionManager || newRole == authz.RoleAdmin {
		target.DepartmentID = nil
	}
	departmentMoved := priorDepartmentID != nil &&
		(target.DepartmentID == nil || *target.DepartmentID != *priorDepartmentID)
	clearManagedDepartment := priorRole == authz.RoleDepartmentManager &&
		(newRole != authz.RoleDepartmentManager || departmentMoved)

	if !authz.AdmissibleComposite(target.Role, target.DivisionID, target.DepartmentID) {
		return nil, internal.NewValidationError(
			fmt.Sprintf("role %s is not compatible with the given division/department assignment", target.Role),
			internal.ErrCodeInvalidRoleState)
	}
	if err := s.checkDepartmentPlacement(target.DivisionID, target.DepartmentID); err != nil {
		return nil, err
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionUpdate, "users", &target.ID, map[string]interface{}{
		"prior_role": priorRole,
		"new_role":   newRole,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Update(target, clearManagedDepartment, entry); err != nil {
		s.logger.Error("update user failed", "error", err, "user_id", id)
		return nil, err
	}

	return target, nil
}

func (s *Service) Delete(actor authz.Actor, id int64) error {
	if actor.Role != authz.RoleAdmin {
		return internal.NewForbiddenError("only admin can delete users", internal.ErrCodeScopeDenied)
	}
	if actor.ID == id {
		return internal.NewConflictError("cannot delete your own account", internal.ErrCodeCannotDeleteSelf)
	}

	target, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionDelete, "users", &target.ID, map[string]interface{}{
		"username": target.Username,
	})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Delete(target.ID, entry); err != nil {
		s.logger.Error("delete user failed", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}

// checkDepartmentPlacement verifies an assigned department belongs to the
// user's division.
func (s *Service) checkDepartmentPlacement(divisionID, departmentID *int64) error {
	if departmentID == nil {
		return nil
	}
	deptDivision, err := s.repo.DepartmentDivision(*departmentID)
	if err != nil {
		return err
	}
	if divisionID == nil || *divisionID != deptDivision {
		return internal.NewValidationError(
			"department does not belong to the given division",
			internal.ErrCodeInvalidRoleState)
	}
	return nil
}

func (s *Service) checkUniqueness(email, username string, employeeID *string, excludeID int64) error {
	taken, err := s.repo.EmailTaken(email, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check email uniqueness", err)
	}
	if taken {
		return internal.NewConflictError("email already registered", internal.ErrCodeEmailTaken)
	}

	taken, err = s.repo.UsernameTaken(username, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check username uniqueness", err)
	}
	if taken {
		return internal.NewConflictError("username already taken", internal.ErrCodeUsernameTaken)
	}

	if employeeID != nil && *employeeID != "" {
		taken, err = s.repo.EmployeeIDTaken(*employeeID, excludeID)
		if err != nil {
			return internal.NewInternalError("failed to check employee id uniqueness", err)
		}
		if taken {
			return internal.NewConflictError("employee id already assigned", internal.ErrCodeEmployeeIDTaken)
		}
	}
	return nil
}
