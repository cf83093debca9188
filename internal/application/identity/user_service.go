package identity

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management within a tenant
type UserService struct {
	userRepo   identity.UserRepository
	revoked    auth.RevocationList
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewUserService creates a new user service. Tokens of a user are revoked
// for sessionTTL after a change to the user's role, status, password or
// existence; revoked may be nil.
func NewUserService(userRepo identity.UserRepository, revoked auth.RevocationList, sessionTTL time.Duration, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:   userRepo,
		revoked:    revoked,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[UserResponse], error) {
	page, err := s.userRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.MapPaginated(page, func(u identity.User) UserResponse {
		return ToUserResponse(&u)
	}), nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// Create adds a user to the tenant. Role defaults to USER.
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	role := identity.RoleUser
	if req.Role != "" {
		parsed, ok := identity.ParseRole(req.Role)
		if !ok {
			return nil, shared.InvalidInput("Role must be one of ADMIN, MANAGER, USER")
		}
		role = parsed
	}

	user, err := identity.NewUser(tenantID, req.Email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, tenantID, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)
	response := ToUserResponse(user)
	return &response, nil
}

// Update changes a user. actorID is the caller; callers cannot change their
// own role or deactivate themselves.
func (s *UserService) Update(ctx context.Context, tenantID, actorID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	revoke := false
	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.InvalidInput("Name is required")
		}
		user.Name = *req.Name
	}
	if req.Password != nil {
		if err := user.ChangePassword(*req.Password); err != nil {
			return nil, err
		}
		revoke = true
	}
	if req.Role != nil {
		role, ok := identity.ParseRole(*req.Role)
		if !ok {
			return nil, shared.InvalidInput("Role must be one of ADMIN, MANAGER, USER")
		}
		if role != user.Role {
			if userID == actorID {
				return nil, shared.InvalidInput("You cannot change your own role")
			}
			if err := user.SetRole(role); err != nil {
				return nil, err
			}
			revoke = true
		}
	}
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if userID == actorID && !*req.IsActive {
			return nil, shared.InvalidInput("You cannot deactivate your own account")
		}
		user.IsActive = *req.IsActive
		revoke = revoke || !user.IsActive
	}

	user.Touch()
	if err := s.userRepo.Update(ctx, tenantID, user); err != nil {
		return nil, err
	}
	if revoke {
		s.revokeSessions(ctx, user.ID)
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user. Users named on sales cannot be deleted.
func (s *UserService) Delete(ctx context.Context, tenantID, actorID, userID uuid.UUID) error {
	if userID == actorID {
		return shared.InvalidInput("You cannot delete your own account")
	}
	if _, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID); err != nil {
		return err
	}

	sales, err := s.userRepo.CountSalesCreatedBy(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if sales > 0 {
		return shared.InUse("User", map[string]any{"salesCount": sales})
	}

	if err := s.userRepo.DeleteForTenant(ctx, tenantID, userID); err != nil {
		return err
	}
	s.revokeSessions(ctx, userID)
	s.logger.Info("user deleted", zap.String("tenant_id", tenantID.String()), zap.String("user_id", userID.String()))
	return nil
}

// revokeSessions logs out every session of the user. A failure is logged
// only; the change itself has already been stored.
func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.revoked == nil {
		return
	}
	if err := s.revoked.RevokeUser(ctx, userID, s.sessionTTL); err != nil {
		s.logger.Warn("failed to revoke user sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
