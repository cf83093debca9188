package identity

import (
	"context"
	"errors"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid tenant, email or password")

// AuthService handles registration, login and logout
type AuthService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	scope      uow.TransactionScope
	tokens     *auth.JWTService
	revoked    auth.RevocationList
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. revoked may be nil,
// in which case logout only succeeds client side.
func NewAuthService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	scope uow.TransactionScope,
	tokens *auth.JWTService,
	revoked auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		scope:      scope,
		tokens:     tokens,
		revoked:    revoked,
		logger:     logger,
	}
}

// Register creates a tenant, its administrator and the system reports and
// dashboard in one transaction, then signs the administrator in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	tenant, err := identity.NewTenant(req.TenantName)
	if err != nil {
		return nil, err
	}
	admin, err := identity.NewUser(tenant.ID, req.Email, req.Name, req.Password, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		exists, err := repos.Tenants().ExistsBySlug(ctx, tenant.Slug)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeDuplicateCode, "A tenant with this name already exists").
				WithDetails(map[string]any{"slug": tenant.Slug})
		}
		if err := repos.Tenants().Create(ctx, tenant); err != nil {
			return err
		}
		if err := repos.Users().Create(ctx, tenant.ID, admin); err != nil {
			return err
		}

		defs := report.SystemDefinitions(tenant.ID)
		if err := repos.ReportDefinitions().CreateBatch(ctx, tenant.ID, defs); err != nil {
			return err
		}
		return repos.Dashboards().Create(ctx, tenant.ID, report.SystemDashboard(tenant.ID, defs))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.String("user_id", admin.ID.String()),
	)
	return s.signIn(ctx, tenant, admin)
}

// Login verifies the credentials and issues an access token. Every failure
// reports the same UNAUTHORIZED error so that callers cannot probe which
// tenants or emails exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	tenant, err := s.tenantRepo.FindBySlug(ctx, identity.Slugify(req.TenantSlug))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !tenant.IsActive {
		s.logger.Warn("login to inactive tenant", zap.String("tenant_id", tenant.ID.String()))
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, tenant.ID, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login by deactivated user", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Account has been deactivated")
	}

	return s.signIn(ctx, tenant, user)
}

// Logout revokes the session's token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, session *identity.Session) error {
	if session == nil {
		return shared.ErrUnauthorized
	}
	if s.revoked == nil || session.TokenID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, s.tokens.Expiration()); err != nil {
		s.logger.Error("failed to revoke token", zap.Error(err))
		return err
	}
	s.logger.Info("user logged out", zap.String("user_id", session.UserID.String()))
	return nil
}

// Me returns the current user, tenant and effective permissions
func (s *AuthService) Me(ctx context.Context, session *identity.Session) (*MeResponse, error) {
	if session == nil {
		return nil, shared.ErrUnauthorized
	}
	tenant, err := s.tenantRepo.FindByID(ctx, session.TenantID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, session.TenantID, session.UserID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{
		User:        ToUserResponse(user),
		Tenant:      ToTenantResponse(tenant),
		Permissions: permissionNames(user.Role),
	}, nil
}

func (s *AuthService) signIn(ctx context.Context, tenant *identity.Tenant, user *identity.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(identity.Session{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     user.Role,
		Email:    user.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, tenant.ID, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return &AuthResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
		Tenant:      ToTenantResponse(tenant),
	}, nil
}
