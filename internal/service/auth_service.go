package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/debtbook/internal/auth"
	"github.com/mmynk/debtbook/internal/middleware"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/validation"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         auth.UserStorage
	jwtManager    *auth.JWTManager
	validator     *validation.Validator
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users auth.UserStorage, jwtManager *auth.JWTManager, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		validator:     v,
		logger:        logger,
	}
}

// issue signs a token for user and renders its expiry.
func (s *AuthService) issue(user *models.User) (string, string, error) {
	tok, err := s.jwtManager.Issue(user)
	if err != nil {
		return "", "", err
	}
	return tok.Value, tok.ExpiresAt.Format(time.RFC3339), nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	if err := s.validator.Struct(req.Msg); err != nil {
		return nil, toConnectError(s.logger, AuthServiceRegisterProcedure, err)
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("registration failed", "username", req.Msg.Username, "error", err)
		return nil, toConnectError(s.logger, AuthServiceRegisterProcedure, err)
	}

	token, expires, err := s.issue(user)
	if err != nil {
		return nil, toConnectError(s.logger, AuthServiceRegisterProcedure, err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return connect.NewResponse(&RegisterResponse{User: toUser(user), Token: token, ExpiresAt: expires}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	if err := s.validator.Struct(req.Msg); err != nil {
		return nil, toConnectError(s.logger, AuthServiceLoginProcedure, err)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("login failed", "username", req.Msg.Username, "error", err)
		return nil, toConnectError(s.logger, AuthServiceLoginProcedure, err)
	}

	token, expires, err := s.issue(user)
	if err != nil {
		return nil, toConnectError(s.logger, AuthServiceLoginProcedure, err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return connect.NewResponse(&LoginResponse{User: toUser(user), Token: token, ExpiresAt: expires}), nil
}

// Logout is a no-op; tokens are stateless and discarded by the client.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	s.logger.Info("logout", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&LogoutResponse{}), nil
}

// GetCurrentUser returns the authenticated user's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(s.logger, AuthServiceGetCurrentUserProcedure, err)
	}
	return connect.NewResponse(&GetCurrentUserResponse{User: toUser(user)}), nil
}
