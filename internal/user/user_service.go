package user

import (
	"context"
	"net/http"
	"time"

	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/shared/validate"
	"go-workdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTable binds the users table.
func NewTable(s *store.Store) (*store.Table[User], error) {
	return store.NewTable[User](s, TableName, func(u User) string { return u.ID })
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	FindByRoles(ctx context.Context, roles ...string) ([]User, error)
}

type service struct {
	users  *store.Table[User]
	logger *zap.Logger
}

func NewService(users *store.Table[User], logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{users: users, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if err := validate.Struct(req); err != nil {
		s.logger.Warn("create user validation failed", zap.Error(err))
		return User{}, err
	}
	if !ValidRole(req.Role) {
		return User{}, apperror.New(apperror.CodeInvalidInput, "unknown role", http.StatusBadRequest)
	}

	u := User{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.users.Insert(ctx, u); err != nil {
		s.logger.Error("create user persist failed", zap.String("user_id", u.ID), zap.Error(err))
		return User{}, err
	}
	s.logger.Info("create user success",
		zap.String("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return u, nil
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.users.Query(ctx, store.Query[User]{OrderBy: "name"})
}

func (s *service) FindByRoles(ctx context.Context, roles ...string) ([]User, error) {
	if len(roles) == 1 {
		return s.users.Query(ctx, store.Query[User]{
			Where: []store.Where{store.Eq("role", roles[0])},
		})
	}
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}
	return s.users.Query(ctx, store.Query[User]{
		Match: func(u User) bool { return want[u.Role] },
	})
}
