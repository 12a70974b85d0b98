package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/campusloop/campusloop-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newAuthFixture() (*mockUserRepo, *jwt.Manager, AuthService) {
	repo := new(mockUserRepo)
	mgr := jwt.NewManager("test-secret", 7*24*time.Hour)
	return repo, mgr, NewAuthService(repo, mgr)
}

func TestRegister_Success(t *testing.T) {
	repo, mgr, svc := newAuthFixture()
	repo.On("ExistsByEmail", mock.Anything, "ada@campus.edu").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")) == nil
	})).Return(nil)

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@campus.edu", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "Ada", resp.FirstName)

	claims, err := mgr.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	repo.AssertExpectations(t)
}

func TestRegister_PasswordCost(t *testing.T) {
	repo, _, svc := newAuthFixture()
	var stored string
	repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User).Password
	}).Return(nil)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FirstName: "A", LastName: "B", Email: "a@b.c", Password: "pw",
	})
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestRegister_MissingFields(t *testing.T) {
	_, _, svc := newAuthFixture()
	_, err := svc.Register(context.Background(), &domain.RegisterRequest{FirstName: "A", Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrMissingFields)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo, _, svc := newAuthFixture()
	repo.On("ExistsByEmail", mock.Anything, "dup@campus.edu").Return(true, nil)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FirstName: "A", LastName: "B", Email: "dup@campus.edu", Password: "pw",
	})
	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	user := &domain.User{ID: 5, FirstName: "Ada", LastName: "L", Email: "ada@campus.edu", Password: string(hashed)}

	t.Run("success", func(t *testing.T) {
		repo, _, svc := newAuthFixture()
		repo.On("FindByEmail", mock.Anything, "ada@campus.edu").Return(user, nil)

		resp, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ada@campus.edu", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, uint(5), resp.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, _, svc := newAuthFixture()
		repo.On("FindByEmail", mock.Anything, "ada@campus.edu").Return(user, nil)

		_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ada@campus.edu", Password: "nope"})
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo, _, svc := newAuthFixture()
		repo.On("FindByEmail", mock.Anything, "ghost@campus.edu").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ghost@campus.edu", Password: "x"})
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("db failure", func(t *testing.T) {
		repo, _, svc := newAuthFixture()
		boom := errors.New("db down")
		repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, boom)

		_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ada@campus.edu", Password: "x"})
		assert.ErrorIs(t, err, boom)
	})
}
