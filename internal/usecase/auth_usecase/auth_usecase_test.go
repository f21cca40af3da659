package auth_test

import (
	"context"
	"testing"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"
	auth "shop/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type stubIssuer struct{}

func (i *stubIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	return "token", now.Add(15 * time.Minute), nil
}

type stubHasher struct{}

func (h *stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type stubVerifier struct{ ok bool }

func (v *stubVerifier) Verify(plain string, hashed string) bool { return v.ok }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// =====================
// Register
// =====================

func newRegisterUsecase(repo *UserRepoMock) *auth.RegisterUserUsecase {
	return auth.NewRegisterUserUsecase(repo, &stubHasher{}, &stubIssuer{}, &fixedClock{now: testNow})
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "alice@example.com" &&
			u.PasswordHash == "hashed:correct-horse-battery" &&
			u.Role == model.RoleUser &&
			u.IsActive
	})).Return(nil)

	uc := newRegisterUsecase(userRepo)
	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "Alice@Example.com",
		Password: "correct-horse-battery",
		Name:     "Alice",
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", out.User.Email)
	assert.Equal(t, "token", out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)
	userRepo.AssertExpectations(t)
}

func TestRegister_InvalidEmail(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "not-an-email",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "alice@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegister_WeakPassword(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "alice@example.com",
		Password: "123456789012",
	})
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

// email重複はunique制約由来のエラーで検出される
func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailAlreadyExists)

	uc := newRegisterUsecase(userRepo)
	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

// =====================
// Login
// =====================

func newLoginUsecase(repo *UserRepoMock, verifierOK bool) *auth.LoginUsecase {
	return auth.NewLoginUsecase(repo, &stubVerifier{ok: verifierOK}, &stubIssuer{}, &fixedClock{now: testNow})
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", Role: model.RoleUser, IsActive: true,
	}, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil && u.LastLoginAt.Equal(testNow)
	})).Return(nil)

	uc := newLoginUsecase(userRepo, true)
	out, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	})

	assert.NoError(t, err)
	assert.Equal(t, "token", out.Token.AccessToken)
	userRepo.AssertExpectations(t)
}

// 登録時と同じ文字列（大文字混じり）でログインできる
func TestLogin_MixedCaseEmail(t *testing.T) {
	userRepo := new(UserRepoMock)

	// 保存されているのは小文字化済みのemail
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", Role: model.RoleUser, IsActive: true,
	}, nil)
	userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	uc := newLoginUsecase(userRepo, true)
	out, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "Alice@Example.com",
		Password: "correct-horse-battery",
	})

	assert.NoError(t, err)
	assert.Equal(t, "token", out.Token.AccessToken)
	userRepo.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	uc := newLoginUsecase(userRepo, true)
	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever-long-enough",
	})

	// 未登録か否かを区別させない
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", IsActive: true,
	}, nil)

	uc := newLoginUsecase(userRepo, false)
	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password-here",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		ID: 1, Email: "alice@example.com", IsActive: false,
	}, nil)

	uc := newLoginUsecase(userRepo, true)
	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	})

	assert.ErrorIs(t, err, auth.ErrUserInactive)
}

// =====================
// bcrypt
// =====================

func TestBcryptHashAndVerify(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4)
	verifier := auth.NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("correct-horse-battery")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hashed)

	assert.True(t, verifier.Verify("correct-horse-battery", hashed))
	assert.False(t, verifier.Verify("wrong", hashed))
}
