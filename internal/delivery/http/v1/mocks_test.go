package v1_test

import (
	"context"
	"mime/multipart"

	"fursa-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockTokens struct{ mock.Mock }

func (m *mockTokens) IssuePair(userID int64) (*domain.TokenPair, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *mockTokens) IssueAccess(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) VerifyAccess(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokens) VerifyRefresh(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuthUC struct{ mock.Mock }

func (m *mockAuthUC) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthUC) Login(ctx context.Context, in domain.LoginInput) (*domain.TokenPair, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

func (m *mockAuthUC) Refresh(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockAuthUC) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockProfileUC struct{ mock.Mock }

func (m *mockProfileUC) ListOwn(ctx context.Context, userID int64) ([]domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *mockProfileUC) GetOwn(ctx context.Context, userID, profileID int64) (*domain.Profile, error) {
	args := m.Called(ctx, userID, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileUC) Update(ctx context.Context, userID, profileID int64, in domain.ProfileUpdate, full bool) (*domain.Profile, error) {
	args := m.Called(ctx, userID, profileID, in, full)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileUC) UploadImage(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, userID, file)
	return args.String(0), args.Error(1)
}

type mockSkillUC struct{ mock.Mock }

func (m *mockSkillUC) List(ctx context.Context) ([]domain.Skill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

func (m *mockSkillUC) Get(ctx context.Context, id int64) (*domain.Skill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *mockSkillUC) Create(ctx context.Context, in domain.SkillInput) (*domain.Skill, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *mockSkillUC) Update(ctx context.Context, id int64, in domain.SkillInput) (*domain.Skill, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *mockSkillUC) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockJobUC struct{ mock.Mock }

func (m *mockJobUC) ListJobs(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *mockJobUC) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

type mockApplicationUC struct{ mock.Mock }

func (m *mockApplicationUC) Apply(ctx context.Context, userID int64, in domain.ApplyInput) (*domain.Application, bool, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Application), args.Bool(1), args.Error(2)
}

func (m *mockApplicationUC) ListOwn(ctx context.Context, userID int64) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *mockApplicationUC) GetOwn(ctx context.Context, userID, id int64) (*domain.Application, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationUC) ExportOwn(ctx context.Context, userID int64, format string) ([]byte, string, error) {
	args := m.Called(ctx, userID, format)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type mockHealthUC struct{ mock.Mock }

func (m *mockHealthUC) Check(ctx context.Context) (*domain.HealthStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthStatus), args.Error(1)
}
