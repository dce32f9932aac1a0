package usecase_test

import (
	"context"
	"encoding/binary"
	"hash/crc32"
	"net/http"
	"strings"
	"testing"

	"fursa-backend/config"
	"fursa-backend/internal/domain"
	"fursa-backend/internal/usecase"
	"fursa-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	uc       domain.ProfileUsecase
	profiles *MockProfileRepo
	skills   *MockSkillRepo
	storage  *MockStorage
}

func newProfileFixture() profileFixture {
	f := profileFixture{
		profiles: new(MockProfileRepo),
		skills:   new(MockSkillRepo),
		storage:  new(MockStorage),
	}
	f.uc = usecase.NewProfileUsecase(f.profiles, f.skills, usecase.NewUploader(f.storage, 1<<20), validation.New(), config.DefaultSkillWhitelist)
	return f
}

func ownProfile() *domain.Profile {
	return &domain.Profile{ID: 10, UserID: 1, Name: "Jane", Bio: "old bio", Skills: []domain.Skill{}}
}

func TestProfileReadsAreScopedToCaller(t *testing.T) {
	ctx := context.Background()

	t.Run("list returns only own profile", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		list, err := f.uc.ListOwn(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(10), list[0].ID)
	})

	t.Run("another profile id is not found", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.GetOwn(ctx, 1, 11)
		assert.Equal(t, http.StatusNotFound, asAppError(t, err).Code)
	})

	t.Run("own profile id is returned", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		p, err := f.uc.GetOwn(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, "Jane", p.Name)
	})
}

func TestProfileUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update writes only supplied fields", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)
		f.profiles.On("Update", ctx, int64(10), mock.MatchedBy(func(c domain.ProfileChanges) bool {
			return c.Name == nil && c.Bio != nil && *c.Bio == "new bio" && c.SkillIDs == nil &&
				c.ProfileImage == nil && c.Resume == nil
		})).Return(nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Bio: ptr("new bio")}, false)
		require.NoError(t, err)
		f.profiles.AssertExpectations(t)
	})

	t.Run("full update requires name", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Bio: ptr("x")}, true)
		appErr := asAppError(t, err)
		assert.Equal(t, []string{"This field is required."}, appErr.Fields["name"])
		f.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("name longer than 100 characters is rejected", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Name: ptr(strings.Repeat("a", 101))}, false)
		assert.Contains(t, asAppError(t, err).Fields, "name")
	})

	t.Run("skill outside whitelist rejects the whole update", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{
			Bio:    ptr("ignored"),
			Skills: &[]string{"Python", "COBOL"},
		}, false)
		appErr := asAppError(t, err)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, []string{"COBOL is not a valid skill."}, appErr.Fields["skills"])
		f.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("whitelisted skill missing from the table is rejected", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)
		f.skills.On("GetByNames", ctx, []string{"Python", "Flutter"}).
			Return([]domain.Skill{{ID: 1, Name: "Python"}}, nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Skills: &[]string{"Python", "Flutter"}}, false)
		assert.Equal(t, []string{"Flutter is not a valid skill."}, asAppError(t, err).Fields["skills"])
	})

	t.Run("valid skills replace the set", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)
		f.skills.On("GetByNames", ctx, []string{"React", "Python"}).
			Return([]domain.Skill{{ID: 1, Name: "Python"}, {ID: 2, Name: "React"}}, nil)
		f.profiles.On("Update", ctx, int64(10), mock.MatchedBy(func(c domain.ProfileChanges) bool {
			return c.SkillIDs != nil && assert.ObjectsAreEqual([]int64{2, 1}, *c.SkillIDs)
		})).Return(nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Skills: &[]string{"React", "Python", "React"}}, false)
		require.NoError(t, err)
		f.profiles.AssertExpectations(t)
	})

	t.Run("empty skill list clears skills", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)
		f.skills.On("GetByNames", ctx, []string{}).Return([]domain.Skill{}, nil)
		f.profiles.On("Update", ctx, int64(10), mock.MatchedBy(func(c domain.ProfileChanges) bool {
			return c.SkillIDs != nil && len(*c.SkillIDs) == 0
		})).Return(nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{Skills: &[]string{}}, false)
		require.NoError(t, err)
	})

	t.Run("resume upload replaces previous file", func(t *testing.T) {
		f := newProfileFixture()
		current := ownProfile()
		current.Resume = ptr("/media/resumes/old.pdf")
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(current, nil)
		f.storage.On("Save", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "resumes/") && strings.HasSuffix(key, "_cv.pdf")
		}), mock.Anything, int64(12), "application/pdf").Return("/media/resumes/new_cv.pdf", nil)
		f.profiles.On("Update", ctx, int64(10), mock.MatchedBy(func(c domain.ProfileChanges) bool {
			return c.Resume != nil && *c.Resume == "/media/resumes/new_cv.pdf"
		})).Return(nil)
		f.storage.On("Delete", ctx, "/media/resumes/old.pdf").Return(nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{
			Resume: fileHeader(t, "cv.pdf", []byte("%PDF-1.4 abc")),
		}, false)
		require.NoError(t, err)
		f.storage.AssertExpectations(t)
	})

	t.Run("resume with unsupported type is rejected", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.Update(ctx, 1, 10, domain.ProfileUpdate{
			Resume: fileHeader(t, "cv.exe", []byte("MZ\x90\x00rest")),
		}, false)
		assert.Contains(t, asAppError(t, err).Fields, "resume")
		f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is a 400", func(t *testing.T) {
		f := newProfileFixture()
		_, err := f.uc.UploadImage(ctx, 1, nil)
		assert.Equal(t, http.StatusBadRequest, asAppError(t, err).Code)
	})

	t.Run("missing profile is a 404", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(nil, domain.ErrNotFound)

		_, err := f.uc.UploadImage(ctx, 1, fileHeader(t, "me.png", pngBytes(t, 10, 10)))
		assert.Equal(t, http.StatusNotFound, asAppError(t, err).Code)
	})

	t.Run("stores compressed jpeg and drops the old image", func(t *testing.T) {
		f := newProfileFixture()
		current := ownProfile()
		current.ProfileImage = ptr("/media/profile_images/old.jpg")
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(current, nil)
		f.storage.On("Save", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "profile_images/") && strings.HasSuffix(key, "_me.jpg")
		}), mock.Anything, mock.Anything, "image/jpeg").Return("/media/profile_images/new_me.jpg", nil)
		f.profiles.On("UpdateImage", ctx, int64(1), "/media/profile_images/new_me.jpg").Return(nil)
		f.storage.On("Delete", ctx, "/media/profile_images/old.jpg").Return(nil)

		ref, err := f.uc.UploadImage(ctx, 1, fileHeader(t, "me.png", pngBytes(t, 40, 20)))
		require.NoError(t, err)
		assert.Equal(t, "/media/profile_images/new_me.jpg", ref)
		f.storage.AssertExpectations(t)
		f.profiles.AssertExpectations(t)
	})

	t.Run("non-image content is rejected", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		_, err := f.uc.UploadImage(ctx, 1, fileHeader(t, "me.png", []byte("%PDF-1.4 not an image")))
		assert.Contains(t, asAppError(t, err).Fields, "profileImage")
	})

	t.Run("huge declared canvas is rejected before decoding", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		bomb := pngBytes(t, 1, 1)
		binary.BigEndian.PutUint32(bomb[16:20], 50000)
		binary.BigEndian.PutUint32(bomb[20:24], 50000)
		binary.BigEndian.PutUint32(bomb[29:33], crc32.ChecksumIEEE(bomb[12:29]))

		_, err := f.uc.UploadImage(ctx, 1, fileHeader(t, "me.png", bomb))
		assert.Contains(t, asAppError(t, err).Fields["profileImage"][0], "Upload a valid image")
		f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		f := newProfileFixture()
		f.profiles.On("GetByUserID", ctx, int64(1)).Return(ownProfile(), nil)

		big := append(pngBytes(t, 1, 1), make([]byte, 1<<20)...)
		_, err := f.uc.UploadImage(ctx, 1, fileHeader(t, "me.png", big))
		assert.Contains(t, asAppError(t, err).Fields["profileImage"][0], "File too large")
	})
}
