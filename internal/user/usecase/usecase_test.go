package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/user/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users   map[string]model.User
	err     error
	updates int
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeRepo) FindByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, f.err
}

func (f *fakeRepo) Update(_ context.Context, u *model.User) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.updates++
	if _, ok := f.users[u.ID]; !ok {
		return false, nil
	}
	f.users[u.ID] = *u
	return true, nil
}

func adaRepo() *fakeRepo {
	phone := "+91 98200 00000"
	return &fakeRepo{users: map[string]model.User{
		"u-1": {BaseModel: model.BaseModel{ID: "u-1"}, Email: "ada@example.com", FullName: "Ada", Phone: &phone},
	}}
}

func strPtr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	repo := &fakeRepo{users: map[string]model.User{"u-1": {BaseModel: model.BaseModel{ID: "u-1"}, FullName: "Ada"}}}
	uc := NewUserUseCase(repo)

	u, err := uc.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FullName)

	_, err = uc.GetProfile(context.Background(), "u-2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	repo.err = errors.New("conn reset")
	_, err = uc.GetProfile(context.Background(), "u-1")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestGetProfiles(t *testing.T) {
	repo := &fakeRepo{users: map[string]model.User{
		"u-1": {BaseModel: model.BaseModel{ID: "u-1"}},
		"u-2": {BaseModel: model.BaseModel{ID: "u-2"}},
	}}
	got, err := NewUserUseCase(repo).GetProfiles(context.Background(), []string{"u-1", "u-3"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "u-1")
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := adaRepo()
	uc := NewUserUseCase(repo)

	done := true
	u, err := uc.UpdateProfile(ctx, &dto.UpdateProfileInput{
		UserID:      "u-1",
		FullName:    strPtr("  Ada Lovelace "),
		DateOfBirth: strPtr("1990-12-10"),
		IsCompleted: &done,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	require.NotNil(t, u.DateOfBirth)
	assert.Equal(t, "1990-12-10", u.DateOfBirth.Format("2006-01-02"))
	assert.True(t, u.IsCompleted)
	assert.Equal(t, "+91 98200 00000", *u.Phone, "unset fields are kept")
	assert.False(t, u.UpdatedAt.IsZero())
	assert.Equal(t, "Ada Lovelace", repo.users["u-1"].FullName)

	u, err = uc.UpdateProfile(ctx, &dto.UpdateProfileInput{UserID: "u-1", Phone: strPtr(""), DateOfBirth: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, u.Phone)
	assert.Nil(t, u.DateOfBirth)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	tests := []struct {
		name  string
		input dto.UpdateProfileInput
		want  error
	}{
		{"blank name", dto.UpdateProfileInput{UserID: "u-1", FullName: strPtr(" ")}, apperror.ErrValidation},
		{"malformed birth date", dto.UpdateProfileInput{UserID: "u-1", DateOfBirth: strPtr("10/12/1990")}, apperror.ErrValidation},
		{"future birth date", dto.UpdateProfileInput{UserID: "u-1", DateOfBirth: strPtr(tomorrow)}, apperror.ErrValidation},
		{"unknown user", dto.UpdateProfileInput{UserID: "u-9", FullName: strPtr("Bob")}, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := adaRepo()
			_, err := NewUserUseCase(repo).UpdateProfile(context.Background(), &tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, repo.updates)
			assert.Equal(t, "Ada", repo.users["u-1"].FullName)
		})
	}
}

func TestUpdateAddress(t *testing.T) {
	ctx := context.Background()
	repo := adaRepo()
	uc := NewUserUseCase(repo)

	in := &dto.UpdateAddressInput{UserID: "u-1", Street: "1 Main St", City: "Pune", State: "MH", PostalCode: "411001", Country: "IN"}
	u, err := uc.UpdateAddress(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Pune", u.City)
	assert.Equal(t, "411001", repo.users["u-1"].PostalCode)

	missingCity := *in
	missingCity.City = "  "
	_, err = uc.UpdateAddress(ctx, &missingCity)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "city")
	assert.Equal(t, "Pune", repo.users["u-1"].City)

	ghost := *in
	ghost.UserID = "u-9"
	_, err = uc.UpdateAddress(ctx, &ghost)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfileImage(t *testing.T) {
	ctx := context.Background()
	repo := adaRepo()
	uc := NewUserUseCase(repo)

	_, err := uc.UpdateProfileImage(ctx, &dto.UpdateProfileImageInput{UserID: "u-1"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	u, err := uc.UpdateProfileImage(ctx, &dto.UpdateProfileImageInput{UserID: "u-1", ProfileImage: "https://cdn/ada.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/ada.png", *u.ProfileImage)

	repo.err = errors.New("conn reset")
	_, err = uc.UpdateProfileImage(ctx, &dto.UpdateProfileImageInput{UserID: "u-1", ProfileImage: "https://cdn/x.png"})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestUpdate_RowVanished(t *testing.T) {
	repo := adaRepo()
	uc := NewUserUseCase(&vanishingRepo{fakeRepo: repo})

	_, err := uc.UpdateProfileImage(context.Background(), &dto.UpdateProfileImageInput{UserID: "u-1", ProfileImage: "https://cdn/ada.png"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// vanishingRepo reports every update as hitting no row.
type vanishingRepo struct {
	*fakeRepo
}

func (v *vanishingRepo) Update(context.Context, *model.User) (bool, error) {
	return false, nil
}
