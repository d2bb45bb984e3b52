package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshArya1405/typescriptDemo/api/middleware"
	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
)

type stubUserService struct {
	users.Service
	err      error
	calledID uuid.UUID
	ids      []uint
	viewer   uuid.UUID
	params   pagination.Params
	filter   users.Filter
}

func (s *stubUserService) Create(_ context.Context, input users.CreateUserInput) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: uuid.New(), Email: input.Email}, nil
}

func (s *stubUserService) Get(_ context.Context, id uuid.UUID) (*users.UserDetailDTO, error) {
	s.calledID = id
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDetailDTO{ID: id}, nil
}

func (s *stubUserService) Delete(_ context.Context, id uuid.UUID) error {
	s.calledID = id
	return s.err
}

func (s *stubUserService) ReplaceTags(_ context.Context, id uuid.UUID, ids []uint) ([]tags.TagDTO, error) {
	s.calledID = id
	s.ids = ids
	out := make([]tags.TagDTO, 0, len(ids))
	for _, tagID := range ids {
		out = append(out, tags.TagDTO{ID: tagID})
	}
	return out, s.err
}

func (s *stubUserService) ListTags(_ context.Context, id uuid.UUID, filter tags.Filter, params pagination.Params) (pagination.Page[tags.TagDTO], error) {
	s.calledID = id
	s.params = params
	return pagination.Page[tags.TagDTO]{Count: 3, Items: []tags.TagDTO{{ID: 1, Name: filter.Name}}}, s.err
}

func (s *stubUserService) UpdateRoles(_ context.Context, id uuid.UUID, ids []uint) ([]roles.RoleDTO, error) {
	s.ids = ids
	return []roles.RoleDTO{{ID: 1}, {ID: 2}}, s.err
}

func (s *stubUserService) ListCreators(_ context.Context, viewer uuid.UUID, filter users.Filter, params pagination.Params) (pagination.Page[users.CreatorDTO], error) {
	s.viewer = viewer
	s.filter = filter
	return pagination.Page[users.CreatorDTO]{Count: 1, Items: []users.CreatorDTO{{Followed: true}}}, s.err
}

func TestCreateUserReturnsCreated(t *testing.T) {
	rec := serve(CreateUser(&stubUserService{}, nil), newRequest(http.MethodPost, "/api/v1/user", `{"fullName":"Ada","email":"ada@valu.io"}`, nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeData[users.UserDTO](t, rec)
	require.NotNil(t, got.Email)
	assert.Equal(t, "ada@valu.io", *got.Email)
}

func TestCreateUserConflict(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.Conflict(nil, "email")}
	rec := serve(CreateUser(svc, nil), newRequest(http.MethodPost, "/api/v1/user", `{"email":"ada@valu.io"}`, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), decodeErrorCode(t, rec))
}

func TestCreateUserRejectsUnknownFields(t *testing.T) {
	rec := serve(CreateUser(&stubUserService{}, nil), newRequest(http.MethodPost, "/api/v1/user", `{"sub":"auth0|x"}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserValidatesIDBeforeService(t *testing.T) {
	svc := &stubUserService{}
	rec := serve(GetUser(svc, nil), newRequest(http.MethodGet, "/api/v1/user/abc", "", map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uuid.Nil, svc.calledID)

	id := uuid.New()
	rec = serve(GetUser(svc, nil), newRequest(http.MethodGet, "/api/v1/user/"+id.String(), "", map[string]string{"id": id.String()}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.calledID)
}

func TestGetUserNotFound(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.NotFound("user")}
	id := uuid.NewString()
	rec := serve(GetUser(svc, nil), newRequest(http.MethodGet, "/api/v1/user/"+id, "", map[string]string{"id": id}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUserNoContent(t *testing.T) {
	id := uuid.NewString()
	rec := serve(DeleteUser(&stubUserService{}, nil), newRequest(http.MethodDelete, "/api/v1/user/"+id, "", map[string]string{"id": id}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSaveUserTags(t *testing.T) {
	svc := &stubUserService{}
	id := uuid.NewString()

	rec := serve(SaveUserTags(svc, nil), newRequest(http.MethodPut, "/", `{"tagIds":[3,4]}`, map[string]string{"userId": id}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{3, 4}, svc.ids)
	assert.Len(t, decodeData[[]tags.TagDTO](t, rec), 2)

	rec = serve(SaveUserTags(svc, nil), newRequest(http.MethodPut, "/", `{"tagIds":[]}`, map[string]string{"userId": id}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.ids)

	rec = serve(SaveUserTags(svc, nil), newRequest(http.MethodPut, "/", `{}`, map[string]string{"userId": id}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUserTagsPaginates(t *testing.T) {
	svc := &stubUserService{}
	id := uuid.NewString()
	rec := serve(ListUserTags(svc, nil), newRequest(http.MethodGet, "/?name=defi&offset=2&limit=1", "", map[string]string{"userId": id}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagination.Params{Offset: 2, Limit: 1}, svc.params)
	page := decodeData[pagination.Page[tags.TagDTO]](t, rec)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, "defi", page.Items[0].Name)

	rec = serve(ListUserTags(svc, nil), newRequest(http.MethodGet, "/?limit=0", "", map[string]string{"userId": id}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUserRoles(t *testing.T) {
	svc := &stubUserService{}
	rec := serve(UpdateUserRoles(svc, nil), newRequest(http.MethodPut, "/", `{"roleIds":[2]}`, map[string]string{"userId": uuid.NewString()}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{2}, svc.ids)
	assert.Len(t, decodeData[[]roles.RoleDTO](t, rec), 2)
}

func TestListCreatorsUsesCaller(t *testing.T) {
	svc := &stubUserService{}
	caller := uuid.New()
	req := newRequest(http.MethodGet, "/api/v1/user/creators?fullName=ada", "", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), caller.String()))

	rec := serve(ListCreators(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller, svc.viewer)
	assert.Equal(t, "ada", svc.filter.FullName)
	page := decodeData[pagination.Page[users.CreatorDTO]](t, rec)
	assert.True(t, page.Items[0].Followed)
}
