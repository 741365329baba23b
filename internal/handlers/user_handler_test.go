package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/account"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	authuc "github.com/lebarbier/lebarbier-api/internal/usecase/auth"
)

type updateProfileFunc func(ctx context.Context, who *authz.Principal, p authuc.ProfilePatch) (*models.User, error)

func (f updateProfileFunc) Execute(ctx context.Context, who *authz.Principal, p authuc.ProfilePatch) (*models.User, error) {
	return f(ctx, who, p)
}

type listUsersFunc func(ctx context.Context, f account.UserFilter) (*authuc.UserList, error)

func (f listUsersFunc) Execute(ctx context.Context, filter account.UserFilter) (*authuc.UserList, error) {
	return f(ctx, filter)
}

type createUserFunc func(ctx context.Context, who *authz.Principal, in authuc.RegisterInput, role authz.Role) (*models.User, error)

func (f createUserFunc) Execute(ctx context.Context, who *authz.Principal, in authuc.RegisterInput, role authz.Role) (*models.User, error) {
	return f(ctx, who, in, role)
}

func TestUserHandler_Profile(t *testing.T) {
	who := &authz.Principal{UserID: uuid.New(), Role: authz.RoleClient}
	var got authuc.ProfilePatch

	h := &UserHandler{update: updateProfileFunc(func(_ context.Context, p *authz.Principal, patch authuc.ProfilePatch) (*models.User, error) {
		got = patch
		return &models.User{ID: p.UserID, FirstName: *patch.FirstName, PasswordHash: "hash"}, nil
	})}

	r := gin.New()
	r.PUT("/profile", asCaller(who), h.UpdateProfile)

	w, env := call(t, r, http.MethodPut, "/profile", gin.H{"first_name": "Awa", "role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Awa", *got.FirstName)
	assert.Nil(t, got.Phone)
	assert.Contains(t, string(env.Data), `"role":""`, "role in the body is ignored")
	assert.NotContains(t, w.Body.String(), "hash")

	w, _ = call(t, r, http.MethodPut, "/profile", gin.H{"first_name": "Awa", "phone": "0123456789012345678901234567890"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_AdminDirectory(t *testing.T) {
	admin := &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	var gotFilter account.UserFilter
	var gotRole authz.Role

	h := &UserHandler{
		list: listUsersFunc(func(_ context.Context, f account.UserFilter) (*authuc.UserList, error) {
			gotFilter = f
			return &authuc.UserList{Users: []models.User{}, ByRole: map[string]int64{"CLIENT": 3}}, nil
		}),
		create: createUserFunc(func(_ context.Context, _ *authz.Principal, in authuc.RegisterInput, role authz.Role) (*models.User, error) {
			gotRole = role
			if in.Email == "taken@salon.cm" {
				return nil, httperr.Conflict("email_taken", "Un compte existe déjà avec cet email.")
			}
			return &models.User{ID: uuid.New(), Email: in.Email, Role: string(role)}, nil
		}),
	}

	r := gin.New()
	r.GET("/users", asCaller(admin), h.List)
	r.POST("/users", asCaller(admin), h.Create)

	w, env := call(t, r, http.MethodGet, "/users?role=EMPLOYEE&search=paul&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EMPLOYEE", gotFilter.Role)
	assert.Equal(t, "paul", gotFilter.Search)
	assert.Equal(t, 10, gotFilter.Limit)
	assert.Contains(t, string(env.Data), `"by_role":{"CLIENT":3}`)

	w, _ = call(t, r, http.MethodGet, "/users?role=ROOT", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := gin.H{"first_name": "Paul", "last_name": "Eto", "email": "paul@salon.cm", "password": "long-enough", "role": "EMPLOYEE"}
	w, _ = call(t, r, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, authz.RoleEmployee, gotRole)

	body["email"] = "taken@salon.cm"
	w, env = call(t, r, http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", env.Code)

	delete(body, "role")
	body["email"] = "new@salon.cm"
	w, _ = call(t, r, http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
