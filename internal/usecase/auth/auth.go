package auth

import (
	"context"
	"strings"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/account"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ======================================================
// REGISTER
// ======================================================

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

type Register struct {
	repo   account.Repository
	tokens TokenIssuer
	audit  audit.Publisher
}

func NewRegister(repo account.Repository, tokens TokenIssuer, audit audit.Publisher) *Register {
	return &Register{repo: repo, tokens: tokens, audit: audit}
}

// Execute creates a CLIENT account. Staff roles are granted by an admin
// afterwards, never at sign-up.
func (uc *Register) Execute(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := createAccount(ctx, uc.repo, in, authz.RoleClient)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   audit.ActionUserRegistered,
		Entity:   audit.EntityUser,
		EntityID: &user.ID,
	})

	return &Session{User: user, Token: token}, nil
}

func createAccount(ctx context.Context, repo account.Repository, in RegisterInput, role authz.Role) (*models.User, error) {
	if len(in.Password) < 8 {
		return nil, httperr.Validation("weak_password", "Le mot de passe doit contenir au moins 8 caractères.")
	}

	hash, err := account.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        account.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         string(role),
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ======================================================
// LOGIN
// ======================================================

type Login struct {
	repo   account.Repository
	tokens TokenIssuer
}

func NewLogin(repo account.Repository, tokens TokenIssuer) *Login {
	return &Login{repo: repo, tokens: tokens}
}

// Execute answers an unknown email and a wrong password identically.
func (uc *Login) Execute(ctx context.Context, email, password string) (*Session, error) {
	user, err := uc.repo.GetByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		if httperr.KindOf(err) == httperr.KindNotFound {
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := account.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &Session{User: user, Token: token}, nil
}

// ======================================================
// ME
// ======================================================

type Me struct {
	repo account.Repository
}

func NewMe(repo account.Repository) *Me {
	return &Me{repo: repo}
}

func (uc *Me) Execute(ctx context.Context, who *authz.Principal) (*models.User, error) {
	return uc.repo.GetByID(ctx, who.UserID)
}

// ======================================================
// PROFILE
// ======================================================

type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

type UpdateProfile struct {
	repo  account.Repository
	audit audit.Publisher
}

func NewUpdateProfile(repo account.Repository, audit audit.Publisher) *UpdateProfile {
	return &UpdateProfile{repo: repo, audit: audit}
}

// Execute edits the caller's own names and phone. Email and role are not
// editable here.
func (uc *UpdateProfile) Execute(ctx context.Context, who *authz.Principal, p ProfilePatch) (*models.User, error) {
	user, err := uc.repo.GetByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}

	if p.FirstName != nil {
		if user.FirstName = strings.TrimSpace(*p.FirstName); user.FirstName == "" {
			return nil, httperr.Validation("name_required", "Le prénom est requis.")
		}
	}
	if p.LastName != nil {
		if user.LastName = strings.TrimSpace(*p.LastName); user.LastName == "" {
			return nil, httperr.Validation("name_required", "Le nom est requis.")
		}
	}
	if p.Phone != nil {
		user.Phone = strings.TrimSpace(*p.Phone)
	}

	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   audit.ActionProfileUpdated,
		Entity:   audit.EntityUser,
		EntityID: &user.ID,
	})

	return user, nil
}

// ======================================================
// ADMIN DIRECTORY
// ======================================================

type UserList struct {
	Users      []models.User    `json:"users"`
	Pagination pagination.Meta  `json:"pagination"`
	ByRole     map[string]int64 `json:"by_role"`
}

type ListUsers struct {
	dir account.Directory
}

func NewListUsers(dir account.Directory) *ListUsers {
	return &ListUsers{dir: dir}
}

func (uc *ListUsers) Execute(ctx context.Context, f account.UserFilter) (*UserList, error) {
	f.Params = f.Params.Normalize(pagination.DefaultLimit)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	users, total, err := uc.dir.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}

	byRole, err := uc.dir.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range []authz.Role{authz.RoleClient, authz.RoleEmployee, authz.RoleAdmin} {
		if _, ok := byRole[string(r)]; !ok {
			byRole[string(r)] = 0
		}
	}

	return &UserList{
		Users:      users,
		Pagination: pagination.NewMeta(f.Params, total),
		ByRole:     byRole,
	}, nil
}

type CreateUser struct {
	repo  account.Repository
	audit audit.Publisher
}

func NewCreateUser(repo account.Repository, audit audit.Publisher) *CreateUser {
	return &CreateUser{repo: repo, audit: audit}
}

// Execute opens an account with any role. No session is issued; the new
// user signs in with the password the admin set.
func (uc *CreateUser) Execute(ctx context.Context, who *authz.Principal, in RegisterInput, role authz.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, httperr.Validation("invalid_role", "Rôle invalide.")
	}

	user, err := createAccount(ctx, uc.repo, in, role)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionUserCreated,
		Entity:   audit.EntityUser,
		EntityID: &user.ID,
		Metadata: map[string]any{"role": user.Role},
	})

	return user, nil
}
