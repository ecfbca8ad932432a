// Package services contains server-side business logic. This file implements
// UserService: registration, login, profile management and the admin
// operations on accounts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
	"github.com/upeosoft/cms/internal/server/repositories/users"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *models.User
}

// NewUser describes an account to create.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     auth.Role
	Profile  models.Profile
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Phone     *string
	Avatar    *string
}

// UserService provides account operations:
//   - Register / Login: public entry points that mint session tokens
//   - Profile, UpdateProfile, ChangePassword: self-service
//   - List, UpdateRole, Activate, Deactivate, ToggleActive: admin only
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	tokens      *auth.TokenAuthority
	log         logging.Logger

	// dummyHash is verified against when the login is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher, tokens *auth.TokenAuthority, log logging.Logger) (*UserService, error) {
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(seed)
	if err != nil {
		return nil, err
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		log:         log.With("component", "users"),
		dummyHash:   dummy,
	}, nil
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(s); err != nil {
		return validationErr("invalid email address")
	}
	return nil
}

// Logins containing "@" are looked up by email, so a username must never
// contain one.
func validateUsername(s string) error {
	if strings.Contains(s, "@") {
		return validationErr(`username cannot contain "@"`)
	}
	return nil
}

func findByLogin(ctx context.Context, repo users.Repository, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return repo.GetByEmail(ctx, normalizeEmail(login))
	}
	return repo.GetByUsername(ctx, login)
}

// CreateUser stores a new active account with any role. Registration and
// the operator CLI both go through here.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, validationErr("username, email and password are required")
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < common.MinPasswordLength {
		return nil, validationErr(fmt.Sprintf("password must be at least %d characters long", common.MinPasswordLength))
	}
	if !in.Role.Valid() {
		return nil, validationErr(fmt.Sprintf("invalid role %q", in.Role))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      in.Profile,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: user with this email or username already exists", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Register creates a regular user account and signs them in. Public
// registration never grants anything but RoleUser.
func (s *UserService) Register(ctx context.Context, in NewUser) (*AuthResult, error) {
	in.Role = auth.RoleUser

	u, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login authenticates by email when login contains "@" and by username
// otherwise. Unknown logins and wrong
// passwords fail identically with common.ErrorUnauthorized; a deactivated
// account is reported only after its password matched.
func (s *UserService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, validationErr("email or username and password are required")
	}

	u, err := findByLogin(ctx, s.repomanager.Users(s.db), login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	if !u.IsActive {
		return nil, common.ErrAccountDisabled
	}

	return s.issue(u)
}

func (s *UserService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Role, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Profile returns the account of userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile applies upd to the caller's own account. Role and active
// state are not reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	var out *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if upd.Username != nil {
			name := strings.TrimSpace(*upd.Username)
			if name == "" {
				return validationErr("username cannot be empty")
			}
			if err := validateUsername(name); err != nil {
				return err
			}
			u.Username = name
		}
		if upd.Email != nil {
			email := normalizeEmail(*upd.Email)
			if err := validateEmail(email); err != nil {
				return err
			}
			u.Email = email
		}
		setIf(&u.Profile.FirstName, upd.FirstName)
		setIf(&u.Profile.LastName, upd.LastName)
		setIf(&u.Profile.Bio, upd.Bio)
		setIf(&u.Profile.Phone, upd.Phone)
		setIf(&u.Profile.Avatar, upd.Avatar)

		out, err = repo.UpdateProfile(ctx, u)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("%w: username or email already in use", common.ErrorAlreadyExists)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ChangePassword rotates the caller's password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return validationErr("current and new password are required")
	}
	if len(next) < common.MinPasswordLength {
		return validationErr(fmt.Sprintf("new password must be at least %d characters long", common.MinPasswordLength))
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(current, u.PasswordHash) {
			return validationErr("current password is incorrect")
		}

		hash, err := s.hasher.Hash(next)
		if err != nil {
			return err
		}
		if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}

		s.log.Info(ctx, "password changed", "user_id", userID)
		return nil
	})
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// UpdateRole sets the role of targetID. Admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID, role string) (*models.User, error) {
	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, validationErr(err.Error())
	}
	if actorID == targetID {
		return nil, common.ErrSelfModification
	}

	u, err := s.repomanager.Users(s.db).UpdateRole(ctx, targetID, r)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "role changed", "actor_id", actorID, "user_id", targetID, "role", r)
	return u, nil
}

// SetRoleByLogin changes the role of the account matching login. It is the
// operator path and bypasses the self-modification rule.
func (s *UserService) SetRoleByLogin(ctx context.Context, login, role string) (*models.User, error) {
	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, validationErr(err.Error())
	}

	var out *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := findByLogin(ctx, repo, login)
		if err != nil {
			return err
		}
		out, err = repo.UpdateRole(ctx, u.ID, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Activate marks targetID active.
func (s *UserService) Activate(ctx context.Context, actorID, targetID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).SetActive(ctx, targetID, true)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user activated", "actor_id", actorID, "user_id", targetID)
	return u, nil
}

// Deactivate marks targetID inactive. Admins cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, targetID string) (*models.User, error) {
	if actorID == targetID {
		return nil, common.ErrSelfModification
	}
	u, err := s.repomanager.Users(s.db).SetActive(ctx, targetID, false)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user deactivated", "actor_id", actorID, "user_id", targetID)
	return u, nil
}

// ToggleActive flips the active flag of targetID.
func (s *UserService) ToggleActive(ctx context.Context, actorID, targetID string) (*models.User, error) {
	if actorID == targetID {
		return nil, common.ErrSelfModification
	}
	u, err := s.repomanager.Users(s.db).ToggleActive(ctx, targetID)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user active toggled", "actor_id", actorID, "user_id", targetID, "active", u.IsActive)
	return u, nil
}
