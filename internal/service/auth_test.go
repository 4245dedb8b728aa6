package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/auth"
	"github.com/forgezone/forge-zone/internal/notify"
)

// newTestAuthService returns an AuthService wired with fake dependencies.
// The TokenService uses a short secret, suitable for tests only.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is bcrypt minimum — makes tests fast
	ps := auth.NewPasswordServiceForTest(4)

	logger := testLogger()
	// nil sink: the notifier treats notifications as disabled
	users := NewUserService(repo, notify.NewNotifier(nil, logger), logger)
	return NewAuthService(users, ts, ps, logger)
}

// =========================================================================
// LoginOrRegisterGitHub TESTS
// =========================================================================

func TestLoginOrRegisterGitHub_NewUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	ghUser := &auth.GitHubUser{
		ID:    42,
		Login: "octocat",
		Name:  "The Octocat",
		Email: "octocat@github.com",
	}

	result, err := svc.LoginOrRegisterGitHub(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}

	if result.User == nil {
		t.Fatal("LoginOrRegisterGitHub() returned nil User")
	}
	if result.Token == "" {
		t.Fatal("LoginOrRegisterGitHub() returned empty Token")
	}
	if result.User.ID != "github:42" {
		t.Errorf("User.ID = %q, want %q (keyed on the numeric GitHub ID)", result.User.ID, "github:42")
	}
	if result.User.Username != "octocat" {
		t.Errorf("User.Username = %q, want %q (email local part)", result.User.Username, "octocat")
	}
}

func TestLoginOrRegisterGitHub_RepeatLoginKeepsStoredAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	first, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 99, Login: "builder", Email: "builder@forgezone.dev",
	})
	if err != nil {
		t.Fatalf("first login error: %v", err)
	}
	writesAfterFirst := repo.writes

	// Repeat login — even with a changed display name, the stored row wins.
	second, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 99, Login: "builder", Name: "Renamed", Email: "builder@forgezone.dev",
	})
	if err != nil {
		t.Fatalf("second login error: %v", err)
	}

	if repo.writes != writesAfterFirst {
		t.Error("repeat login must not write to the store")
	}
	if second.User.Name != first.User.Name {
		t.Errorf("User.Name = %q, want stored %q", second.User.Name, first.User.Name)
	}
}

func TestLoginOrRegisterGitHub_TokenIsValidJWT(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 1, Login: "testuser", Email: "testuser@x.dev",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}

	// Validate the token we issued
	userID, err := svc.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("token subject = %q, want %q", userID, result.User.ID)
	}
}

func TestLoginOrRegisterGitHub_NilGitHubUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.LoginOrRegisterGitHub(context.Background(), nil)
	if err == nil {
		t.Fatal("LoginOrRegisterGitHub() should return error for nil GitHubUser")
	}
}

func TestLoginOrRegisterGitHub_HiddenEmailRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	// GitHub returns an empty email when the user hides it.
	_, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 7, Login: "private",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation in chain", err)
	}
	if repo.writes != 0 {
		t.Error("no account may be created without an email")
	}
}

func TestLoginOrRegisterGitHub_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("database is on fire")
	svc := newTestAuthService(t, repo)

	_, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 1, Login: "user", Email: "user@x.dev",
	})
	if err == nil {
		t.Fatal("LoginOrRegisterGitHub() should propagate repository errors")
	}
}

// =========================================================================
// ValidateToken TESTS
// =========================================================================

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.ValidateToken("not.a.jwt")
	if err == nil {
		t.Fatal("ValidateToken() should reject garbage input")
	}
	if !strings.Contains(err.Error(), "service/auth") {
		t.Errorf("error %q should be wrapped with the service prefix", err.Error())
	}
}
