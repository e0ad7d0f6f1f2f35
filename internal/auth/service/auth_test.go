package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/ledger"
	"github.com/phase1912/contacts-auth/internal/auth/media"
	"github.com/phase1912/contacts-auth/internal/auth/store/drivers/sqlite"
	"github.com/phase1912/contacts-auth/pkg/cryptox"
	"github.com/phase1912/contacts-auth/pkg/jwtx"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestMain pins a pepper file for the whole binary; the pepper is process
// state, so it cannot go through the usual per-test t.TempDir.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "auth-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// recordingMailer captures tokens so tests can complete the email workflows.
type recordingMailer struct {
	mu           sync.Mutex
	verifyTokens map[string]string
	resetTokens  map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		verifyTokens: make(map[string]string),
		resetTokens:  make(map[string]string),
	}
}

func (m *recordingMailer) SendVerification(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyTokens[to] = token
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetTokens[to] = token
	return nil
}

func (m *recordingMailer) lastVerify(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyTokens[to]
}

func (m *recordingMailer) lastReset(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetTokens[to]
}

type testEnv struct {
	svc    *AuthService
	mailer *recordingMailer
	store  *sqlite.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	codec, err := jwtx.NewCodec([]byte(testSecret), "contacts-auth-test")
	require.NoError(t, err)

	led := ledger.NewMemory()
	t.Cleanup(func() { _ = led.Close() })

	mailer := newRecordingMailer()

	svc := &AuthService{
		Store:      s,
		Ledger:     led,
		Codec:      codec,
		Mailer:     mailer,
		Media:      &media.StubUploader{},
		TOTPIssuer: "contacts-test",
	}

	return &testEnv{svc: svc, mailer: mailer, store: s}
}

func register(t *testing.T, env *testEnv, email string) domain.User {
	t.Helper()
	u, err := env.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct horse battery",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	u := register(t, env, "Ada@Example.com")
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, domain.RoleUser, u.Role)
	require.False(t, u.Verified)
	require.NotEmpty(t, env.mailer.lastVerify("ada@example.com"))

	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := env.svc.Authorize(ctx, pair.AccessToken, domain.RoleUser)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "dup@example.com")

	_, err := env.svc.Register(ctx, RegisterInput{
		Email:     "DUP@example.com",
		FirstName: "Other",
		LastName:  "Person",
		Password:  "another password",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")

	_, err := env.svc.Login(ctx, "ada@example.com", "wrong password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "nobody@example.com", "whatever", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRequiresVerifiedWhenConfigured(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.svc.RequireVerified = true

	register(t, env, "ada@example.com")

	_, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.ErrorIs(t, err, ErrNotVerified)

	token := env.mailer.lastVerify("ada@example.com")
	require.NoError(t, env.svc.ConfirmEmailVerification(ctx, token))

	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	next, err := env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The surrendered token is dead.
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// The replacement still works.
	_, err = env.svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	const callers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svc.Refresh(ctx, pair.RefreshToken); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	user := register(t, env, "ada@example.com")
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	// Only the token's owner can revoke it.
	require.ErrorIs(t, env.svc.Logout(ctx, "someone-else", pair.RefreshToken), ErrInvalidToken)

	require.NoError(t, env.svc.Logout(ctx, user.ID, pair.RefreshToken))

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Logging out again, or with garbage, stays quiet.
	require.NoError(t, env.svc.Logout(ctx, user.ID, pair.RefreshToken))
	require.NoError(t, env.svc.Logout(ctx, user.ID, "not a token"))
}

func TestOnlyAccessTokensCarryRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	access, err := env.svc.Codec.Verify(pair.AccessToken, jwtx.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleUser), access.Role)

	refresh, err := env.svc.Codec.Verify(pair.RefreshToken, jwtx.PurposeRefresh)
	require.NoError(t, err)
	require.Empty(t, refresh.Role)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "ada@example.com"))
	reset, err := env.svc.Codec.Verify(env.mailer.lastReset("ada@example.com"), jwtx.PurposeReset)
	require.NoError(t, err)
	require.Empty(t, reset.Role)
}

func TestAuthorizeRoleHierarchy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	_, err = env.svc.Authorize(ctx, pair.AccessToken, domain.RoleUser)
	require.NoError(t, err)

	_, err = env.svc.Authorize(ctx, pair.AccessToken, domain.RoleAdmin)
	require.ErrorIs(t, err, ErrForbidden)

	// A refresh token is not an access token.
	_, err = env.svc.Authorize(ctx, pair.RefreshToken, domain.RoleUser)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")

	// Unknown addresses get the same nil as real ones.
	require.NoError(t, env.svc.RequestPasswordReset(ctx, "nobody@example.com"))

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "ada@example.com"))
	token := env.mailer.lastReset("ada@example.com")
	require.NotEmpty(t, token)

	require.NoError(t, env.svc.ConfirmPasswordReset(ctx, token, "brand new password"))

	_, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "ada@example.com", "brand new password", "")
	require.NoError(t, err)

	// The reset token is single use.
	require.ErrorIs(t, env.svc.ConfirmPasswordReset(ctx, token, "third password"), ErrInvalidToken)
}

func TestPasswordResetKillsOutstandingTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")

	issuedAt := time.Now().Add(-time.Minute)
	env.svc.Now = func() time.Time { return issuedAt }
	pair, err := env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)
	env.svc.Now = nil

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "ada@example.com"))
	token := env.mailer.lastReset("ada@example.com")
	require.NoError(t, env.svc.ConfirmPasswordReset(ctx, token, "brand new password"))

	_, err = env.svc.Authorize(ctx, pair.AccessToken, domain.RoleUser)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmailVerificationTokenIsSingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	u := register(t, env, "ada@example.com")
	token := env.mailer.lastVerify("ada@example.com")

	require.NoError(t, env.svc.ConfirmEmailVerification(ctx, token))

	got, err := env.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.Verified)

	require.ErrorIs(t, env.svc.ConfirmEmailVerification(ctx, token), ErrInvalidToken)
	require.ErrorIs(t, env.svc.ConfirmEmailVerification(ctx, "garbage"), ErrInvalidToken)
}

func TestRequestEmailVerificationResends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	register(t, env, "ada@example.com")
	first := env.mailer.lastVerify("ada@example.com")

	require.NoError(t, env.svc.RequestEmailVerification(ctx, "ada@example.com"))
	second := env.mailer.lastVerify("ada@example.com")
	require.NotEqual(t, first, second)

	// Unknown addresses look identical from the outside.
	require.NoError(t, env.svc.RequestEmailVerification(ctx, "nobody@example.com"))
}

func TestMFAEnrollActivateLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	u := register(t, env, "ada@example.com")

	enrollment, err := env.svc.EnrollMFA(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.OTPAuthURL, "otpauth://")

	// Enrollment alone does not gate login.
	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, env.svc.ActivateMFA(ctx, u.ID, "000000"), ErrInvalidTOTPCode)
	require.NoError(t, env.svc.ActivateMFA(ctx, u.ID, code))

	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.ErrorIs(t, err, ErrMFARequired)

	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", "123456")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", code)
	require.NoError(t, err)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.svc.DisableMFA(ctx, u.ID, code))

	_, err = env.svc.Login(ctx, "ada@example.com", "correct horse battery", "")
	require.NoError(t, err)
}

func TestUpdateAvatarRecordsPublicURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	u := register(t, env, "ada@example.com")

	upload, err := env.svc.UpdateAvatar(ctx, u.ID, "image/png")
	require.NoError(t, err)
	require.NotEmpty(t, upload.UploadURL)
	require.NotEmpty(t, upload.PublicURL)

	got, err := env.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, upload.PublicURL, got.AvatarURL)
}
