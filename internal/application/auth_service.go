package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/pkg/apperror"
	"github.com/dogshouse/dogs-api/pkg/helpers"
	"github.com/dogshouse/dogs-api/pkg/mailer"
)

// Publisher dispatches email jobs onto the queue. Satisfied by
// helpers.RabbitPublisher in production.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService implements signup, login and the two token-based credential
// flows. Plain reset tokens and OTP codes leave the process only inside a
// mail job; the database only ever holds their hashes.
type AuthService struct {
	users     repository.UserRepository
	jwt       *helpers.JWTManager
	publisher Publisher
	log       *logrus.Logger

	resetURL string
	resetTTL time.Duration
	otpTTL   time.Duration
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, publisher Publisher,
	log *logrus.Logger, resetURL string, resetTTL, otpTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		publisher: publisher,
		log:       log,
		resetURL:  resetURL,
		resetTTL:  resetTTL,
		otpTTL:    otpTTL,
	}
}

// SignupInput is validated at the handler; the service trusts it.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates an account and logs it in. The password-changed timestamp
// is backdated one second so the token minted here survives the stale-token
// check.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, string, time.Time, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	u := &entity.User{
		Name:              in.Name,
		Email:             in.Email,
		Role:              entity.RoleUser,
		Password:          hash,
		PasswordChangedAt: time.Now().Add(-time.Second),
		Active:            true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", time.Time{}, err
	}
	u.Password = ""
	token, exp, err := s.jwt.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same response so the endpoint does not confirm which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperror.BadRequest("Incorrect email or password")
		}
		return nil, "", time.Time{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, apperror.BadRequest("Incorrect email or password")
	}
	u.Password = ""
	token, exp, err := s.jwt.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// ForgotPassword stores a hashed single-use token and mails the plain form.
// If the mail job cannot be dispatched the token is cleared again so no
// unreachable token stays live in the account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthorized("There is no user with this email address")
		}
		return err
	}

	plain, hash, err := helpers.GenResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, hash, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/%s", s.resetURL, plain)
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: fmt.Sprintf("Your password reset token (valid for %d min)", int(s.resetTTL.Minutes())),
		Text: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password to: %s.\n"+
			"If you didn't forget your password, please ignore this email!", link),
	}
	if err := s.publisher.PublishJSON(ctx, job); err != nil {
		s.log.WithError(err).Error("dispatch reset-password mail")
		if clearErr := s.users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.log.WithError(clearErr).Error("clear reset token after failed dispatch")
		}
		return apperror.New(http.StatusInternalServerError, "There was an error sending the email. Try again later!")
	}
	return nil
}

// ResetPassword redeems a plain token from the mailed link. Redemption is
// single use: the rotation clears the stored hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*entity.User, string, time.Time, error) {
	u, err := s.users.GetByResetToken(ctx, helpers.HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperror.BadRequest("Token is invalid or has expired")
		}
		return nil, "", time.Time{}, err
	}
	if err := s.rotatePassword(ctx, u.ID, password); err != nil {
		return nil, "", time.Time{}, err
	}
	tok, exp, err := s.jwt.Generate(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, tok, exp, nil
}

// UpdatePassword rotates the password of a logged-in user after re-checking
// the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password string) (string, time.Time, error) {
	u, err := s.users.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return "", time.Time{}, apperror.Unauthorized("Your current password is wrong")
	}
	if err := s.rotatePassword(ctx, u.ID, password); err != nil {
		return "", time.Time{}, err
	}
	return s.jwt.Generate(u.ID)
}

// rotatePassword hashes and stores the new password. The change timestamp is
// backdated one second so the token issued immediately after stays valid.
func (s *AuthService) rotatePassword(ctx context.Context, userID, password string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash, time.Now().Add(-time.Second))
}

// RequestEmailVerify issues a short-lived OTP and mails it. Requesting again
// replaces any pending code.
func (s *AuthService) RequestEmailVerify(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerify {
		return apperror.BadRequest("Email is already verified")
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(code)
	if err != nil {
		return err
	}
	if err := s.users.SetVerifyOTP(ctx, u.ID, hash, time.Now().Add(s.otpTTL)); err != nil {
		return err
	}

	job := mailer.EmailJob{
		To:      u.Email,
		Subject: fmt.Sprintf("Your email verification code (valid for %d min)", int(s.otpTTL.Minutes())),
		Text:    fmt.Sprintf("Hi %s,\nyour verification code is %s.", u.Name, code),
	}
	if err := s.publisher.PublishJSON(ctx, job); err != nil {
		s.log.WithError(err).Error("dispatch verify-email mail")
		if clearErr := s.users.ClearVerifyOTP(ctx, u.ID); clearErr != nil {
			s.log.WithError(clearErr).Error("clear verify otp after failed dispatch")
		}
		return apperror.New(http.StatusInternalServerError, "There was an error sending the email. Try again later!")
	}
	return nil
}

// ConfirmEmailVerify checks the submitted OTP against the stored hash inside
// its validity window and marks the account verified.
func (s *AuthService) ConfirmEmailVerify(ctx context.Context, userID, code string) error {
	u, err := s.users.GetByIDWithOTP(ctx, userID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.BadRequest("OTP is invalid or has expired")
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.EmailVerifyOTP, code) {
		return apperror.BadRequest("OTP is invalid or has expired")
	}
	return s.users.MarkVerified(ctx, u.ID)
}
