package application

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/internal/query"
	"github.com/dogshouse/dogs-api/pkg/apperror"
	"github.com/dogshouse/dogs-api/pkg/helpers"
)

// userFields is the whitelist for the users listing pipeline. Secrets and
// token state have no api name, so they can never be filtered, sorted or
// projected.
var userFields = []query.Field{
	{Name: "name", Column: "name"},
	{Name: "email", Column: "email"},
	{Name: "role", Column: "role"},
	{Name: "emailVerify", Column: "email_verify", Kind: query.Bool},
	{Name: "createdAt", Column: "created_at", Kind: query.Time},
}

// UserService implements account profile use cases.
type UserService struct {
	users   repository.UserRepository
	builder *query.Builder
	gcs     *storage.Client
	bucket  string
	log     *logrus.Logger
}

func NewUserService(users repository.UserRepository, gcs *storage.Client, bucket string, log *logrus.Logger) *UserService {
	return &UserService{
		users:   users,
		builder: query.NewBuilder(userFields, "createdAt"),
		gcs:     gcs,
		bucket:  bucket,
		log:     log,
	}
}

// List serves the users listing through the same pipeline the dogs
// catalogue uses. Deactivated accounts are excluded by the repository.
func (s *UserService) List(ctx context.Context, values url.Values) ([]map[string]any, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.builder.Parse(values)
	if err != nil {
		return nil, err
	}
	req, err = req.Paginate(count)
	if err != nil {
		return nil, err
	}
	return s.users.List(ctx, req)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateMeInput carries the profile attributes a user may change here.
// Password changes go through the dedicated credential flow.
type UpdateMeInput struct {
	Name   *string
	Email  *string
	Avatar *string
}

func (s *UserService) UpdateMe(ctx context.Context, id string, in UpdateMeInput) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteMe deactivates the account after re-checking the password. The row
// stays behind with the stated reason; every read path filters it out from
// now on.
func (s *UserService) DeleteMe(ctx context.Context, id, password, reason string) error {
	u, err := s.users.GetByIDWithPassword(ctx, id)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return apperror.Unauthorized("Your current password is wrong")
	}
	return s.users.Deactivate(ctx, id, reason)
}

// UploadAvatar stores the image in the bucket and saves its public URL on
// the profile.
func (s *UserService) UploadAvatar(ctx context.Context, id, filename, contentType string, r io.Reader) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(filename))
	object := fmt.Sprintf("avatars/%s/%s%s", id, uuid.NewString(), ext)
	avatarURL, err := helpers.UploadObject(ctx, s.gcs, s.bucket, object, contentType, r)
	if err != nil {
		return nil, err
	}
	u.Avatar = avatarURL
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
