package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/internal/query"
)

// fakeUserRepo keeps accounts in memory with the same visibility rules the
// SQL implementation enforces: inactive rows are invisible to every read.
type fakeUserRepo struct {
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	f.seq++
	u.ID = "user-" + strconv.Itoa(f.seq)
	u.CreatedAt = time.Now()
	u.Active = true
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Count(context.Context) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.Active {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) List(_ context.Context, req query.Request) ([]map[string]any, error) {
	var out []map[string]any
	for _, u := range f.users {
		if !u.Active {
			continue
		}
		out = append(out, req.Remap(map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		}))
	}
	return out, nil
}

func (f *fakeUserRepo) get(id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok || !u.Active {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	cp.Password = ""
	cp.EmailVerifyOTP = ""
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.Active {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByIDWithPassword(_ context.Context, id string) (*entity.User, error) {
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	stored, err := f.get(u.ID)
	if err != nil {
		return err
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.Avatar = u.Avatar
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, id, reason string) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.Active = false
	u.ReasonDeleteAccount = reason
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.Password = hash
	u.PasswordChangedAt = changedAt
	u.PasswordResetToken = ""
	u.PasswordResetTokenTimeout = time.Time{}
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, timeout time.Time) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.PasswordResetToken = tokenHash
	u.PasswordResetTokenTimeout = timeout
	return nil
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.PasswordResetToken = ""
	u.PasswordResetTokenTimeout = time.Time{}
	return nil
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	for _, u := range f.users {
		if u.Active && u.PasswordResetToken == tokenHash && u.PasswordResetTokenTimeout.After(now) {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) SetVerifyOTP(_ context.Context, id, otpHash string, timeout time.Time) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.EmailVerifyOTP = otpHash
	u.EmailVerifyOTPTimeout = timeout
	return nil
}

func (f *fakeUserRepo) ClearVerifyOTP(_ context.Context, id string) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.EmailVerifyOTP = ""
	u.EmailVerifyOTPTimeout = time.Time{}
	return nil
}

func (f *fakeUserRepo) GetByIDWithOTP(_ context.Context, id string, now time.Time) (*entity.User, error) {
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if u.EmailVerifyOTP == "" || !u.EmailVerifyOTPTimeout.After(now) {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) error {
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.EmailVerify = true
	u.EmailVerifyOTP = ""
	u.EmailVerifyOTPTimeout = time.Time{}
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakePublisher records dispatched jobs and can be told to fail.
type fakePublisher struct {
	jobs []any
	fail bool
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.jobs = append(p.jobs, body)
	return nil
}

// fakeDogRepo serves canned documents for the pipeline tests.
type fakeDogRepo struct {
	count   int
	dogs    map[string]*entity.Dog
	lastReq query.Request
	rows    []map[string]any
}

func newFakeDogRepo() *fakeDogRepo {
	return &fakeDogRepo{dogs: map[string]*entity.Dog{}}
}

func (f *fakeDogRepo) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeDogRepo) List(_ context.Context, req query.Request) ([]map[string]any, error) {
	f.lastReq = req
	out := make([]map[string]any, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, req.Remap(row))
	}
	return out, nil
}

func (f *fakeDogRepo) GetByID(_ context.Context, id string) (*entity.Dog, error) {
	d, ok := f.dogs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDogRepo) Create(_ context.Context, d *entity.Dog) error {
	d.ID = "dog-" + strconv.Itoa(len(f.dogs)+1)
	d.CreatedAt = time.Now()
	cp := *d
	f.dogs[d.ID] = &cp
	return nil
}

func (f *fakeDogRepo) Update(_ context.Context, d *entity.Dog) error {
	if _, ok := f.dogs[d.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *d
	f.dogs[d.ID] = &cp
	return nil
}

func (f *fakeDogRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.dogs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.dogs, id)
	return nil
}

func (f *fakeDogRepo) Stats(context.Context) ([]entity.BreedStats, error) {
	return nil, nil
}

func (f *fakeDogRepo) TopSmart(_ context.Context, n int) ([]entity.Dog, error) {
	var out []entity.Dog
	for _, d := range f.dogs {
		out = append(out, *d)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

var _ repository.DogRepository = (*fakeDogRepo)(nil)
