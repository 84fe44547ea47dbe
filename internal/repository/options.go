package repository

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type options struct {
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
	bcryptCost int
}

// Option configures a repository.
type Option func(*options)

// WithClock overrides time.Now, used for timestamps and the numbering year.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

func newOptions(opts []Option) *options {
	o := &options{
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) timestamp() time.Time {
	return o.now().UTC()
}

func (o *options) today() string {
	return o.now().Format("2006-01-02")
}
