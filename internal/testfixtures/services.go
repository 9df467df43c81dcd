package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/workplace-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) idGen(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) clock(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Bookings    application.BookingStore
	Rooms       application.RoomStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	return application.NewBookingServiceWithLogger(
		deps.Bookings,
		deps.Rooms,
		f.idGen(deps.IDGenerator),
		f.clock(deps.Now),
		deps.Logger,
	)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       application.RoomStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		f.idGen(deps.IDGenerator),
		f.clock(deps.Now),
		deps.Logger,
	)
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserStore
	IDGenerator func() string
	Now         func() time.Time
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	return application.NewUserService(
		deps.Users,
		f.idGen(deps.IDGenerator),
		f.clock(deps.Now),
	)
}

// SupplyServiceDeps captures dependencies for constructing a supply service.
type SupplyServiceDeps struct {
	Supplies    application.SupplyStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewSupplyService builds a supply service using the supplied dependencies.
func (f *ServiceFactory) NewSupplyService(deps SupplyServiceDeps) *application.SupplyService {
	return application.NewSupplyServiceWithLogger(
		deps.Supplies,
		f.idGen(deps.IDGenerator),
		f.clock(deps.Now),
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Identities     application.IdentityStore
	Sessions       application.SessionStore
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies. The
// session TTL defaults to 24 hours and the verifier to the argon2id check.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	verify := deps.PasswordVerify
	if verify == nil {
		verify = application.VerifyPassword
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return application.NewAuthServiceWithLogger(
		deps.Identities,
		deps.Sessions,
		verify,
		f.idGen(deps.TokenGenerator),
		f.clock(deps.Now),
		ttl,
		deps.Logger,
	)
}
