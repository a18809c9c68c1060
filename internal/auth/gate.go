package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

var (
	// ErrNoCredential is recorded when the Authorization header is absent or not a bearer token.
	ErrNoCredential = errors.New("no bearer credential")
	// ErrSubjectNotFound is recorded when a valid token names no existing account.
	ErrSubjectNotFound = errors.New("token subject not found")
)

// Outcome is the terminal state of one Gate evaluation.
type Outcome string

const (
	OutcomePassThrough     Outcome = "pass_through"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeBound           Outcome = "bound"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder resolves a token subject to an account. It returns repository.ErrNotFound
// when no account matches.
type UserFinder interface {
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)
}

// UserFinderFunc adapts a repository read such as UserRepository.GetByEmail to a
// UserFinder. Every lookup reads the store, so an account deleted after a token was
// issued stops resolving on the next request.
type UserFinderFunc func(ctx context.Context, subject string) (*domain.User, error)

// FindBySubject calls f.
func (f UserFinderFunc) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	return f(ctx, subject)
}

// OutcomeRecorder receives one outcome per evaluated request.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// Decision is the result of evaluating a request.
type Decision struct {
	Outcome  Outcome
	Identity *Identity
	Cause    error
}

// Gate binds a verified identity to protected requests. It never rejects a request:
// handlers decide whether an unbound request may proceed.
type Gate struct {
	tokens   TokenVerifier
	users    UserFinder
	public   map[string]struct{}
	logger   *zap.Logger
	recorder OutcomeRecorder
}

// GateOption customizes a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger used for failure causes.
func WithLogger(logger *zap.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithOutcomeRecorder reports every outcome to r.
func WithOutcomeRecorder(r OutcomeRecorder) GateOption {
	return func(g *Gate) {
		g.recorder = r
	}
}

// NewGate constructs the middleware. publicRoutes are matched exactly against the path.
func NewGate(tokens TokenVerifier, users UserFinder, publicRoutes []string, opts ...GateOption) *Gate {
	public := make(map[string]struct{}, len(publicRoutes))
	for _, route := range publicRoutes {
		public[route] = struct{}{}
	}
	g := &Gate{
		tokens: tokens,
		users:  users,
		public: public,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs the per-request state machine. Each failing stage short-circuits the next.
func (g *Gate) Evaluate(ctx context.Context, method, path, authorization string) Decision {
	if method == http.MethodOptions {
		return Decision{Outcome: OutcomePassThrough}
	}
	if _, ok := g.public[path]; ok {
		return Decision{Outcome: OutcomePassThrough}
	}

	token, ok := bearerToken(authorization)
	if !ok {
		return Decision{Outcome: OutcomeUnauthenticated, Cause: ErrNoCredential}
	}

	subject, err := g.tokens.Verify(token)
	if err != nil {
		return Decision{Outcome: OutcomeUnauthenticated, Cause: err}
	}

	user, err := g.users.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrSubjectNotFound
		}
		return Decision{Outcome: OutcomeUnauthenticated, Cause: err}
	}
	if user == nil {
		return Decision{Outcome: OutcomeUnauthenticated, Cause: ErrSubjectNotFound}
	}

	return Decision{Outcome: OutcomeBound, Identity: newIdentity(user)}
}

// Handle is the fiber middleware entry point.
func (g *Gate) Handle(c *fiber.Ctx) error {
	decision := g.Evaluate(c.UserContext(), c.Method(), c.Path(), c.Get(fiber.HeaderAuthorization))

	switch decision.Outcome {
	case OutcomeBound:
		bindIdentity(c, decision.Identity)
	case OutcomeUnauthenticated:
		g.logFailure(c, decision.Cause)
	}
	if g.recorder != nil {
		g.recorder.RecordAuthOutcome(string(decision.Outcome))
	}
	return c.Next()
}

func (g *Gate) logFailure(c *fiber.Ctx, cause error) {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(cause),
	}
	switch {
	case errors.Is(cause, ErrNoCredential), errors.Is(cause, ErrMalformed),
		errors.Is(cause, ErrBadSignature), errors.Is(cause, ErrExpired),
		errors.Is(cause, ErrSubjectNotFound):
		g.logger.Debug("request not authenticated", fields...)
	default:
		g.logger.Warn("identity lookup failed", fields...)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
