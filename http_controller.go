package userauth

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/auth")
	PathPrefix string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController exposes the auth and verification flows as a JSON
// API.
type HTTPController struct {
	authenticator *Authenticator
	verifiers     map[string]CodeVerifier
	config        HTTPConfig
	logger        Logger
}

// NewHTTPController creates the JSON controller. Verifiers are keyed
// by channel name as it appears in the URL, for example "phone" or
// "email".
func NewHTTPController(authenticator *Authenticator, cfg HTTPConfig) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/auth"
	}

	return &HTTPController{
		authenticator: authenticator,
		verifiers:     map[string]CodeVerifier{},
		config:        cfg,
		logger:        defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	c.logger = normalizeLogger(logger)
	return c
}

// WithVerifier mounts a verification channel under the given name.
func (c *HTTPController) WithVerifier(name string, verifier CodeVerifier) *HTTPController {
	c.verifiers[name] = verifier
	return c
}

// RegisterRoutes registers the auth routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/sign-up", c.SignUp)
	group.Post("/sign-in", c.SignIn)
	group.Post("/refresh", c.Refresh)
	group.Post("/logout", c.Logout)
	group.Post("/verification/:channel/send", c.SendCode)
	group.Post("/verification/:channel/verify", c.VerifyCode)
}

// SignUpPayload is the registration request body.
type SignUpPayload struct {
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	MiddleName      string `json:"middle_name"`
}

// Validate will run validation rules
func (r SignUpPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required, validation.By(validPhoneRule)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.MiddleName, validation.Length(1, 200)),
	)
}

func (c *HTTPController) SignUp(ctx router.Context) error {
	payload := new(SignUpPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	pair, err := c.authenticator.Register(ctx.Context(), RegisterInput{
		Phone:      payload.Phone,
		Email:      payload.Email,
		Password:   payload.Password,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		MiddleName: payload.MiddleName,
		Client:     clientInfoFromContext(ctx),
	})
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, pair)
}

// SignInPayload is the login request body.
type SignInPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignInPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *HTTPController) SignIn(ctx router.Context) error {
	payload := new(SignInPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	pair, err := c.authenticator.Authenticate(ctx.Context(), payload.Phone, payload.Password, clientInfoFromContext(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

// RefreshPayload carries the refresh token for rotation and logout.
type RefreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required, is.UUIDv4),
	)
}

func (c *HTTPController) Refresh(ctx router.Context) error {
	payload := new(RefreshPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	pair, err := c.authenticator.Refresh(ctx.Context(), payload.RefreshToken, clientInfoFromContext(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (c *HTTPController) Logout(ctx router.Context) error {
	payload := new(RefreshPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	if err := c.authenticator.Revoke(ctx.Context(), payload.RefreshToken, clientInfoFromContext(ctx)); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "logged out",
	})
}

// SendCodePayload asks for a verification code.
type SendCodePayload struct {
	Identifier string `json:"identifier"`
}

// Validate will run validation rules
func (r SendCodePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.Length(3, 100)),
	)
}

func (c *HTTPController) SendCode(ctx router.Context) error {
	verifier, ok := c.verifiers[ctx.Param("channel")]
	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown verification channel",
		})
	}

	payload := new(SendCodePayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	if err := verifier.SendCode(ctx.Context(), payload.Identifier); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "code sent",
	})
}

// VerifyCodePayload submits a verification code.
type VerifyCodePayload struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

// Validate will run validation rules
func (r VerifyCodePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Code, validation.Required, validation.Length(4, 10), is.Digit),
	)
}

func (c *HTTPController) VerifyCode(ctx router.Context) error {
	verifier, ok := c.verifiers[ctx.Param("channel")]
	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown verification channel",
		})
	}

	payload := new(VerifyCodePayload)
	if err := ctx.Bind(payload); err != nil {
		return c.validationError(ctx, "failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err.Error())
	}

	if err := verifier.Verify(ctx.Context(), payload.Identifier, payload.Code); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "verified",
	})
}

func (c *HTTPController) validationError(ctx router.Context, message string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"error": message,
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	c.logger.Error("auth controller error: %v", err)

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ctx.JSON(statusForError(richErr), map[string]string{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	}

	return ctx.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}

func statusForError(err *goerrors.Error) int {
	switch err.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return router.StatusUnauthorized
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return router.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientInfoFromContext extracts request attribution. Proxied setups
// put the caller address in X-Forwarded-For; the first hop wins.
func clientInfoFromContext(ctx router.Context) ClientInfo {
	ip := ctx.Header("X-Forwarded-For")
	if idx := strings.Index(ip, ","); idx >= 0 {
		ip = strings.TrimSpace(ip[:idx])
	}
	if ip == "" {
		ip = ctx.Header("X-Real-IP")
	}

	return ClientInfo{
		IPAddress: ip,
		UserAgent: ctx.Header("User-Agent"),
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

func validPhoneRule(value any) error {
	s, _ := value.(string)
	if !ValidPhone(s) {
		return goerrors.New("must be a valid phone number", goerrors.CategoryValidation)
	}
	return nil
}
