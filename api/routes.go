package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/server/middleware"
	"github.com/connexa-app/connexa/version"
)

// RateLimits configures the per-route budgets. Each limit is independent:
// exhausting one never consumes another. This doubles as the "ratelimit"
// configuration section.
type RateLimits struct {
	// General is the per-IP budget across all routes. Negative disables
	// the global limiter.
	General int `yaml:"general" mapstructure:"general"`
	// Login and Register are per-IP budgets on the credential endpoints.
	Login    int `yaml:"login" mapstructure:"login"`
	Register int `yaml:"register" mapstructure:"register"`
	// RegisterWin stretches the register window beyond the default.
	RegisterWin time.Duration `yaml:"register_window" mapstructure:"register_window"`
	// ProfileRead, ProfileWrite and Delete are per-identity budgets.
	ProfileRead  int           `yaml:"profile_read" mapstructure:"profile_read"`
	ProfileWrite int           `yaml:"profile_write" mapstructure:"profile_write"`
	Delete       int           `yaml:"delete" mapstructure:"delete"`
	DeleteWin    time.Duration `yaml:"delete_window" mapstructure:"delete_window"`
	// Window is the default sliding window.
	Window time.Duration `yaml:"window" mapstructure:"window"`
}

// ApplyDefaults fills zero-valued budgets with production settings.
func (l *RateLimits) ApplyDefaults() {
	if l.General == 0 {
		l.General = 100
	}
	if l.Login == 0 {
		l.Login = 5
	}
	if l.Register == 0 {
		l.Register = 3
	}
	if l.RegisterWin == 0 {
		l.RegisterWin = time.Hour
	}
	if l.ProfileRead == 0 {
		l.ProfileRead = 50
	}
	if l.ProfileWrite == 0 {
		l.ProfileWrite = 20
	}
	if l.Delete == 0 {
		l.Delete = 5
	}
	if l.DeleteWin == 0 {
		l.DeleteWin = time.Hour
	}
	if l.Window == 0 {
		l.Window = 15 * time.Minute
	}
}

// DefaultRateLimits mirrors production settings.
func DefaultRateLimits() RateLimits {
	var l RateLimits
	l.ApplyDefaults()
	return l
}

// RegisterRoutes mounts the full route table on the engine. The
// authenticator builds the per-route policy chains; rate limiters are
// created per mount so budgets stay independent.
func (a *API) RegisterRoutes(r *gin.Engine, authn *middleware.Authenticator, limits RateLimits) {
	r.GET("/health", a.Health)

	// The general budget covers everything registered below; /health is
	// mounted above it so liveness probes are never throttled.
	if limits.General > 0 {
		r.Use(middleware.IPRateLimit(limits.General, limits.Window))
	}

	readLimit := middleware.NewIdentityRateLimiter(limits.ProfileRead, limits.Window)
	writeLimit := middleware.NewIdentityRateLimiter(limits.ProfileWrite, limits.Window)
	deleteLimit := middleware.NewIdentityRateLimiter(limits.Delete, limits.DeleteWin)

	users := r.Group("/users")
	{
		users.POST("/register",
			middleware.IPRateLimit(limits.Register, limits.RegisterWin),
			a.Register)
		users.POST("/login",
			middleware.IPRateLimit(limits.Login, limits.Window),
			a.Login)

		users.GET("/profile", chain(
			authn.Policy(middleware.PolicyConfig{CheckStore: true}),
			readLimit.Middleware(),
			a.Profile)...)

		users.PUT("/profile/:userId", chain(
			authn.Policy(middleware.PolicyConfig{
				CheckStore: true,
				Ownership:  &middleware.OwnershipCheck{Param: "userId", Overrides: auth.AdminRoles},
			}),
			writeLimit.Middleware(),
			a.UpdateProfile)...)

		users.POST("/logout", chain(
			authn.Policy(middleware.PolicyConfig{}),
			a.Logout)...)

		users.POST("/refresh", chain(
			authn.Policy(middleware.PolicyConfig{CheckStore: true}),
			a.Refresh)...)
	}

	r.DELETE("/account/:userId", chain(
		authn.Policy(middleware.PolicyConfig{
			CheckStore: true,
			Ownership:  &middleware.OwnershipCheck{Param: "userId", Overrides: auth.AdminRoles},
		}),
		deleteLimit.Middleware(),
		a.DeleteAccount)...)

	admin := r.Group("/admin", authn.Policy(middleware.PolicyConfig{
		CheckStore: true,
		Roles:      auth.AdminRoles,
	})...)
	{
		admin.GET("/users", a.ListUsers)
		admin.GET("/users/:userId", a.GetUser)
		admin.PATCH("/users/:userId/role", a.UpdateRole)
		admin.PATCH("/users/:userId/ban", a.SetBanned)
	}
}

// Health reports liveness and the build version.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Short(),
	})
}

// chain flattens policy stages and trailing handlers into one slice.
func chain(stages []gin.HandlerFunc, rest ...gin.HandlerFunc) []gin.HandlerFunc {
	return append(stages, rest...)
}
