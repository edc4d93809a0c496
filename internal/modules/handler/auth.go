package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandlerConfig struct {
	// AppURL is the frontend root and always ends with "/".
	AppURL        string
	SessionCookie string
	CookieSecure  bool
	YouTubeAPIKey string
}

type AuthHandler struct {
	svc service.AuthService
	cfg AuthHandlerConfig
	log *zap.Logger
}

func NewAuthHandler(s service.AuthService, cfg AuthHandlerConfig, log *zap.Logger) *AuthHandler {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "sessionid"
	}
	return &AuthHandler{svc: s, cfg: cfg, log: log}
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Resolves the caller from posted credentials, an existing session or lazy guest signup, then redirects to the frontend. Always answers 302.
//	@Tags			auth
//	@Accept			x-www-form-urlencoded
//	@Param			guest		query		boolean	false	"Create a guest account when nobody is logged in"
//	@Param			passport	query		string	false	"Comma separated request ids to join"
//	@Param			key			query		string	false	"Passed through to the login page"
//	@Param			username	formData	string	false	"Username"
//	@Param			password	formData	string	false	"Password"
//	@Success		302	{string}	string	"Redirect to the frontend"
//	@Router			/login/ [get]
//	@Router			/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	guest, _ := strconv.ParseBool(c.Query("guest"))
	in := service.LoginInput{
		Guest:    guest,
		Passport: parsePassport(c.Query("passport")),
	}
	if c.Request.Method == http.MethodPost {
		in.Username = c.PostForm("username")
		in.Password = c.PostForm("password")
	}
	if tok, err := c.Cookie(h.cfg.SessionCookie); err == nil {
		in.SessionToken = tok
	}

	out, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
	}
	if err != nil || out == nil || out.User == nil {
		c.Redirect(http.StatusFound, h.loginPage(c.Request.URL.RawQuery))
		return
	}

	u := out.User
	maxAge := int(out.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookie, out.SessionToken, maxAge, "/", "", h.cfg.CookieSecure, true)
	c.SetCookie("username", u.Username, maxAge, "/", "", h.cfg.CookieSecure, false)
	c.SetCookie("userid", strconv.FormatUint(uint64(u.ID), 10), maxAge, "/", "", h.cfg.CookieSecure, false)
	c.SetCookie("groups", strings.Join(u.GroupNames(), ","), maxAge, "/", "", h.cfg.CookieSecure, false)

	if out.NeedsEmail {
		c.Redirect(http.StatusFound, h.cfg.AppURL+"app/change_email/")
		return
	}
	c.Redirect(http.StatusFound, h.cfg.AppURL+"app/dashboard/")
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Ends the session and clears the login cookies.
//	@Tags			auth
//	@Success		302	{string}	string	"Redirect to the frontend"
//	@Router			/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok, err := c.Cookie(h.cfg.SessionCookie); err == nil {
		if err := h.svc.EndSession(c.Request.Context(), tok); err != nil {
			h.log.Warn("end session", zap.Error(err))
		}
	}
	for _, name := range []string{h.cfg.SessionCookie, "username", "userid", "groups"} {
		c.SetCookie(name, "", -1, "/", "", h.cfg.CookieSecure, name == h.cfg.SessionCookie)
	}
	c.Redirect(http.StatusFound, h.cfg.AppURL+"app/login/")
}

type AppInfo struct {
	Permissions   []string `json:"permissions"`
	YouTubeAPIKey string   `json:"youtube_api_key"`
}

// App godoc
//
//	@Summary		App bootstrap
//	@Description	Permissions of the current user and the YouTube API key the frontend player needs.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=handler.AppInfo}
//	@Router			/app [get]
func (h *AuthHandler) App(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: AppInfo{
		Permissions:   u.Permissions(),
		YouTubeAPIKey: h.cfg.YouTubeAPIKey,
	}})
}

func (h *AuthHandler) loginPage(rawQuery string) string {
	target := h.cfg.AppURL + "app/login/"
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// parsePassport keeps the well-formed ids of a comma separated list.
func parsePassport(raw string) []uint {
	var out []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		out = append(out, uint(id))
	}
	return out
}
