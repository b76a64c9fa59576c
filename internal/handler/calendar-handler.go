package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/auth"
	"github.com/coursecal/coursecal/internal/courseville"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/service"
	"github.com/coursecal/coursecal/internal/session"
)

// ProfileAPI is the slice of the LMS client the handlers call directly.
type ProfileAPI interface {
	GetUserInfo(ctx context.Context, token string) (*courseville.Profile, error)
}

type CalendarHandler struct {
	authSvc     *auth.Service
	sessions    *session.Store
	lms         ProfileAPI
	userSvc     service.UserService
	eventSvc    service.EventService
	syncSvc     service.SyncService
	frontendURL string
	logger      *logger.Logger
}

func NewCalendarHandler(
	authSvc *auth.Service,
	sessions *session.Store,
	lms ProfileAPI,
	userSvc service.UserService,
	eventSvc service.EventService,
	syncSvc service.SyncService,
	frontendURL string,
	logger *logger.Logger,
) *CalendarHandler {
	return &CalendarHandler{
		authSvc:     authSvc,
		sessions:    sessions,
		lms:         lms,
		userSvc:     userSvc,
		eventSvc:    eventSvc,
		syncSvc:     syncSvc,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (h *CalendarHandler) Register(e *echo.Echo) {
	e.GET("/courseville/auth", h.Authorize)
	e.GET("/courseville/access_token", h.AccessToken)
	e.GET("/logout", h.Logout)

	e.GET("/", h.GetStudent)
	e.POST("/", h.CreateEvent)
	e.DELETE("/", h.LeaveEvent)
	e.POST("/invite", h.Invite)
	e.DELETE("/invite/:invitationId", h.DeclineInvitation)
}

// Authorize starts the OAuth flow.
func (h *CalendarHandler) Authorize(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.authSvc.AuthURL())
}

// AccessToken is the OAuth redirect target: it exchanges the code, opens a
// session and sends the browser on to the frontend calendar page.
func (h *CalendarHandler) AccessToken(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.String(http.StatusBadRequest, "Authorization error: "+c.QueryParam("error_description"))
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, h.authSvc.AuthURL())
	}

	token, err := h.authSvc.Exchange(c.Request().Context(), code)
	if err != nil {
		return err
	}

	sid, err := h.sessions.Create(c.Request().Context(), &session.Session{AccessToken: token.AccessToken})
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})

	return c.Redirect(http.StatusFound, h.frontendURL+"/component/calendar.html")
}

// Logout is pure session teardown; no calendar state is touched.
func (h *CalendarHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Destroy(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to destroy session", "error", err)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:   session.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return c.Redirect(http.StatusFound, h.frontendURL+"/login.html")
}

type studentResponse struct {
	UserID     string                            `json:"userId"`
	StudentID  string                            `json:"studentId"`
	Name       string                            `json:"name"`
	MyCourse   []string                          `json:"myCourse"`
	MyCalendar map[string][]*service.EventDetail `json:"myCalendar"`
	Noti       []service.InvitationDetail        `json:"noti"`
}

// GetStudent is the "everything for the current user" endpoint: profile,
// lazy user creation, assignment sync, calendar and pending invitations.
func (h *CalendarHandler) GetStudent(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.token(c)
	if err != nil {
		return err
	}

	profile, err := h.lms.GetUserInfo(ctx, token)
	if err != nil {
		return err
	}

	userID := profile.Account.UID.String()
	studentID := profile.Student.ID.String()
	name := profile.DisplayName()

	if err := h.userSvc.EnsureUser(ctx, userID, studentID, name); err != nil {
		return err
	}

	myCourse, err := h.syncSvc.SyncAssignments(ctx, token, userID, name)
	if err != nil {
		return err
	}

	myCalendar, err := h.eventSvc.ListEventsForUser(ctx, userID)
	if err != nil {
		return err
	}

	noti, err := h.eventSvc.ListInvitations(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, studentResponse{
		UserID:     userID,
		StudentID:  studentID,
		Name:       name,
		MyCourse:   myCourse,
		MyCalendar: myCalendar,
		Noti:       noti,
	})
}

func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	input := new(service.CreateEventInput)
	if err := c.Bind(input); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed event payload")
	}

	event, err := h.eventSvc.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, event)
}

type leaveEventRequest struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
}

func (h *CalendarHandler) LeaveEvent(c echo.Context) error {
	req := new(leaveEventRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed leave payload")
	}

	if err := h.eventSvc.LeaveEvent(c.Request().Context(), req.UserID, req.EventID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type inviteRequest struct {
	UserID  string `json:"userId"`
	Inviter string `json:"inviter"`
	EventID string `json:"eventId"`
}

func (h *CalendarHandler) Invite(c echo.Context) error {
	req := new(inviteRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed invite payload")
	}

	invitation, err := h.eventSvc.Invite(c.Request().Context(), req.UserID, req.Inviter, req.EventID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, invitation)
}

type declineRequest struct {
	UserID string `json:"userId"`
}

func (h *CalendarHandler) DeclineInvitation(c echo.Context) error {
	req := new(declineRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "malformed decline payload")
	}

	invitationID := c.Param("invitationId")
	if err := h.eventSvc.DeclineInvitation(c.Request().Context(), invitationID, req.UserID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// token resolves the bearer token from the session cookie. Core components
// receive it as an explicit parameter, never via ambient request state.
func (h *CalendarHandler) token(c echo.Context) (string, error) {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return "", apperrors.New(apperrors.CodeUnauthorized, "not logged in")
	}

	sess, err := h.sessions.Get(c.Request().Context(), cookie.Value)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", apperrors.New(apperrors.CodeUnauthorized, "session expired, please login again")
	}

	return sess.AccessToken, nil
}
