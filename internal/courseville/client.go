package courseville

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/logger"
)

// Client calls the MyCourseVille public API with a bearer token. Every request
// runs under the caller's context plus a configured per-request timeout; the
// upstream offers no cancellation of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    timeout,
		logger:     logger,
	}
}

type Profile struct {
	Account struct {
		UID json.Number `json:"uid"`
	} `json:"account"`
	Student struct {
		ID          json.Number `json:"id"`
		FirstnameEN string      `json:"firstname_en"`
		LastnameEN  string      `json:"lastname_en"`
	} `json:"student"`
}

// DisplayName joins the English first and last names the way the frontend
// shows them.
func (p *Profile) DisplayName() string {
	return p.Student.FirstnameEN + " " + p.Student.LastnameEN
}

type Course struct {
	CvCID    json.Number `json:"cv_cid"`
	Year     string      `json:"year"`
	Semester int         `json:"semester"`
}

type Assignment struct {
	ItemID  json.Number `json:"itemid"`
	Title   string      `json:"title"`
	DueTime int64       `json:"duetime"`
}

func (c *Client) GetUserInfo(ctx context.Context, token string) (*Profile, error) {
	var payload struct {
		Data Profile `json:"data"`
	}
	if err := c.get(ctx, token, "/api/v1/public/get/user/info", nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

func (c *Client) GetUserCourses(ctx context.Context, token string) ([]Course, error) {
	var payload struct {
		Data struct {
			Student []Course `json:"student"`
		} `json:"data"`
	}
	if err := c.get(ctx, token, "/api/v1/public/get/user/courses", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data.Student, nil
}

func (c *Client) GetCourseInfo(ctx context.Context, token, cvCID string) (string, error) {
	var payload struct {
		Data struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	query := url.Values{"cv_cid": {cvCID}}
	if err := c.get(ctx, token, "/api/v1/public/get/course/info", query, &payload); err != nil {
		return "", err
	}
	return payload.Data.Title, nil
}

func (c *Client) GetCourseAssignments(ctx context.Context, token, cvCID string) ([]Assignment, error) {
	var payload struct {
		Data []Assignment `json:"data"`
	}
	query := url.Values{"cv_cid": {cvCID}, "detail": {"1"}}
	if err := c.get(ctx, token, "/api/v1/public/get/course/assignments", query, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstreamError, "failed to build courseville request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstreamError, fmt.Sprintf("courseville request failed: %s", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("courseville returned non-200", "path", path, "status", resp.StatusCode)
		return apperrors.New(apperrors.CodeUpstreamError, fmt.Sprintf("courseville returned status %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstreamError, "failed to decode courseville response")
	}

	return nil
}
