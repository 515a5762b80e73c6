// Package api is the HTTP surface of the NAVIYA backend: one shared
// client, typed methods per endpoint, and a response interceptor that
// lifts observability headers into telemetry traces.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/naviya/naviya/internal/dashboard"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty string means the request goes out unauthenticated.
type TokenSource func() string

// Client is the shared HTTP client for the backend.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client

	attachOnce  sync.Once
	interceptor Interceptor
}

// New creates a client bound to baseURL.
func New(baseURL string, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Dashboard ---

// DashboardSnapshot fetches the progression state document. A 404 or a
// success body without a state payload returns (nil, nil): the backend
// has no record for this user yet.
func (c *Client) DashboardSnapshot(ctx context.Context, userID string) (*dashboard.State, error) {
	var resp struct {
		Success bool             `json:"success"`
		State   *dashboard.State `json:"state"`
	}
	err := c.do(ctx, "GET", "/api/dashboard/state/"+userID, "dashboard snapshot", nil, &resp)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.State, nil
}

// AgentActivities lists recent per-agent activity for the user.
func (c *Client) AgentActivities(ctx context.Context, userID string) ([]Activity, error) {
	var resp ActivitiesResponse
	if err := c.do(ctx, "GET", "/api/dashboard/activities/"+userID, "agent activity", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

// --- Resume ---

// UploadResume posts the resume file as multipart form data.
func (c *Client) UploadResume(ctx context.Context, userID, filename string, file io.Reader) (*ResumeUploadResponse, error) {
	var resp ResumeUploadResponse
	fields := map[string]string{"user_id": userID}
	if err := c.doMultipart(ctx, "/api/resume/upload", "resume upload", "file", filename, file, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResumeData fetches the parsed profile payload for the user.
func (c *Client) ResumeData(ctx context.Context, userID string) (map[string]any, error) {
	var resp map[string]any
	if err := c.do(ctx, "GET", "/api/resume/"+userID, "resume data", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SkillGap runs the gap analysis against a target role.
func (c *Client) SkillGap(ctx context.Context, req SkillGapRequest) (*SkillGapResponse, error) {
	var resp SkillGapResponse
	if err := c.do(ctx, "POST", "/api/skills/gap", "skill gap analysis", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Roadmap ---

// GenerateRoadmap asks the backend to build a skill roadmap.
func (c *Client) GenerateRoadmap(ctx context.Context, req RoadmapGenerateRequest) (*RoadmapGenerateResponse, error) {
	var resp RoadmapGenerateResponse
	if err := c.do(ctx, "POST", "/api/roadmap/generate", "roadmap generation", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoadmapHistory lists previously generated roadmaps for the user.
func (c *Client) RoadmapHistory(ctx context.Context, userID string) ([]RoadmapSummary, error) {
	var resp struct {
		Roadmaps []RoadmapSummary `json:"roadmaps"`
	}
	if err := c.do(ctx, "GET", "/api/roadmap/history/"+userID, "roadmap history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roadmaps, nil
}

// LoadRoadmap fetches one stored roadmap by id.
func (c *Client) LoadRoadmap(ctx context.Context, roadmapID string) (*RoadmapGraph, error) {
	var resp struct {
		Success bool          `json:"success"`
		Roadmap *RoadmapGraph `json:"roadmap"`
	}
	if err := c.do(ctx, "GET", "/api/roadmap/"+roadmapID, "roadmap load", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roadmap, nil
}

// --- Video ---

// SearchVideos finds tutorial videos for a node search query.
func (c *Client) SearchVideos(ctx context.Context, req VideoSearchRequest) ([]Video, error) {
	var resp VideoSearchResponse
	if err := c.do(ctx, "POST", "/api/videos/search", "video search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Videos, nil
}

// SaveVideoProgress persists watch time for a roadmap node.
func (c *Client) SaveVideoProgress(ctx context.Context, req VideoProgressSave) (*VideoProgressSaveResponse, error) {
	var resp VideoProgressSaveResponse
	if err := c.do(ctx, "POST", "/api/videos/progress", "video progress save", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VideoProgressMap fetches stored progress for all nodes of a roadmap.
func (c *Client) VideoProgressMap(ctx context.Context, userID, roadmapID string) (map[string]VideoProgress, error) {
	var resp VideoProgressResponse
	path := fmt.Sprintf("/api/videos/progress/%s/%s", userID, roadmapID)
	if err := c.do(ctx, "GET", path, "video progress fetch", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Progress, nil
}

// --- Interview ---

// SubmitInterview uploads the recording blob and returns the full
// transcript and evaluation atomically.
func (c *Client) SubmitInterview(ctx context.Context, userID string, recording io.Reader) (*InterviewResponse, error) {
	var resp InterviewResponse
	fields := map[string]string{"user_id": userID}
	if err := c.doMultipart(ctx, "/api/interview/session", "interview evaluation", "file", "interview.webm", recording, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InterviewChat continues the coaching conversation about the results.
func (c *Client) InterviewChat(ctx context.Context, req InterviewChatRequest) (*InterviewChatResponse, error) {
	var resp InterviewChatResponse
	if err := c.do(ctx, "POST", "/api/interview/chat", "interview chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Mentor ---

// MentorChat sends one message to the mentor agent.
func (c *Client) MentorChat(ctx context.Context, req MentorChatRequest) (*MentorChatResponse, error) {
	var resp MentorChatResponse
	if err := c.do(ctx, "POST", "/api/mentor/chat", "mentor chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Explainer ---

// GenerateExplainer builds a narrated slide deck for a topic.
func (c *Client) GenerateExplainer(ctx context.Context, topic string) (*ExplainerResponse, error) {
	var resp ExplainerResponse
	body := map[string]string{"topic": topic}
	if err := c.do(ctx, "POST", "/api/explainer/generate", "topic explainer", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Heartbeat / logout ---

// SendHeartbeat posts an activity beacon. Callers treat it as
// fire-and-forget; the response body is ignored.
func (c *Client) SendHeartbeat(ctx context.Context, hb Heartbeat) error {
	return c.do(ctx, "POST", "/api/activity/heartbeat", "activity heartbeat", hb, nil)
}

// Logout invalidates the session server-side. Best effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "POST", "/api/auth/logout", "logout", nil, nil)
}

// --- HTTP plumbing ---

// apiError is the standard error body from the backend.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e *apiError) Error() string {
	switch {
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Code
	}
}

func (e *apiError) empty() bool {
	return e.Code == "" && e.Message == "" && e.Detail == ""
}

// do executes a JSON request against the backend. The label tags any
// telemetry trace produced by the response interceptor.
func (c *Client) do(ctx context.Context, method, path, label string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, label, result)
}

// doMultipart uploads one file plus form fields.
func (c *Client) doMultipart(ctx context.Context, path, label, fileField, filename string, file io.Reader, fields map[string]string, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload body: %w", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %q: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, label, result)
}

// send runs the request, feeds the interceptor on every outcome, and
// decodes the response. Errors are returned after interception.
func (c *Client) send(req *http.Request, label string, result any) error {
	if tok := c.Tokens(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	c.intercept(resp, label)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && !apiErr.empty() {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Error())
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
			default:
				return &apiErr
			}
		}
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
