package api

// Wire types for the NAVIYA backend. Response shapes are defined here
// independently of the packages that consume them.

// --- Agent activity ---

// Activity is one entry in the per-user agent activity feed.
type Activity struct {
	ID        string `json:"id"`
	AgentName string `json:"agent_name"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// ActivitiesResponse is the response from the activity list endpoint.
type ActivitiesResponse struct {
	Activities []Activity `json:"activities"`
}

// --- Resume ---

// ResumeUploadResponse is returned after a multipart resume upload.
type ResumeUploadResponse struct {
	SkillsCount int            `json:"skills_count"`
	OpikEval    map[string]any `json:"opik_eval,omitempty"`
}

// SkillGapRequest asks for a gap analysis against a target role.
type SkillGapRequest struct {
	UserID     string `json:"user_id"`
	TargetRole string `json:"target_role"`
}

// SkillGapResponse is the gap analysis result.
type SkillGapResponse struct {
	MatchPercentage    float64        `json:"match_percentage"`
	MatchedSkills      []string       `json:"matched_skills"`
	MissingSkills      []string       `json:"missing_skills"`
	CareerReadiness    string         `json:"career_readiness"`
	TopRecommendations []string       `json:"top_recommendations"`
	OpikEval           map[string]any `json:"opik_eval,omitempty"`
}

// --- Roadmap ---

// RoadmapNode is one skill node in the generated graph.
type RoadmapNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Step        int    `json:"step"`
	Status      string `json:"status"` // "has", "missing" or "goal"
	Category    string `json:"category,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
}

// RoadmapLink is a directed edge between two nodes.
type RoadmapLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RoadmapGraph is the backend's skill roadmap payload.
type RoadmapGraph struct {
	Nodes      []RoadmapNode `json:"nodes"`
	Links      []RoadmapLink `json:"links"`
	Summary    string        `json:"summary,omitempty"`
	CareerGoal string        `json:"career_goal"`
}

// RoadmapGenerateRequest asks the backend to build a roadmap.
type RoadmapGenerateRequest struct {
	UserID            string `json:"user_id"`
	CareerGoal        string `json:"career_goal"`
	PreferredLanguage string `json:"preferred_language"`
}

// RoadmapGenerateResponse carries the generated graph and its id.
type RoadmapGenerateResponse struct {
	Success   bool           `json:"success"`
	Roadmap   *RoadmapGraph  `json:"roadmap"`
	RoadmapID string         `json:"roadmap_id"`
	OpikEval  map[string]any `json:"opik_eval,omitempty"`
}

// RoadmapSummary is one entry in the roadmap history list.
type RoadmapSummary struct {
	RoadmapID  string `json:"roadmap_id"`
	CareerGoal string `json:"career_goal"`
	CreatedAt  string `json:"created_at"`
}

// --- Video ---

// VideoSearchRequest finds tutorial videos for a node's search query.
type VideoSearchRequest struct {
	Query             string `json:"query"`
	PreferredLanguage string `json:"preferred_language"`
	MaxResults        int    `json:"max_results"`
}

// Video is one tutorial search hit.
type Video struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	ChannelTitle      string `json:"channel_title"`
	DurationSeconds   int    `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
	ViewCount         int64  `json:"view_count"`
}

// VideoSearchResponse is the search result list.
type VideoSearchResponse struct {
	Videos []Video `json:"videos"`
}

// VideoProgressSave persists watch time for one node's video.
type VideoProgressSave struct {
	UserID          string `json:"user_id"`
	RoadmapID       string `json:"roadmap_id"`
	NodeID          string `json:"node_id"`
	VideoID         string `json:"video_id"`
	VideoTitle      string `json:"video_title"`
	DurationSeconds int    `json:"duration_seconds"`
	WatchedSeconds  int    `json:"watched_seconds"`
}

// VideoProgressSaveResponse acknowledges a progress save.
type VideoProgressSaveResponse struct {
	Success        bool `json:"success"`
	WatchedSeconds int  `json:"watched_seconds"`
}

// VideoProgress is the stored per-node watch record.
type VideoProgress struct {
	DurationSeconds int     `json:"duration_seconds"`
	WatchedSeconds  int     `json:"watched_seconds"`
	ProgressPercent float64 `json:"progress_percent"`
	Completed       bool    `json:"completed"`
}

// VideoProgressResponse maps node id to stored progress.
type VideoProgressResponse struct {
	Success  bool                     `json:"success"`
	Progress map[string]VideoProgress `json:"progress"`
}

// --- Interview ---

// Segment is one speaker-tagged span of the interview transcript.
type Segment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	T       float64 `json:"t,omitempty"`
}

// QAEvaluation scores one question/answer exchange.
type QAEvaluation struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Evaluation is the full interview assessment.
type Evaluation struct {
	OverallScore       float64        `json:"overall_score"`
	OverallRating      string         `json:"overall_rating"`
	CommunicationScore float64        `json:"communication_score"`
	TechnicalScore     float64        `json:"technical_score"`
	ConfidenceScore    float64        `json:"confidence_score"`
	QAEvaluations      []QAEvaluation `json:"qa_evaluations"`
	StrengthsSummary   []string       `json:"strengths_summary"`
	ImprovementAreas   []string       `json:"improvement_areas"`
	Recommendation     string         `json:"recommendation"`
}

// InterviewResponse is returned atomically after the recording upload.
type InterviewResponse struct {
	Success    bool        `json:"success"`
	Transcript string      `json:"transcript"`
	Segments   []Segment   `json:"segments"`
	Evaluation *Evaluation `json:"evaluation"`
}

// InterviewChatRequest continues the conversation about the results.
type InterviewChatRequest struct {
	Message    string      `json:"message"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
	Segments   []Segment   `json:"segments,omitempty"`
	History    []ChatTurn  `json:"history,omitempty"`
}

// ChatTurn is one prior exchange in the interview chat.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InterviewChatResponse is the coach's reply.
type InterviewChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// --- Mentor ---

// MentorChatRequest is one message to the mentor agent.
type MentorChatRequest struct {
	UserID  string     `json:"user_id"`
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// MentorChatResponse is the mentor's reply.
type MentorChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// --- Explainer ---

// SlideSection is one heading-plus-bullets block on a slide.
type SlideSection struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets"`
}

// Slide is one slide of a generated explainer deck.
type Slide struct {
	SlideNumber int            `json:"slide_number"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Sections    []SlideSection `json:"sections"`
	KeyTakeaway string         `json:"key_takeaway,omitempty"`
	Narration   string         `json:"narration"`
	HasImage    bool           `json:"has_image"`
	ImageURL    string         `json:"image_url,omitempty"`
}

// ExplainerResponse is a generated explainer deck.
type ExplainerResponse struct {
	Success   bool    `json:"success"`
	SessionID string  `json:"session_id"`
	Slides    []Slide `json:"slides"`
}

// --- Heartbeat ---

// Heartbeat is the fire-and-forget activity beacon.
type Heartbeat struct {
	UserID  string `json:"user_id"`
	Feature string `json:"feature"`
	Seconds int    `json:"seconds"`
}
