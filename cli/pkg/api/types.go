package api

import "time"

// Owner is the public profile attached to a feed item
type Owner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Verified  bool   `json:"verified"`
}

// Item is one entry of a feed batch
type Item struct {
	ID          int64     `json:"id"`
	MediaType   string    `json:"media_type"`
	Owner       Owner     `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Views       int64     `json:"view_count"`
	Likes       int64     `json:"like_count"`
	Audience    string    `json:"audience,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	Sponsored   bool      `json:"sponsored,omitempty"`
	LandingURL  string    `json:"landing_url,omitempty"`
}

// Session is the server-side paging state of one feed
type Session struct {
	ID                  string    `json:"id"`
	Tab                 string    `json:"tab"`
	Tag                 string    `json:"tag,omitempty"`
	Limit               int       `json:"limit,omitempty"`
	ExcludeIDs          []int64   `json:"exclude_ids"`
	PersonalizedBatches int       `json:"personalized_batches"`
	SeenAdIDs           []int64   `json:"seen_ad_ids"`
	Exhausted           bool      `json:"exhausted"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Page is one assembled batch
type Page struct {
	SessionID      string `json:"session_id"`
	Items          []Item `json:"items"`
	Path           string `json:"path"`
	HasMore        bool   `json:"has_more"`
	SponsoredIndex int    `json:"sponsored_index"`
}

// CreateSessionRequest opens a feed session
type CreateSessionRequest struct {
	Tab   string `json:"tab"`
	Tag   string `json:"tag,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type sessionResponse struct {
	Session Session `json:"session"`
}

// Media is a single item with the viewer's like state
type Media struct {
	Item
	ContentType string `json:"content_type"`
	LikedByMe   bool   `json:"liked_by_me"`
}

// LikeResult is the state after a like toggle
type LikeResult struct {
	Liked        bool  `json:"liked"`
	Likes        int64 `json:"likes"`
	RecTagsAdded int64 `json:"rec_tags_added"`
}

// FollowResult is the state after a follow toggle
type FollowResult struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}

// FollowCounts are a profile's follower totals
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type preferencesPayload struct {
	Preferences []string `json:"preferences"`
}

// TagSuggestion is a tag completion
type TagSuggestion struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

type tagsResponse struct {
	Tags []TagSuggestion `json:"tags"`
}

// Comment is one comment with its replies nested below it
type Comment struct {
	ID        string     `json:"id"`
	ParentID  *string    `json:"parent_id,omitempty"`
	AuthorID  string     `json:"author_id"`
	Username  string     `json:"username"`
	Body      string     `json:"body"`
	Likes     int64      `json:"likes"`
	LikedByMe bool       `json:"liked_by_me"`
	CreatedAt time.Time  `json:"created_at"`
	Replies   []*Comment `json:"replies"`
}

type commentsResponse struct {
	Comments []*Comment `json:"comments"`
}

type commentRequest struct {
	Body     string `json:"body"`
	ParentID string `json:"parent_id,omitempty"`
}

// LikedPage is one page of the viewer's liked media
type LikedPage struct {
	Items   []Item `json:"items"`
	Type    string `json:"type"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"has_more"`
}

// ReportReason is a reason a report can give
type ReportReason struct {
	Reason string `json:"reason"`
	Label  string `json:"label"`
}

type reportRequest struct {
	MediaID int64  `json:"media_id"`
	Reason  string `json:"reason"`
	Note    string `json:"note,omitempty"`
}

// ErrorResponse is the server's error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
