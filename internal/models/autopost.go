package models

// Bounds on how many keywords one auto-post invocation may consume
const (
	MinAutoPostKeywords = 1
	MaxAutoPostKeywords = 5
)

// SkipReason explains why a keyword did not produce a post
type SkipReason string

const (
	SkipReasonNone              SkipReason = ""
	SkipReasonGenerationFailed  SkipReason = "generation_failed"
	SkipReasonDraftInvalid      SkipReason = "draft_invalid"
	SkipReasonPersistenceFailed SkipReason = "persistence_failed"
	SkipReasonInvalidInput      SkipReason = "invalid_input"
)

// AutoPostRequest is the body of an auto-post trigger
type AutoPostRequest struct {
	KeywordCount int `json:"keywordCount"`
}

// KeywordOutcome is the result of processing one selected keyword:
// either a created post or a skip reason, never both.
type KeywordOutcome struct {
	KeywordID string
	Keyword   string
	Post      *Post
	Skip      SkipReason
	Detail    string
}

// Succeeded reports whether the keyword produced a post
func (o KeywordOutcome) Succeeded() bool {
	return o.Skip == SkipReasonNone && o.Post != nil
}

// AutoPostResult aggregates the outcomes of one invocation in selection order
type AutoPostResult struct {
	RunID    string
	Outcomes []KeywordOutcome
}

// Posts returns the summaries of every created post
func (r *AutoPostResult) Posts() []PostSummary {
	posts := make([]PostSummary, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			posts = append(posts, o.Post.Summary())
		}
	}
	return posts
}

// Skipped returns the outcomes that did not produce a post
func (r *AutoPostResult) Skipped() []KeywordOutcome {
	var skipped []KeywordOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

// AutoPostResponse is the API response for a successful auto-post trigger
type AutoPostResponse struct {
	Message string        `json:"message"`
	Count   int           `json:"count"`
	Posts   []PostSummary `json:"posts"`
	RunID   string        `json:"runId,omitempty"`
}

// Dashboard is the admin overview
type Dashboard struct {
	TotalPosts     int          `json:"totalPosts"`
	TotalKeywords  int          `json:"totalKeywords"`
	UnusedKeywords int          `json:"unusedKeywords"`
	TopPosts       []PostViews  `json:"topPosts"`
	ViewsByDate    []DailyViews `json:"viewsByDate"`
	RecentRuns     []*Run       `json:"recentRuns"`
}

// DailyViews sums the views of the posts created on one UTC day
type DailyViews struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// Stats holds the store counters exposed at /stats
type Stats struct {
	Posts          int `json:"posts"`
	Keywords       int `json:"keywords"`
	UnusedKeywords int `json:"unusedKeywords"`
}
