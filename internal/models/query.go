package models

// SortField names a sortable video column.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortViews     SortField = "views"
	SortDuration  SortField = "duration"
	SortTitle     SortField = "title"
	// SortRank keeps the order of VideoQuery.CandidateIDs.
	SortRank SortField = "rank"
)

// Window selects a slice of an ordered result set.
type Window struct {
	Offset int
	Limit  int
}

// VideoQuery is the storage-level form of a video feed request. Every ordering
// is completed with the video id in the same direction so that equal sort keys
// still produce a total order.
type VideoQuery struct {
	// CandidateIDs restricts results to the listed ids when Restricted is set.
	// An empty restricted list matches nothing.
	CandidateIDs []string
	Restricted   bool

	OwnerID       string
	PublishedOnly bool

	Sort SortField
	Desc bool

	Window Window
}
