package reddit

import "time"

// Post is the full record for a single submission.
type Post struct {
	ID                string
	Title             string
	Score             int
	UpvoteRatio       float64
	NumComments       int
	Created           time.Time
	Flair             string // empty when the post carries no flair
	Author            string
	IsOriginalContent bool
	IsSelf            bool
	Over18            bool
	Spoiler           bool
	Stickied          bool
	Permalink         string
	URL               string
	Domain            string
	SelftextLength    int
	Gilded            int
}

// Subreddit holds general information about a subreddit.
type Subreddit struct {
	DisplayName     string
	Title           string
	Description     string
	Subscribers     int
	ActiveUserCount int
	Created         time.Time
	Over18          bool
	URL             string
}

// apiPost mirrors the JSON shape of a t3 submission.
type apiPost struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Score             int     `json:"score"`
	UpvoteRatio       float64 `json:"upvote_ratio"`
	NumComments       int     `json:"num_comments"`
	CreatedUTC        float64 `json:"created_utc"`
	LinkFlairText     *string `json:"link_flair_text"`
	Author            *string `json:"author"`
	IsOriginalContent bool    `json:"is_original_content"`
	IsSelf            bool    `json:"is_self"`
	Over18            bool    `json:"over_18"`
	Spoiler           bool    `json:"spoiler"`
	Stickied          bool    `json:"stickied"`
	Permalink         string  `json:"permalink"`
	URL               string  `json:"url"`
	Domain            string  `json:"domain"`
	Selftext          string  `json:"selftext"`
	Gilded            int     `json:"gilded"`
}

// toPost converts the wire shape into a Post.
func (a apiPost) toPost() Post {
	author := "[deleted]"
	if a.Author != nil && *a.Author != "" {
		author = *a.Author
	}

	var flair string
	if a.LinkFlairText != nil {
		flair = *a.LinkFlairText
	}

	return Post{
		ID:                a.ID,
		Title:             a.Title,
		Score:             a.Score,
		UpvoteRatio:       a.UpvoteRatio,
		NumComments:       a.NumComments,
		Created:           time.Unix(int64(a.CreatedUTC), 0).UTC(),
		Flair:             flair,
		Author:            author,
		IsOriginalContent: a.IsOriginalContent,
		IsSelf:            a.IsSelf,
		Over18:            a.Over18,
		Spoiler:           a.Spoiler,
		Stickied:          a.Stickied,
		Permalink:         a.Permalink,
		URL:               a.URL,
		Domain:            a.Domain,
		SelftextLength:    len(a.Selftext),
		Gilded:            a.Gilded,
	}
}

// listing mirrors reddit's Listing envelope.
type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data apiPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// apiSubreddit mirrors the JSON shape of /r/<sub>/about.
type apiSubreddit struct {
	Data struct {
		DisplayName       string  `json:"display_name"`
		Title             string  `json:"title"`
		PublicDescription string  `json:"public_description"`
		Subscribers       int     `json:"subscribers"`
		ActiveUserCount   int     `json:"active_user_count"`
		CreatedUTC        float64 `json:"created_utc"`
		Over18            bool    `json:"over18"`
		URL               string  `json:"url"`
	} `json:"data"`
}
