package models

import "time"

// Article is an extracted web page, cached by URL.
type Article struct {
	URL               string    `json:"url"`
	Title             string    `json:"title,omitempty"`
	Cite              string    `json:"cite,omitempty"`
	Author            string    `json:"author,omitempty"`
	AuthorCite        string    `json:"author_cite,omitempty"`
	AuthorShort       string    `json:"author_short,omitempty"`
	AuthorType        string    `json:"author_type,omitempty"`
	Date              string    `json:"date,omitempty"`
	Source            string    `json:"source,omitempty"`
	WordCount         int       `json:"word_count,omitempty"`
	HTML              string    `json:"html,omitempty"`
	FollowUpQuestions []string  `json:"followUpQuestions"`
	QAHistory         []QAPair  `json:"qaHistory"`
	HitCount          int       `json:"-"`
	LastAccessed      time.Time `json:"-"`
}

// QAPair is a question asked about an article and its answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Favorite is an article bookmarked by a user.
type Favorite struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Cite       string    `json:"cite,omitempty"`
	Author     string    `json:"author,omitempty"`
	AuthorCite string    `json:"author_cite,omitempty"`
	Date       string    `json:"date,omitempty"`
	Source     string    `json:"source,omitempty"`
	WordCount  int       `json:"word_count,omitempty"`
	HTML       string    `json:"html,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
