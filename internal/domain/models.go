package domain

import "time"

// Document is one source file from the corpus. Immutable once ingested;
// a rebuild replaces the full set.
type Document struct {
	Id          string    `json:"source_doc_id"`
	Title       string    `json:"doc_title"`
	SourceFile  string    `json:"source_file"`
	Link        string    `json:"document_link"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentType DocType   `json:"content_type"`
	PageCount   int       `json:"page_count"`
}

// DocChunk is the unit of retrieval: a bounded span of cleaned text from
// one page of one document, plus everything the vector store payload needs.
type DocChunk struct {
	Doc        Document
	ChunkId    string    `json:"chunk_id"`
	Text       string    `json:"content"`
	PageNum    int       `json:"page_num"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

// DocFailure records one unreadable document during a rebuild. The rebuild
// continues with the remaining files.
type DocFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Source is a cited (document, page) pair returned to the chat client.
type Source struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Content  string `json:"content"`
}

// QueryRecord is one answered user interaction, appended to the daily
// interaction log. Never mutated, never deleted.
type QueryRecord struct {
	QueryId    string    `json:"query_id"`
	SessionId  string    `json:"session_id"`
	Query      string    `json:"query"`
	Answer     string    `json:"answer"`
	Sources    []Source  `json:"sources"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// FeedbackRecord is a thumbs-up/down on a prior QueryRecord, append-only.
type FeedbackRecord struct {
	FeedbackId string    `json:"feedback_id"`
	QueryId    string    `json:"query_id"`
	SessionId  string    `json:"session_id"`
	Rating     Rating    `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Rating string

const (
	ThumbsUp   Rating = "thumbs_up"
	ThumbsDown Rating = "thumbs_down"
)

func (r Rating) Valid() bool {
	return r == ThumbsUp || r == ThumbsDown
}
