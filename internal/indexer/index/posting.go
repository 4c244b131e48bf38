package index

// Posting records how often a term occurs in one document's field.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

type PostingList []Posting

// TermEntry is one term of a field with its postings, as returned by
// Snapshot.
type TermEntry struct {
	Field    string      `json:"field"`
	Term     string      `json:"term"`
	Postings PostingList `json:"postings"`
}
