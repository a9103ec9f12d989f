package documents

import (
	"time"
)

// DocumentSummary describes one document.
type DocumentSummary struct {
	Title             string    `json:"title" yaml:"title"`
	Criteria          string    `json:"criteria" yaml:"criteria"`
	MatterReference   string    `json:"matterReference" yaml:"matterReference"`
	StatusDescription string    `json:"statusDescription" yaml:"statusDescription"`
	TimeStamp         time.Time `json:"timeStamp" yaml:"timeStamp"`
	OrderDate         time.Time `json:"orderDate" yaml:"orderDate"`
	DocumentID        string    `json:"documentId" yaml:"documentId"`
	UserID            string    `json:"userId" yaml:"userId"`
	OrderID           string    `json:"orderId" yaml:"orderId"`
	ItemNumber        int       `json:"itemNumber" yaml:"itemNumber"`
}

// Label is the one-line description used when listing documents.
func (d DocumentSummary) Label() string {
	return d.MatterReference + ": " + d.Title
}

// DocumentVersion is one rendered version of a document.
type DocumentVersion struct {
	DocumentVersionID string    `json:"documentVersionId" yaml:"documentVersionId"`
	MimeType          string    `json:"mimeType" yaml:"mimeType"`
	TimeStamp         time.Time `json:"timeStamp" yaml:"timeStamp"`
	VersionSequence   int       `json:"versionSequence" yaml:"versionSequence"`
	IsAwaitingPdf     bool      `json:"isAwaitingPdf" yaml:"isAwaitingPdf"`
	DocumentName      string    `json:"documentName" yaml:"documentName"`
}

// Label is the one-line description used when listing versions, e.g.
// "Pending: 2024-01-10 09:15:00".
func (v DocumentVersion) Label() string {
	state := "Complete"
	if v.IsAwaitingPdf {
		state = "Pending"
	}
	return state + ": " + formatDate(v.TimeStamp, time.DateTime)
}

// DocumentSummaryWithVersions is a document together with its versions in
// server order. DocumentVersions is never nil.
type DocumentSummaryWithVersions struct {
	DocumentSummary  DocumentSummary   `json:"documentSummary" yaml:"documentSummary"`
	DocumentVersions []DocumentVersion `json:"documentVersions" yaml:"documentVersions"`
}

// DocumentContent is the downloaded content of one version. The caller owns
// Blob.
type DocumentContent struct {
	DocumentID   string `json:"documentId" yaml:"documentId"`
	VersionID    string `json:"versionId" yaml:"versionId"`
	MimeType     string `json:"mimeType" yaml:"mimeType"`
	DocumentName string `json:"documentName" yaml:"documentName"`
	Blob         []byte `json:"-" yaml:"-"`
}

// Size returns the blob length in bytes.
func (c *DocumentContent) Size() int {
	return len(c.Blob)
}
