package services

// StreamEvent is one line of the newline-delimited JSON stream emitted
// while a document is processed. The Type field selects which of the other
// fields are populated.
type StreamEvent struct {
	Type       string    `json:"type"`
	TotalPages int       `json:"total_pages,omitempty"`
	PDFName    string    `json:"pdf_name,omitempty"`
	Progress   int       `json:"progress,omitempty"`
	Page       int       `json:"page,omitempty"`
	PageData   *PageData `json:"page_data,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// PageData carries one fully processed page to the client. Image and Audio
// are base64 so the page can render without further round-trips; the URL
// fields let the client re-fetch the binaries later.
type PageData struct {
	PageNumber  int    `json:"page_number"`
	Image       string `json:"image"`
	Explanation string `json:"explanation"`
	Audio       string `json:"audio"`
	AudioURL    string `json:"audio_url"`
	ImageURL    string `json:"image_url"`
}

const (
	EventInfo     = "info"
	EventProgress = "progress"
	EventPage     = "page"
	EventComplete = "complete"
	EventError    = "error"
	EventExisting = "existing"
)
