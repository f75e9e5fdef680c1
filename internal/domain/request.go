package domain

type PayloadKind string

const (
	PayloadURL      PayloadKind = "url"
	PayloadText     PayloadKind = "text"
	PayloadDocument PayloadKind = "document"
)

type Task string

const (
	TaskURLCategory  Task = "url_category"
	TaskNewsVeracity Task = "news_veracity"
	TaskScamMessage  Task = "scam_message"
)

// Request carries exactly one payload for a single classification.
type Request struct {
	Task     Task
	Kind     PayloadKind
	Payload  string
	Filename string
}

func NewURLRequest(url string) Request {
	return Request{Task: TaskURLCategory, Kind: PayloadURL, Payload: url}
}

func NewTextRequest(task Task, text string) Request {
	return Request{Task: task, Kind: PayloadText, Payload: text}
}

func NewDocumentRequest(filename, text string) Request {
	return Request{Task: TaskScamMessage, Kind: PayloadDocument, Payload: text, Filename: filename}
}

type Result struct {
	Task     Task
	Input    string
	Output   string
	Fallback bool
}
