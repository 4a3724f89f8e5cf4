package form

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/upload"
)

// Field names a scalar metadata field.
type Field string

const (
	FieldTitle       Field = "title"
	FieldOwner       Field = "owner"
	FieldDescription Field = "description"
)

// LinkField names a field of a link entry.
type LinkField string

const (
	LinkHref LinkField = "href"
	LinkText LinkField = "text"
)

// Attempt identifies one submit. Results carrying an older attempt are
// dropped.
type Attempt string

// Snapshot is a point-in-time copy of the whole form.
type Snapshot struct {
	Metadata      card.Metadata
	Result        upload.Result
	Fee           string
	Balance       string
	StatusMessage string
	Submitting    bool
	TransactionID string

	// Retrieved is the artifact fetched back for RetrievedID. It is not
	// cleared by later submits, so it can belong to an older upload.
	Retrieved   string
	RetrievedID string
	HasContent  bool
}

// State owns the card metadata and everything derived from uploading it. It
// is safe for concurrent use.
type State struct {
	mu sync.Mutex

	meta    card.Metadata
	result  upload.Result
	fee     string
	balance string
	message string
	txID    string

	attempt    Attempt
	submitting bool
	closed     bool

	retrieved   string
	retrievedID string
	hasContent  bool
}

func New() *State {
	return &State{meta: card.New()}
}

// Metadata returns a copy of the current metadata.
func (s *State) Metadata() card.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Clone()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Metadata:      s.meta.Clone(),
		Result:        s.result,
		Fee:           s.fee,
		Balance:       s.balance,
		StatusMessage: s.message,
		Submitting:    s.submitting,
		TransactionID: s.txID,
		Retrieved:     s.retrieved,
		RetrievedID:   s.retrievedID,
		HasContent:    s.hasContent,
	}
}

// SetField sets title, owner or description. Empty values are allowed.
func (s *State) SetField(name Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case FieldTitle:
		s.meta.Title = value
	case FieldOwner:
		s.meta.Owner = value
	case FieldDescription:
		s.meta.Description = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetLinkField replaces the link at index with an updated copy.
func (s *State) SetLinkField(index int, name LinkField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.meta.Links) {
		return fmt.Errorf("%w: %d (have %d)", ErrLinkIndex, index, len(s.meta.Links))
	}

	entry := s.meta.Links[index]
	switch name {
	case LinkHref:
		entry.Href = value
	case LinkText:
		entry.Text = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	links := make([]card.LinkEntry, len(s.meta.Links))
	copy(links, s.meta.Links)
	links[index] = entry
	s.meta.Links = links
	return nil
}

// AddLink appends an empty link and returns the new number of links.
func (s *State) AddLink() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]card.LinkEntry, len(s.meta.Links), len(s.meta.Links)+1)
	copy(links, s.meta.Links)
	s.meta.Links = append(links, card.LinkEntry{})
	return len(s.meta.Links)
}

func (s *State) SetBalance(balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.balance = balance
}

// BeginSubmit starts a submit and returns its attempt token together with
// the metadata to upload. Only one submit may be outstanding.
func (s *State) BeginSubmit() (Attempt, card.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", card.Metadata{}, ErrClosed
	}
	if s.submitting {
		return "", card.Metadata{}, ErrSubmitInFlight
	}
	s.submitting = true
	s.attempt = Attempt(uuid.NewString())
	return s.attempt, s.meta.Clone(), nil
}

// FinishSubmit applies the result of attempt. It returns the transaction id
// to retrieve when the submit succeeded with an id different from the
// previous one.
func (s *State) FinishSubmit(attempt Attempt, r upload.Result) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || attempt == "" || attempt != s.attempt {
		return "", false
	}
	s.submitting = false
	s.result = r
	s.message = r.Message()

	switch r.Status {
	case upload.StatusSuccess:
		prev := s.txID
		s.txID = r.TransactionID
		s.fee = r.Fee
		return s.txID, s.txID != prev
	case upload.StatusFailed:
		s.txID = ""
	}
	return "", false
}

// SetRetrieved records content fetched for id, provided id is still the
// current transaction.
func (s *State) SetRetrieved(id, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || id == "" || id != s.txID {
		return false
	}
	s.retrieved = content
	s.retrievedID = id
	s.hasContent = true
	return true
}

// Close detaches the form; results arriving afterwards are ignored.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.submitting = false
}
