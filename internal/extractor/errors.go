package extractor

import "fmt"

// Stage names the step of a product visit that failed
type Stage string

const (
	StageNavigate Stage = "navigate"
	StageWait     Stage = "wait"
	StageHTML     Stage = "html"
	StageParse    Stage = "parse"
	StagePanic    Stage = "panic"
)

// ItemError is the failure of a single product page. It never stops the run.
type ItemError struct {
	Category string
	URL      string
	Stage    Stage
	Err      error
	// Stack is set when the visit panicked.
	Stack []byte
}

// Error implements the error interface
func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ItemError) Unwrap() error {
	return e.Err
}

func newItemError(category, url string, stage Stage, err error) *ItemError {
	return &ItemError{
		Category: category,
		URL:      url,
		Stage:    stage,
		Err:      err,
	}
}
