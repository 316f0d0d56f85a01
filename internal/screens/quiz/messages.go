package quiz

import "github.com/shuhei10/whquiz/internal/practice"

// attemptReadyMsg is sent when the coordinator has assembled the
// session for this screen.
type attemptReadyMsg struct {
	seq     int
	attempt *practice.Attempt
	err     error
}

// advanceMsg moves past the feedback view to the next question.
type advanceMsg struct{}
