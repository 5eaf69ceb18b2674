package quiz

import "fmt"

type Stats struct {
	Correct   int      `json:"correct"`
	Incorrect int      `json:"incorrect"`
	Accuracy  *float64 `json:"accuracy"` // percent; nil when nothing was answered
}

// Summarize derives correct/incorrect/accuracy from a score and the number
// of answered cards.
func Summarize(score, answered int) Stats {
	st := Stats{Correct: score, Incorrect: answered - score}
	if answered > 0 {
		acc := 100 * float64(score) / float64(answered)
		st.Accuracy = &acc
	}
	return st
}

// AccuracyString renders the accuracy as "75.00%", or "" when undefined.
func (s Stats) AccuracyString() string {
	if s.Accuracy == nil {
		return ""
	}
	return fmt.Sprintf("%.2f%%", *s.Accuracy)
}

func (s Stats) Answered() int {
	return s.Correct + s.Incorrect
}
