package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"flashquiz-backend/internal/chart"
	"flashquiz-backend/internal/client"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/quiz"
)

// errNoCards means there is nothing to quiz on; not a failure.
var errNoCards = errors.New("no flashcards available")

type app struct {
	api      *client.Client
	reporter quiz.Reporter
	opts     options
	in       *bufio.Scanner
	out      io.Writer
}

func (a *app) run(ctx context.Context) error {
	switch a.opts.Mode {
	case modeAdd:
		return a.addCards(ctx)
	case modeProgress:
		return a.showProgress(ctx)
	default:
		return a.runQuiz(ctx)
	}
}

func (a *app) runQuiz(ctx context.Context) error {
	cards, err := a.loadCards(ctx)
	if errors.Is(err, errNoCards) {
		fmt.Fprintln(a.out, "No flashcards found. Add some first.")
		return nil
	}
	if err != nil {
		return err
	}

	sess := quiz.NewSession(cards, a.reporter)
	for {
		if !a.play(ctx, sess) {
			return nil
		}
		a.finish(sess)
		if !a.confirm("Restart? [y/N] ") {
			return nil
		}
		if err := sess.Restart(); err != nil {
			return err
		}
	}
}

func (a *app) loadCards(ctx context.Context) ([]models.Flashcard, error) {
	if !a.opts.WrongOnly {
		cards, err := a.api.ListFlashcards(ctx, a.opts.Topic)
		if client.IsNotFound(err) {
			return nil, errNoCards
		}
		return cards, err
	}

	ids, err := a.api.WrongFlashcardIDs(ctx)
	if client.IsNotFound(err) {
		fmt.Fprintln(a.out, "Nothing answered wrong yet.")
		return nil, errNoCards
	}
	if err != nil {
		return nil, err
	}

	var cards []models.Flashcard
	for _, id := range ids {
		card, err := a.api.GetFlashcard(ctx, id)
		if client.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if a.opts.Topic != "" && (card.Topic == nil || *card.Topic != a.opts.Topic) {
			continue
		}
		cards = append(cards, *card)
	}
	if len(cards) == 0 {
		return nil, errNoCards
	}
	return cards, nil
}

// play asks questions until the session completes. It returns false when
// the user quits or input ends.
func (a *app) play(ctx context.Context, sess *quiz.Session) bool {
	for sess.State() == quiz.InProgress {
		if !sess.Submitted() {
			card, _ := sess.Current()
			fmt.Fprintf(a.out, "\nQuestion %d/%d: %s\n", sess.Index()+1, sess.Len(), card.Question)

			answer, ok := a.prompt("> ")
			if !ok || strings.TrimSpace(answer) == ":q" {
				return false
			}

			correct, err := sess.Submit(ctx, answer)
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
				continue
			}
			if correct {
				fmt.Fprintln(a.out, "Correct!")
			} else {
				fmt.Fprintf(a.out, "Wrong! The answer is: %s\n", card.Answer)
			}
			fmt.Fprintf(a.out, "Score: %d/%d\n", sess.Score(), sess.Answered())
		}

		if _, ok := a.prompt("Press Enter for the next question "); !ok {
			return false
		}
		if err := sess.Next(); err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return false
		}
	}
	return sess.State() == quiz.Completed
}

func (a *app) finish(sess *quiz.Session) {
	st := sess.Stats()
	fmt.Fprintf(a.out, "\nQuiz complete! Final score: %d/%d\n", sess.Score(), sess.Answered())
	fmt.Fprintf(a.out, "Correct: %d  Incorrect: %d  Accuracy: %s\n", st.Correct, st.Incorrect, st.AccuracyString())
	a.maybeChart(st)
}

// addCards prompts for question/answer pairs until the user stops. Blank
// fields are caught here before any request is made.
func (a *app) addCards(ctx context.Context) error {
	for {
		question, ok := a.prompt("Question: ")
		if !ok {
			return nil
		}
		answer, ok := a.prompt("Answer: ")
		if !ok {
			return nil
		}

		if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
			fmt.Fprintln(a.out, "Both fields are required!")
		} else {
			req := models.CreateFlashcardRequest{Question: question, Answer: answer}
			if a.opts.Topic != "" {
				topic := a.opts.Topic
				req.Topic = &topic
			}
			msg, err := a.api.AddFlashcard(ctx, req)
			var apiErr *client.APIError
			switch {
			case errors.As(err, &apiErr):
				fmt.Fprintf(a.out, "Failed to add flashcard: %s\n", apiErr.Message)
			case err != nil:
				return err
			default:
				fmt.Fprintln(a.out, msg)
			}
		}

		if !a.confirm("Add another? [y/N] ") {
			return nil
		}
	}
}

// showProgress prints totals over every recorded attempt.
func (a *app) showProgress(ctx context.Context) error {
	sum, err := a.api.ProgressSummary(ctx)
	if err != nil {
		return err
	}
	if sum.Attempts == 0 {
		fmt.Fprintln(a.out, "No quiz attempts yet.")
		return nil
	}

	st := quiz.Summarize(sum.Correct, sum.Attempts)
	fmt.Fprintf(a.out, "Attempts: %d\n", sum.Attempts)
	fmt.Fprintf(a.out, "Correct: %d  Incorrect: %d  Accuracy: %s\n", st.Correct, st.Incorrect, st.AccuracyString())
	a.maybeChart(st)
	return nil
}

// maybeChart writes the accuracy PNG when --chart is set.
func (a *app) maybeChart(st quiz.Stats) {
	if a.opts.ChartPath == "" || st.Answered() == 0 {
		return
	}
	if err := writeChart(a.opts.ChartPath, st); err != nil {
		fmt.Fprintf(a.out, "Could not write chart: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Chart written to %s\n", a.opts.ChartPath)
}

func writeChart(path string, st quiz.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.RenderBar(f, st); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

func (a *app) confirm(label string) bool {
	answer, ok := a.prompt(label)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
