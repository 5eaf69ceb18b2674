// Package client talks to the flashcard API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/quiz"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the API. The list endpoints
// answer 404 when there is nothing to list.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (string, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var er models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return "", &APIError{Status: resp.StatusCode, Code: er.Error.Code, Message: er.Error.Message}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Message, nil
}

// ListFlashcards returns all cards, or only those with topic when non-empty.
func (c *Client) ListFlashcards(ctx context.Context, topic string) ([]models.Flashcard, error) {
	path := "/flashcards"
	if topic != "" {
		path += "?topic=" + url.QueryEscape(topic)
	}
	var cards []models.Flashcard
	_, err := c.do(ctx, http.MethodGet, path, nil, &cards)
	return cards, err
}

func (c *Client) GetFlashcard(ctx context.Context, id int64) (*models.Flashcard, error) {
	var card models.Flashcard
	if _, err := c.do(ctx, http.MethodGet, "/flashcards/"+strconv.FormatInt(id, 10), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) AddFlashcard(ctx context.Context, req models.CreateFlashcardRequest) (string, error) {
	return c.do(ctx, http.MethodPost, "/flashcards", req, nil)
}

func (c *Client) RecordProgress(ctx context.Context, flashcardID int64, correct bool) error {
	_, err := c.do(ctx, http.MethodPost, "/progress", models.RecordProgressRequest{
		FlashcardID: &flashcardID,
		IsCorrect:   correct,
	}, nil)
	return err
}

// Report adapts RecordProgress to quiz.SendFunc.
func (c *Client) Report(ctx context.Context, o quiz.Outcome) error {
	return c.RecordProgress(ctx, o.FlashcardID, o.Correct)
}

func (c *Client) WrongFlashcardIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	_, err := c.do(ctx, http.MethodGet, "/progress/wrong-flashcards", nil, &ids)
	return ids, err
}

func (c *Client) ProgressSummary(ctx context.Context) (*models.ProgressSummary, error) {
	var sum models.ProgressSummary
	if _, err := c.do(ctx, http.MethodGet, "/progress/summary", nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
