package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

var ErrUnsuccessful = errors.New("api returned unsuccessful response")

type apiResponse struct {
	IsSuccess    bool `json:"IsSuccess"`
	ResponseBody struct {
		Messages []models.Message `json:"messages"`
	} `json:"ResponseBody"`
}

// HistoryClient загружает историю сообщений через REST API
type HistoryClient struct {
	baseURL     string
	accessToken string

	http *http.Client
}

func NewHistoryClient(baseURL, accessToken string) *HistoryClient {
	return &HistoryClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchMessages возвращает страницу сообщений от старых к новым
func (c *HistoryClient) FetchMessages(ctx context.Context, conversationID string, page, limit int) ([]models.Message, error) {
	q := url.Values{}
	q.Set("id", conversationID)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/messages/get?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get messages: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse

	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	if !body.IsSuccess {
		return nil, ErrUnsuccessful
	}

	// Сервер отдает новые первыми
	msgs := body.ResponseBody.Messages
	slices.Reverse(msgs)

	return msgs, nil
}
