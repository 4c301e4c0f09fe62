package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// RESTMessageStore habla con la API interna de mensajes del backend principal
// cuando este servicio corre pegado al monolito en vez de con base propia.
type RESTMessageStore struct {
	baseURL      string
	serviceToken string
	client       *http.Client
}

func NewRESTMessageStore(baseURL, serviceToken string, timeout time.Duration, client *http.Client) *RESTMessageStore {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RESTMessageStore{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		serviceToken: strings.TrimSpace(serviceToken),
		client:       client,
	}
}

func (s *RESTMessageStore) SendMessage(ctx context.Context, senderID, receiverID, content, replyTo string) (*domain.Message, error) {
	body := map[string]string{
		"senderId":   senderID,
		"receiverId": receiverID,
		"content":    content,
	}
	if strings.TrimSpace(replyTo) != "" {
		body["replyTo"] = replyTo
	}
	return s.message(ctx, http.MethodPost, "/internal/messages", body)
}

func (s *RESTMessageStore) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	return s.message(ctx, http.MethodGet, "/internal/messages/"+url.PathEscape(messageID), nil)
}

func (s *RESTMessageStore) ListConversation(ctx context.Context, userA, userB string, query domain.ConversationQuery) ([]*domain.Message, error) {
	normalized := query.Normalize()
	values := url.Values{}
	values.Set("userA", userA)
	values.Set("userB", userB)
	values.Set("page", strconv.Itoa(normalized.Page))
	values.Set("limit", strconv.Itoa(normalized.Limit))

	data, err := s.do(ctx, http.MethodGet, "/internal/messages/conversation?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var messages []*domain.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return messages, nil
}

func (s *RESTMessageStore) EditMessage(ctx context.Context, messageID, actorID, content string) (*domain.Message, error) {
	return s.message(ctx, http.MethodPatch, "/internal/messages/"+url.PathEscape(messageID), map[string]string{
		"actorId": actorID,
		"content": content,
	})
}

func (s *RESTMessageStore) DeleteMessage(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	return s.message(ctx, http.MethodDelete, "/internal/messages/"+url.PathEscape(messageID)+"?actorId="+url.QueryEscape(actorID), nil)
}

func (s *RESTMessageStore) AddReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	return s.message(ctx, http.MethodPost, "/internal/messages/"+url.PathEscape(messageID)+"/reactions", map[string]string{
		"actorId": actorID,
		"emoji":   emoji,
	})
}

func (s *RESTMessageStore) RemoveReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	path := "/internal/messages/" + url.PathEscape(messageID) + "/reactions/" + url.PathEscape(emoji) + "?actorId=" + url.QueryEscape(actorID)
	return s.message(ctx, http.MethodDelete, path, nil)
}

func (s *RESTMessageStore) MarkDelivered(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	return s.message(ctx, http.MethodPost, "/internal/messages/"+url.PathEscape(messageID)+"/delivered", map[string]string{
		"actorId": actorID,
	})
}

func (s *RESTMessageStore) MarkRead(ctx context.Context, peerID, actorID string) (int64, error) {
	data, err := s.do(ctx, http.MethodPost, "/internal/messages/read", map[string]string{
		"peerId":  peerID,
		"actorId": actorID,
	})
	if err != nil {
		return 0, err
	}
	var result struct {
		Updated int64 `json:"updated"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("decode mark read: %w", err)
	}
	return result.Updated, nil
}

func (s *RESTMessageStore) message(ctx context.Context, method, path string, body any) (*domain.Message, error) {
	data, err := s.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}

func (s *RESTMessageStore) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.serviceToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, port.ErrMessageNotFound
	case resp.StatusCode == http.StatusForbidden:
		return nil, port.ErrNotParticipant
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("message api rejected request: %s", strings.TrimSpace(string(data)))
	default:
		return nil, fmt.Errorf("%w: status %d", port.ErrStoreUnavailable, resp.StatusCode)
	}
}

var _ port.MessageStore = (*RESTMessageStore)(nil)
