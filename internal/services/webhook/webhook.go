package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrNotDelivered = errors.New("error sending message")

type Message struct {
	Content string `json:"content"`
}

type Messager struct {
	BaseURL   string
	ChainName string

	client *http.Client
	notify bool
}

func NewMessager(baseURL, chainName string, notify bool) *Messager {
	return &Messager{
		BaseURL:   baseURL,
		ChainName: chainName,
		client:    http.DefaultClient,
		notify:    notify,
	}
}

func (b *Messager) Notify(ctx context.Context, message string) error {
	return b.post(ctx, fmt.Sprintf("[%s] %s", b.ChainName, message))
}

func (b *Messager) NotifyWarning(ctx context.Context, errorMessage error) error {
	return b.post(ctx, fmt.Sprintf("[%s] warning: %s", b.ChainName, errorMessage.Error()))
}

func (b *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	return b.post(ctx, fmt.Sprintf("[%s] error: %s", b.ChainName, errorMessage.Error()))
}

func (b *Messager) post(ctx context.Context, content string) error {
	if !b.notify {
		return nil
	}

	data, err := json.Marshal(Message{Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	// discord answers 204 unless ?wait=true is set
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrNotDelivered, resp.StatusCode)
	}

	return nil
}
