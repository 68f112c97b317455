// Package webhook entrega alertas de telemetría vía HTTP POST.
package webhook

import (
	"context"
	"errors"
	"strings"

	"pet-insurance-api/internal/platform/httpclient"
	"pet-insurance-api/internal/ports/alerts"
)

type Notifier struct {
	client *httpclient.Client
	url    string
}

func New(client *httpclient.Client, url string) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("webhook: nil http client")
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook: empty url")
	}
	return &Notifier{client: client, url: url}, nil
}

func (n *Notifier) Notify(ctx context.Context, a alerts.Alert) error {
	return n.client.PostJSON(ctx, n.url, a, nil)
}
