package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
)

type httpMessageRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPMessageRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.MessageRepository {
	return &httpMessageRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpMessageRepository) Send(ctx context.Context, itemID int64, senderEmail, content string) (*entity.Message, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/items/%d/messages", itemID),
		Body: map[string]string{
			"senderEmail": senderEmail,
			"content":     content,
		},
		Timeout:       r.timeouts.Messaging,
		ColdStartHint: true,
		Endpoint:      "POST /items/:id/messages",
	})
	if err != nil {
		return nil, err
	}

	var message entity.Message
	if err := httpclient.DecodeObject(resp.Body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *httpMessageRepository) Sent(ctx context.Context, email string) ([]*entity.Message, error) {
	return r.list(ctx, "/items/messages/sent/"+url.PathEscape(email), "GET /items/messages/sent/:email")
}

func (r *httpMessageRepository) Received(ctx context.Context, email string) ([]*entity.Message, error) {
	return r.list(ctx, "/items/messages/received/"+url.PathEscape(email), "GET /items/messages/received/:email")
}

func (r *httpMessageRepository) list(ctx context.Context, path, endpoint string) ([]*entity.Message, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     path,
		Timeout:  r.timeouts.Messaging,
		NoCache:  true,
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*entity.Message](resp.Body)
}

func (r *httpMessageRepository) Answer(ctx context.Context, messageID int64, response string) (*entity.Message, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:        http.MethodPut,
		Path:          fmt.Sprintf("/items/messages/%d/response", messageID),
		Body:          map[string]string{"response": response},
		Timeout:       r.timeouts.Messaging,
		ColdStartHint: true,
		Endpoint:      "PUT /items/messages/:id/response",
	})
	if err != nil {
		return nil, err
	}

	var message entity.Message
	if err := httpclient.DecodeObject(resp.Body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
