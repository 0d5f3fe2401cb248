package repository

import (
	"context"
	"net/http"
	"strings"

	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
	"webshop/pkg/errors"
)

const (
	registerOK = "REGISTER_OK"
	loginOK    = "LOGIN_OK"
)

type httpAuthRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPAuthRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.AuthRepository {
	return &httpAuthRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpAuthRepository) Register(ctx context.Context, email, password, fullName string) error {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: map[string]string{
			"email":    email,
			"password": password,
			"fullName": fullName,
		},
		Timeout:       r.timeouts.Register,
		ColdStartHint: true,
	})
	if err != nil {
		return err
	}
	return expectMarker(resp, registerOK, "Registration failed")
}

func (r *httpAuthRepository) Login(ctx context.Context, email, password string) error {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
		Timeout:       r.timeouts.Login,
		ColdStartHint: true,
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.RemoteStatus == http.StatusUnauthorized {
			return errors.Unauthorized(appErr.Message, err)
		}
		return err
	}
	return expectMarker(resp, loginOK, "Login failed")
}

// expectMarker accepts a 2xx body only when it carries the literal success
// marker; anything else is free text explaining the failure.
func expectMarker(resp *httpclient.Response, marker, fallback string) error {
	text := resp.Text()
	if strings.Contains(text, marker) {
		return nil
	}
	message := httpclient.ErrorMessage(resp.Body)
	if message == "" {
		message = fallback
	}
	return errors.ServerRejected(resp.Status, message)
}
