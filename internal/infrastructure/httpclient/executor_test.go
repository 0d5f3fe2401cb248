package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/pkg/config"
	"webshop/pkg/errors"
)

func newBackend(t *testing.T, setup func(e *echo.Echo)) *httptest.Server {
	t.Helper()
	e := echo.New()
	setup(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestDoSuccessCarriesRequestID(t *testing.T) {
	var gotID string
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/items/1", func(c echo.Context) error {
			gotID = c.Request().Header.Get(RequestIDHeader)
			return c.JSON(http.StatusOK, map[string]interface{}{"id": 1})
		})
	})

	ex := NewExecutor(srv.URL)
	resp, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items/1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.NotEmpty(t, gotID)
}

func TestDoTimeoutIsDistinct(t *testing.T) {
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/slow", func(c echo.Context) error {
			select {
			case <-time.After(2 * time.Second):
			case <-c.Request().Context().Done():
			}
			return c.NoContent(http.StatusOK)
		})
	})

	ex := NewExecutor(srv.URL)
	_, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow", Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, errors.CodeTimeout, errors.CodeOf(err))

	_, err = ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow", Timeout: 50 * time.Millisecond, ColdStartHint: true})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.WarmingUpMessage, appErr.Message)
}

func TestDoNetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ex := NewExecutor(url)
	_, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items", Timeout: time.Second})
	assert.Equal(t, errors.CodeNetworkUnreachable, errors.CodeOf(err))
}

func TestDoCallerCancel(t *testing.T) {
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/slow", func(c echo.Context) error {
			<-c.Request().Context().Done()
			return nil
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	ex := NewExecutor(srv.URL)
	_, err := ex.Do(ctx, Request{Method: http.MethodGet, Path: "/slow", Timeout: 5 * time.Second})
	assert.Equal(t, errors.CodeCanceled, errors.CodeOf(err))
}

func TestDoServerRejectedAndPayloadTooLarge(t *testing.T) {
	srv := newBackend(t, func(e *echo.Echo) {
		e.POST("/items", func(c echo.Context) error {
			return c.String(http.StatusBadRequest, "Description must be at least 40 characters")
		})
		e.POST("/upload/1", func(c echo.Context) error {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "Maximum upload size exceeded"})
		})
	})

	ex := NewExecutor(srv.URL)

	_, err := ex.Do(context.Background(), Request{Method: http.MethodPost, Path: "/items", Body: map[string]string{}})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeServerRejected, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.RemoteStatus)
	assert.Equal(t, "Description must be at least 40 characters", appErr.Message)

	_, err = ex.Do(context.Background(), Request{Method: http.MethodPost, Path: "/upload/1", Form: &MultipartForm{
		Fields: map[string]string{"ownerEmail": "ana@example.com"},
		Files:  []FormFile{{Field: "file", Filename: "a.jpg", Data: []byte{1, 2, 3}}},
	}})
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodePayloadTooLarge, appErr.Code)
	assert.Equal(t, "Maximum upload size exceeded", appErr.Message)
}

func TestDegradedEndpointFallsBackOnce(t *testing.T) {
	var light, full int32
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/items/list", func(c echo.Context) error {
			atomic.AddInt32(&light, 1)
			return c.String(http.StatusNotFound, "no such endpoint")
		})
		e.GET("/items", func(c echo.Context) error {
			atomic.AddInt32(&full, 1)
			return c.JSON(http.StatusOK, []map[string]int{{"id": 1}})
		})
	})

	ex := NewExecutor(srv.URL, WithDeploymentMode(config.DeploymentConstrained))
	resp, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items", DegradedPath: "/items/list"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&light))
	assert.Equal(t, int32(1), atomic.LoadInt32(&full))
}

func TestDegradedEndpointNotRetriedOnServerError(t *testing.T) {
	var full int32
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/items/list", func(c echo.Context) error {
			return c.String(http.StatusInternalServerError, "boom")
		})
		e.GET("/items", func(c echo.Context) error {
			atomic.AddInt32(&full, 1)
			return c.JSON(http.StatusOK, []int{})
		})
	})

	ex := NewExecutor(srv.URL, WithDeploymentMode(config.DeploymentConstrained))
	_, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items", DegradedPath: "/items/list"})

	assert.Equal(t, errors.CodeServerRejected, errors.CodeOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&full))
}

func TestTrustedDeploymentUsesFullEndpoint(t *testing.T) {
	var light int32
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/items/list", func(c echo.Context) error {
			atomic.AddInt32(&light, 1)
			return c.JSON(http.StatusOK, []int{})
		})
		e.GET("/items", func(c echo.Context) error {
			return c.JSON(http.StatusOK, []int{})
		})
	})

	ex := NewExecutor(srv.URL, WithDeploymentMode(config.DeploymentTrusted))
	_, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items", DegradedPath: "/items/list"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&light))
}

func TestDoChainFirstSuccessWins(t *testing.T) {
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/actuator/health", func(c echo.Context) error {
			return c.String(http.StatusOK, "OK")
		})
	})

	ex := NewExecutor(srv.URL)
	resp, err := ex.DoChain(context.Background(), []Request{
		{Method: http.MethodGet, Path: "/items/ping"},
		{Method: http.MethodGet, Path: "/actuator/health"},
		{Method: http.MethodGet, Path: "/items/list"},
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Text())

	_, err = ex.DoChain(context.Background(), []Request{{Method: http.MethodGet, Path: "/nope"}})
	assert.Equal(t, errors.CodeServerRejected, errors.CodeOf(err))
}

func TestNoCacheStampsQuery(t *testing.T) {
	var stamp, cacheControl string
	srv := newBackend(t, func(e *echo.Echo) {
		e.GET("/items/3", func(c echo.Context) error {
			stamp = c.QueryParam("t")
			cacheControl = c.Request().Header.Get("Cache-Control")
			return c.JSON(http.StatusOK, map[string]int{"id": 3})
		})
	})

	ex := NewExecutor(srv.URL)
	_, err := ex.Do(context.Background(), Request{Method: http.MethodGet, Path: "/items/3", NoCache: true})
	require.NoError(t, err)

	assert.NotEmpty(t, stamp)
	assert.Equal(t, "no-store", cacheControl)
}

func TestDecodeListShapes(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}

	bare, err := DecodeList[item]([]byte(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	assert.Len(t, bare, 2)

	wrapped, err := DecodeList[item]([]byte(`{"content":[{"id":3}],"totalElements":1}`))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 3}}, wrapped)

	other, err := DecodeList[item]([]byte(`"LOGIN_OK"`))
	require.NoError(t, err)
	assert.Empty(t, other)

	empty, err := DecodeList[item](nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestDecodeObjectUnwrapsData(t *testing.T) {
	var out struct {
		PaymentID int64 `json:"paymentId"`
	}
	require.NoError(t, DecodeObject([]byte(`{"data":{"paymentId":9}}`), &out))
	assert.Equal(t, int64(9), out.PaymentID)

	require.NoError(t, DecodeObject([]byte(`{"paymentId":4,"message":"ok"}`), &out))
	assert.Equal(t, int64(4), out.PaymentID)

	assert.Error(t, DecodeObject([]byte(`[]`), &out))
}

func TestErrorMessageAndHasField(t *testing.T) {
	assert.Equal(t, "bad card", ErrorMessage([]byte(`{"error":"bad card"}`)))
	assert.Equal(t, "nope", ErrorMessage([]byte(`{"message":"nope"}`)))
	assert.Equal(t, "Invalid email or password", ErrorMessage([]byte("  Invalid email or password\n")))
	assert.Equal(t, "", ErrorMessage(nil))

	assert.True(t, HasField([]byte(`{"id":1,"imageUrl":null}`), "imageUrl"))
	assert.False(t, HasField([]byte(`{"id":1}`), "imageUrl"))
}
