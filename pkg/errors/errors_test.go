package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("create listing: %w", ServerRejected(http.StatusBadRequest, "title missing"))

	assert.True(t, Is(err, CodeServerRejected))
	assert.False(t, Is(err, CodeTimeout))
	assert.Equal(t, CodeServerRejected, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(context.Canceled))
	assert.Equal(t, "", CodeOf(nil))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.RemoteStatus)
}

func TestImageTooLargeReportsDifference(t *testing.T) {
	err := ImageTooLarge(12*1024*1024, 10*1024*1024)

	assert.Equal(t, CodeImageTooLarge, err.Code)
	assert.Contains(t, err.Message, "12.0 MB")
	assert.Contains(t, err.Message, "10.0 MB")
	assert.Contains(t, err.Message, "2.0 MB over")
}

func TestVipStepFailedKeepsCause(t *testing.T) {
	cause := ServerRejected(http.StatusBadRequest, "Payment is not in PENDING status")
	err := VipStepFailed("complete payment", cause)

	assert.Equal(t, CodeVipStepFailed, err.Code)
	assert.Contains(t, err.Message, "Payment is not in PENDING status")
	assert.True(t, Is(err, CodeVipStepFailed))
	assert.ErrorIs(t, err, cause)
}

func TestWarmingUp(t *testing.T) {
	err := WarmingUp(context.DeadlineExceeded)

	assert.Equal(t, CodeTimeout, err.Code)
	assert.Equal(t, WarmingUpMessage, err.Message)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
