package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http/httptest"
	"testing"

	"video-uploader/pkg/constants"
	"video-uploader/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return HandleError(c, nil, err) })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, testErr)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestHandleError_Mapping(t *testing.T) {
	require.NoError(t, i18n.Load("en"))

	cases := []struct {
		err    error
		status int
		code   string
		retry  string
	}{
		{ErrTitleRequired(), 400, "title_required", constants.RetryNone},
		{ErrOffsetMismatch(42), 409, "offset_mismatch", constants.RetryCorrectedOffset},
		{ErrStagingExists("id"), 409, "staging_exists", constants.RetrySame},
		{ErrNotFound(nil), 404, "not_found", constants.RetryNone},
		{ErrTransientIO(stderrors.New("disk")), 500, "io_error", constants.RetrySame},
		{ErrProcessExecution("ffmpeg", stderrors.New("exit 1")), 500, "process_failed", constants.RetryTerminal},
		{ErrContentBlocked("nope"), 422, "content_blocked", constants.RetryTerminal},
		{stderrors.New("plain"), 500, "internal_error", constants.RetrySame},
	}
	for _, tc := range cases {
		status, res := respond(t, tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, res.Error)
		assert.Equal(t, tc.retry, res.Retry, tc.code)
		assert.NotEmpty(t, res.Message)
	}

	_, res := respond(t, ErrOffsetMismatch(42))
	require.NotNil(t, res.UploadSize)
	assert.Equal(t, int64(42), *res.UploadSize)
}

func TestHandleError_Locale(t *testing.T) {
	require.NoError(t, i18n.Load("tr"))
	t.Cleanup(func() { _ = i18n.Load("en") })

	_, res := respond(t, ErrTitleRequired())
	assert.Equal(t, i18n.T("title_required"), res.Message)
	assert.NotEqual(t, "title_required", res.Message)
}

func TestIsKind(t *testing.T) {
	wrapped := fmtWrap(ErrUploadBusy(7))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(stderrors.New("x"), KindInternal))

	ue, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, int64(7), *ue.UploadSize)
}

func fmtWrap(err error) error {
	return stderrors.Join(stderrors.New("context"), err)
}
