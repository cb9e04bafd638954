package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"axiapac.com/personnel/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   core.Kind
		status int
	}{
		{core.KindAuthentication, http.StatusUnauthorized},
		{core.KindAuthorization, http.StatusForbidden},
		{core.KindNotFound, http.StatusNotFound},
		{core.KindUnknownPersonnel, http.StatusNotFound},
		{core.KindInvalidToken, http.StatusBadRequest},
		{core.KindExpiredToken, http.StatusGone},
		{core.KindConflict, http.StatusConflict},
		{core.KindValidation, http.StatusBadRequest},
		{core.KindDownstream, http.StatusBadGateway},
		{core.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.kind))
		})
	}
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   ErrorResponse
	}{
		{"validation", core.Validation("reason", "Ret sebebi zorunludur"), http.StatusBadRequest, ErrorResponse{Message: "Ret sebebi zorunludur", Field: "reason"}},
		{"wrapped", errors.Join(errors.New("ctx"), core.Conflict("Çakışma")), http.StatusConflict, ErrorResponse{Message: "Çakışma"}},
		{"untyped", errors.New("dial tcp: refused"), http.StatusInternalServerError, ErrorResponse{Message: "Beklenmeyen bir hata oluştu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			WriteError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.body, body)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestNullable(t *testing.T) {
	var dto struct {
		DeviceID Nullable[string] `json:"deviceId"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &dto))
	assert.False(t, dto.DeviceID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"deviceId":null}`), &dto))
	assert.True(t, dto.DeviceID.Set)
	assert.Nil(t, dto.DeviceID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"deviceId":"dev-1"}`), &dto))
	require.NotNil(t, dto.DeviceID.Value)
	assert.Equal(t, "dev-1", *dto.DeviceID.Value)
}

func TestFormatBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type dto struct {
		ScreenID   string `json:"screenId" binding:"required,screenid"`
		AccessCode string `json:"accessCode" binding:"omitempty,accesscode"`
		Count      int    `json:"count"`
	}

	bind := func(body string) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var v dto
		return c.ShouldBindJSON(&v)
	}

	assert.Equal(t, "'screenId' alanı zorunludur", FormatBindingError(bind(`{}`)))
	assert.Contains(t, FormatBindingError(bind(`{"screenId":"a b"}`)), "'screenId' yalnızca")
	assert.Contains(t, FormatBindingError(bind(`{"screenId":"A","accessCode":"x!"}`)), "'accessCode'")
	assert.NoError(t, bind(`{"screenId":"A-1","accessCode":" xj9k2p "}`))
	assert.Contains(t, FormatBindingError(bind(`{"screenId":"A","count":"x"}`)), "'count'")
	assert.Contains(t, FormatBindingError(bind(`{"screenId":}`)), "JSON")
	assert.Equal(t, "screenId", FirstInvalidField(bind(`{}`)))
}

func TestParseDateQuery(t *testing.T) {
	d, err := ParseDateQuery("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", d.String())

	d, err = ParseDateQuery("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDateQuery("10/01/2025")
	assert.Error(t, err)
}
