package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contributionBody struct {
	Amount    decimal.Decimal `json:"amount" binding:"positive_amount"`
	Currency  string          `json:"currency" binding:"omitempty,currency"`
	Frequency string          `json:"frequency" binding:"omitempty,frequency"`
	Email     string          `json:"email" binding:"omitempty,email"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/bind", func(c *gin.Context) {
		var body contributionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleBindError(c, err)
			return
		}
		c.String(http.StatusOK, body.Amount.String())
	})
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBinding_Valid(t *testing.T) {
	w := post(bindRouter(), `{"amount":"12.50","currency":"USD","frequency":"weekly"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12.5", w.Body.String())
}

func TestBinding_ValidationDetails(t *testing.T) {
	w := post(bindRouter(), `{"amount":"-1","currency":"XYZ","frequency":"hourly","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, map[string]string{
		"amount":    "Must be a positive amount",
		"currency":  "Unsupported currency",
		"frequency": "Must be one of: daily weekly monthly flexible",
		"email":     "Invalid email format",
	}, messages)
}

func TestBinding_MalformedJSON(t *testing.T) {
	w := post(bindRouter(), `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, w.Body.Bytes()))
}
