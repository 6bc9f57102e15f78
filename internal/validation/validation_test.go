package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIsValidOrgID(t *testing.T) {
	valid := []string{
		"org_1",
		"ORG-42",
		"a",
		strings.Repeat("x", 64),
	}
	for _, id := range valid {
		assert.True(t, IsValidOrgID(id), "expected %q to be valid", id)
	}

	invalid := []string{
		"",
		"org 1",
		"org#1",
		"org/1",
		strings.Repeat("x", 65),
	}
	for _, id := range invalid {
		assert.False(t, IsValidOrgID(id), "expected %q to be invalid", id)
	}
}

func TestIsValidAmount(t *testing.T) {
	valid := []string{"499", "499.00", "0.01", " 12.50 "}
	for _, a := range valid {
		assert.True(t, IsValidAmount(a), "expected %q to be valid", a)
	}

	invalid := []string{"", "0", "0.00", "-5", "abc", "1.2.3", ".50", "12."}
	for _, a := range invalid {
		assert.False(t, IsValidAmount(a), "expected %q to be invalid", a)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  ", 100))
	assert.Equal(t, "he", SanitizeString("hello", 2))
	assert.Equal(t, "ab", SanitizeString("a\x00b", 100))
}

func TestValidate_CollectsErrors(t *testing.T) {
	errs := Validate(
		Required("organization_id", ""),
		ValidAmount("amount", "abc"),
		Positive("tokens", 0),
	)
	assert.Len(t, errs, 3)
	assert.Contains(t, errs.Error(), "organization_id")
}

func TestValidate_PassesCleanInput(t *testing.T) {
	errs := Validate(
		Required("organization_id", "org_1"),
		ValidOrgID("organization_id", "org_1"),
		ValidAmount("amount", "499.00"),
		Positive("tokens", 1000),
		MaxLength("note", "short", 100),
	)
	assert.Empty(t, errs)
}

func TestOrgParamMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OrgParamMiddleware())
	r.GET("/orgs/:org", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/orgs/org_1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/orgs/bad%20org", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestSizeMiddleware(16))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too_large"})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/echo", strings.NewReader(`{"a":1}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/echo", strings.NewReader(`{"a":"`+strings.Repeat("x", 100)+`"}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
