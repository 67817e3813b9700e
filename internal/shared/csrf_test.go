package shared

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	m := NewCSRFManager("csrfsecret")
	sess := &Session{ID: "abc"}

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again, "token is stable within a session")

	assert.NoError(t, m.VerifyToken(sess, token))
	assert.ErrorIs(t, m.VerifyToken(sess, token+"x"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(&Session{ID: "other"}, token), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(nil, token), ErrCSRFTokenMissing)

	_, err = m.EnsureToken(nil)
	assert.ErrorIs(t, err, ErrCSRFTokenMissing)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(CSRFHeader, "from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))

	form := url.Values{CSRFFormField: {"from-form"}}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, "from-form", TokenFromRequest(req))
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3}, p)
	start, end := p.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 20, end)

	start, end = NewPagination(3, 20, 45).Window()
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = NewPagination(9, 20, 45).Window()
	assert.Equal(t, start, end, "page past the end is empty")

	start, end = NewPagination(math.MaxInt/2, 20, 45).Window()
	assert.Equal(t, 45, start, "huge page does not wrap negative")
	assert.Equal(t, 45, end)

	req := httptest.NewRequest(http.MethodGet, "/?page=2&per_page=500", nil)
	page, perPage := PaginationFromRequest(req)
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, perPage)

	req = httptest.NewRequest(http.MethodGet, "/?page=4611686018427387904&per_page=20", nil)
	page, perPage = PaginationFromRequest(req)
	assert.Equal(t, maxPage, page)
	start, end = NewPagination(page, perPage, 45).Window()
	assert.Equal(t, start, end)
	assert.GreaterOrEqual(t, start, 0)
}
