package frontend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, page string, data map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, renderer.Render(c, http.StatusOK, page, "test-nonce", data))
	return w
}

func TestSectionsCoverAllItems(t *testing.T) {
	sections := Sections()
	require.Len(t, sections, 4)

	seen := make(map[string]bool)
	for _, s := range sections {
		assert.Len(t, s.Fields, types.ItemsPerScale)
		assert.NotEmpty(t, s.Title)
		for _, f := range s.Fields {
			seen[f.Key] = true
		}
	}
	assert.Len(t, seen, 48)
	assert.True(t, seen["ce1"])
	assert.True(t, seen["ae12"])
}

func TestRenderIndex(t *testing.T) {
	w := render(t, PageIndex, IndexData())
	body := w.Body.String()

	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Contains(t, body, `name="subject"`)
	assert.Contains(t, body, `name="ce1" value="1"`)
	assert.Contains(t, body, `name="ae12" value="4"`)
	assert.Equal(t, 48*4, strings.Count(body, `type="radio"`))
	assert.Contains(t, body, `<script nonce="test-nonce">`)
}

func TestRenderResult(t *testing.T) {
	a := &types.Assessment{
		ID:         "abc-123",
		Subject:    "<Ada>",
		Totals:     types.ScaleTotals{CE: 12, RO: 24, AC: 36, AE: 36},
		Axes:       types.AxisValues{ACMinusCE: 24, AEMinusRO: -3},
		Prediction: "Converging",
		CreatedAt:  time.Now(),
	}

	body := render(t, PageResult, ResultData(a)).Body.String()

	assert.Contains(t, body, "Converging")
	assert.Contains(t, body, "Practical problem solver")
	assert.Contains(t, body, "<td>36</td>")
	assert.Contains(t, body, "+24")
	assert.Contains(t, body, "-3")
	assert.Contains(t, body, "&lt;Ada&gt;", "subject is escaped")
	assert.NotContains(t, body, "<script", "result page carries no script")
}

func TestRenderUnknownPage(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Error(t, renderer.Render(c, http.StatusOK, "missing", "", nil))
}

func TestStaticHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	staticFS, err := StaticFS()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/static/*filepath", StaticHandler(staticFS))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age")
	assert.Contains(t, w.Body.String(), ".container")
}
