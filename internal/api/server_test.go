package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"scamshield/internal/classifier"
	"scamshield/internal/config"
	"scamshield/internal/document/pdftest"
	"scamshield/internal/metrics"
	"scamshield/internal/mocks"
)

func newTestServer(t *testing.T) (*Server, *mocks.MockGenerator) {
	t.Helper()
	return newTestServerWith(t, config.Default().Server)
}

func newTestServerWith(t *testing.T, cfg config.ServerConfig) (*Server, *mocks.MockGenerator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	m := metrics.New()
	p := classifier.New(gen, zap.NewNop(), m)
	return NewServer(p, zap.NewNop(), m, cfg), gen
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func postFile(t *testing.T, s *Server, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/scam/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), `action="/predict"`)
	require.NotContains(t, rec.Body.String(), `id="message"`)
}

func TestPredict_Benign(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("benign", nil).Times(1)

	rec := postForm(s, "/predict", url.Values{"url": {"https://www.microsoft.com/"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="predicted-class" class="class">benign</span>`)
	require.Contains(t, body, `id="input-url">https://www.microsoft.com/</span>`)
}

func TestPredict_InvalidURL(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postForm(s, "/predict", url.Values{"url": {"not-a-url"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="message" class="message">Invalid URL format.</p>`)
	require.Contains(t, body, `id="input-url">not-a-url</span>`)
	require.NotContains(t, body, `id="predicted-class"`)
}

func TestPredict_MissingField(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postForm(s, "/predict", url.Values{})
	require.Contains(t, rec.Body.String(), MsgInvalidURL)
}

func TestPredict_UpstreamError(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("401 API key invalid: sk-secret"))

	rec := postForm(s, "/predict", url.Values{"url": {"https://example.com"}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), MsgUpstream)
	require.NotContains(t, rec.Body.String(), "sk-secret")
}

func TestDetectFakeNews(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(" fake\n", nil)

	rec := postForm(s, "/detect_fake_news", url.Values{"text": {"The Earth is flat."}})

	body := rec.Body.String()
	require.Contains(t, body, `id="predicted-class" class="class">fake</span>`)
	require.Contains(t, body, `id="input-text">The Earth is flat.</span>`)
}

func TestDetectFakeNews_Empty(t *testing.T) {
	s, _ := newTestServer(t)

	for _, text := range []string{"", "   \n"} {
		rec := postForm(s, "/detect_fake_news", url.Values{"text": {text}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `id="message" class="message">Text cannot be empty.</p>`)
	}
}

func TestDetectFakeNews_Fallback(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", nil)

	rec := postForm(s, "/detect_fake_news", url.Values{"text": {"Water boils at 100C at sea level."}})
	require.Contains(t, rec.Body.String(), `class="class">Detection failed.</span>`)
}

func TestScam_TXT(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			require.Contains(t, prompt, "Send 500 USD in gift cards")
			return "This is a scam: it demands payment in gift cards.", nil
		})

	rec := postFile(t, s, "mail.txt", []byte("Send 500 USD in gift cards to unlock your account."))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "This is a scam: it demands payment in gift cards.")
}

func TestScam_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{"unsupported extension", "mail.docx", []byte("hello"), MsgInvalidFile},
		{"empty txt", "empty.txt", []byte("  \n "), MsgEmptyFile},
		{"pdf that is not a pdf", "offer.pdf", []byte("plain text"), MsgEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			rec := postFile(t, s, tt.filename, tt.content)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestScam_NoFile(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postForm(s, "/scam/", url.Values{})
	require.Contains(t, rec.Body.String(), MsgInvalidFile)
}

func TestScam_Fallback(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", nil)

	rec := postFile(t, s, "mail.txt", []byte("Hello, lunch at noon?"))
	require.Contains(t, rec.Body.String(), "Classification failed.")
}

func TestClassifyAPI(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("malware\n", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/classify",
		strings.NewReader(`{"task":"url_category","input":"http://free-download-software.xyz/"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"task":"url_category","input":"http://free-download-software.xyz/","result":"malware","fallback":false}`,
		rec.Body.String())
}

func TestClassifyAPI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown task", `{"task":"horoscope","input":"x"}`, http.StatusBadRequest},
		{"missing task", `{"input":"x"}`, http.StatusBadRequest},
		{"bad url", `{"task":"url_category","input":"example.com"}`, http.StatusBadRequest},
		{"empty text", `{"task":"news_veracity","input":" "}`, http.StatusBadRequest},
		{"malformed json", `{"task":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestClassifyAPI_Upstream(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("dial tcp: timeout"))

	req := httptest.NewRequest(http.MethodPost, "/api/classify",
		strings.NewReader(`{"task":"scam_message","input":"Your parcel is held, pay customs fee here"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("benign", nil)
	postForm(s, "/predict", url.Values{"url": {"https://www.google.com/"}})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `scamshield_classifications_total{outcome="ok",task="url_category"} 1`)
}

func TestScam_PDF(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			require.Contains(t, prompt, "<<<INPUT\nSend gift cards now please\nINPUT>>>")
			return "Scam: it asks for gift cards.", nil
		})

	data := pdftest.Build(pdftest.Text("Send gift cards"), pdftest.Text("now please"))
	rec := postFile(t, s, "offer.pdf", data)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Scam: it asks for gift cards.")
}

func TestScam_TooLarge(t *testing.T) {
	cfg := config.Default().Server
	cfg.BodyLimit = "1K"
	s, _ := newTestServerWith(t, cfg)

	rec := postFile(t, s, "mail.txt", bytes.Repeat([]byte("a"), 4096))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), `id="message" class="message">File is too large.</p>`)
}

func TestClassifyAPI_TooLarge(t *testing.T) {
	cfg := config.Default().Server
	cfg.BodyLimit = "1K"
	s, _ := newTestServerWith(t, cfg)

	body := `{"task":"news_veracity","input":"` + strings.Repeat("a", 4096) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPredict_ClientGoneDoesNotCancelGeneration(t *testing.T) {
	s, gen := newTestServer(t)
	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			require.NoError(t, ctx.Err())
			return "benign", nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	form := url.Values{"url": {"https://www.microsoft.com/"}}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Contains(t, rec.Body.String(), `id="predicted-class" class="class">benign</span>`)
}
