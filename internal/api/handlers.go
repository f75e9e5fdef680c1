package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"scamshield/internal/document"
	"scamshield/internal/domain"
)

const (
	MsgInvalidURL  = "Invalid URL format."
	MsgEmptyText   = "Text cannot be empty."
	MsgInvalidFile = "Invalid file type. Please upload a PDF or TXT file."
	MsgEmptyFile   = "File is empty or text could not be extracted."
	MsgUpstream    = "Error: the classification service is unavailable."
	MsgTooLarge    = "File is too large."
)

// PageData feeds index.html. Zero fields are not rendered.
type PageData struct {
	InputURL       string
	InputText      string
	PredictedClass string
	Message        string
}

// generationContext keeps request values but drops cancellation: a client
// that disconnects does not abort the call already sent upstream.
func generationContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func (s *Server) index(c echo.Context) error {
	return s.render(c, PageData{})
}

func (s *Server) predictURL(c echo.Context) error {
	url := c.FormValue("url")

	res, err := s.classifier.ClassifyURL(generationContext(c), url)
	if err != nil {
		return s.failure(c, err, PageData{InputURL: strings.TrimSpace(url)}, MsgEmptyText)
	}

	return s.render(c, PageData{InputURL: res.Input, PredictedClass: res.Output})
}

func (s *Server) detectFakeNews(c echo.Context) error {
	text := c.FormValue("text")

	res, err := s.classifier.DetectFakeNews(generationContext(c), text)
	if err != nil {
		return s.failure(c, err, PageData{InputText: strings.TrimSpace(text)}, MsgEmptyText)
	}

	return s.render(c, PageData{InputText: res.Input, PredictedClass: res.Output})
}

func (s *Server) detectScam(c echo.Context) error {
	fh, err := c.FormFile("file")
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return s.render(c, PageData{Message: MsgTooLarge})
	}
	if err != nil {
		return s.render(c, PageData{Message: MsgInvalidFile})
	}

	if !document.Supported(fh.Filename) {
		return s.render(c, PageData{Message: MsgInvalidFile})
	}

	f, err := fh.Open()
	if err != nil {
		s.log.Warn("open upload", zap.String("filename", fh.Filename), zap.Error(err))
		return s.render(c, PageData{Message: MsgEmptyFile})
	}
	defer f.Close()

	text, err := document.Extract(fh.Filename, f)
	if err != nil {
		s.log.Info("extract upload", zap.String("filename", fh.Filename), zap.Error(err))
		return s.failure(c, err, PageData{}, MsgEmptyFile)
	}

	res, err := s.classifier.DetectScam(generationContext(c), fh.Filename, text)
	if err != nil {
		return s.failure(c, err, PageData{}, MsgEmptyFile)
	}

	return s.render(c, PageData{Message: res.Output})
}

type classifyRequest struct {
	Task  domain.Task `json:"task" validate:"required,oneof=url_category news_veracity scam_message"`
	Input string      `json:"input"`
}

type classifyResponse struct {
	Task     domain.Task `json:"task"`
	Input    string      `json:"input"`
	Result   string      `json:"result"`
	Fallback bool        `json:"fallback"`
}

func (s *Server) classify(c echo.Context) error {
	var body classifyRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	req := domain.NewTextRequest(body.Task, body.Input)
	if body.Task == domain.TaskURLCategory {
		req = domain.NewURLRequest(body.Input)
	}

	res, err := s.classifier.Classify(generationContext(c), req)
	switch {
	case errors.Is(err, domain.ErrInvalidFormat):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": MsgInvalidURL})
	case errors.Is(err, domain.ErrEmptyInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": MsgEmptyText})
	case err != nil:
		s.logUpstream(c, err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": MsgUpstream})
	}

	return c.JSON(http.StatusOK, classifyResponse{
		Task:     res.Task,
		Input:    res.Input,
		Result:   res.Output,
		Fallback: res.Fallback,
	})
}

// failure renders a recoverable error on the same page. Upstream errors are
// logged in full and shown to the user only as a generic message.
func (s *Server) failure(c echo.Context, err error, page PageData, emptyMsg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidFormat):
		page.Message = MsgInvalidURL
	case errors.Is(err, domain.ErrEmptyInput):
		page.Message = emptyMsg
	case errors.Is(err, domain.ErrUnsupportedFileType):
		page.Message = MsgInvalidFile
	default:
		s.logUpstream(c, err)
		page.Message = MsgUpstream
	}
	return s.render(c, page)
}

func (s *Server) logUpstream(c echo.Context, err error) {
	s.log.Error("classification failed",
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
}

func (s *Server) render(c echo.Context, data PageData) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.log.Error("render template", zap.Error(err))
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
