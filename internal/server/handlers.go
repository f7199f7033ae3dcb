package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/gist"
	"github.com/divya16-bit/ApplyBee/internal/jd"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
	"github.com/divya16-bit/ApplyBee/internal/scoring"
)

// minResumeChars is the shortest extracted resume text worth scoring.
const minResumeChars = 20

var errNoJobDescription = errors.New("job description has no usable content")

type scoreRequest struct {
	ParsedResume   map[string]any `json:"parsed_resume" binding:"required"`
	JobDescription string         `json:"job_description" binding:"required_without_all=JDSections JDHTML"`
	JDSections     *jd.Sections   `json:"jd_sections"`
	JDHTML         string         `json:"jd_html"`
	JDSkills       []string       `json:"jd_skills" binding:"omitempty,max=200,dive,max=100"`
	Explain        bool           `json:"explain"`
}

type scoreResponse struct {
	Success    bool        `json:"success"`
	Detail     string      `json:"detail"`
	Score      float64     `json:"score"`
	Filename   string      `json:"filename,omitempty"`
	JDSections jd.Sections `json:"jd_sections"`
	scoring.Result
}

type gistRequest struct {
	Resume       string         `json:"resume" binding:"required_without=ParsedResume"`
	JD           string         `json:"jd"`
	Labels       []string       `json:"labels" binding:"required,min=1,max=200,dive,max=500"`
	ParsedResume map[string]any `json:"parsed_resume"`
}

type gistResponse struct {
	Success  bool              `json:"success"`
	Detail   string            `json:"detail"`
	Answers  map[string]string `json:"answers"`
	Warnings []string          `json:"warnings"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Detail  string   `json:"detail"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

func fail(c *gin.Context, status int, code, detail string, fields ...string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail, Code: code, Fields: fields})
}

// badRequest reports binding errors, naming the failing fields when the
// validator provides them.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		fail(c, http.StatusBadRequest, "invalid_request", "Request validation failed", fields...)
		return
	}
	fail(c, http.StatusBadRequest, "invalid_request", err.Error())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  s.cfg.Version,
		"semantic": s.scorer.Semantic(),
	})
}

func (s *Server) resumeScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fields, err := resumetext.FieldsFromMap(req.ParsedResume)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_resume", err.Error())
		return
	}

	sections, fullText, err := jobSections(req.JDSections, req.JobDescription, req.JDHTML)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_job_description", err.Error())
		return
	}

	s.respondScore(c, scoring.Input{
		ResumeText:        fields.RawText,
		Sections:          sections,
		JDSkillsExtracted: req.JDSkills,
		JDFullText:        fullText,
		Explain:           req.Explain,
	}, "")
}

func (s *Server) match(c *gin.Context) {
	file, err := c.FormFile("resume")
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "resume file is required")
		return
	}
	if err := resumetext.Validate(file.Filename, file.Size); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, resumetext.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		fail(c, status, "invalid_resume", err.Error())
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "could not read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, resumetext.MaxFileSize+1))
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "could not read upload")
		return
	}

	text, err := resumetext.Extract(file.Filename, data)
	if err != nil || len(strings.TrimSpace(text)) < minResumeChars {
		loggerFrom(c, s.logger).Warn("resume text extraction failed", zap.String("filename", file.Filename), zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid_resume", "Could not extract text from resume.")
		return
	}

	sections, fullText, err := jobSections(nil, c.PostForm("job_description"), c.PostForm("jd_html"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_job_description", err.Error())
		return
	}

	s.respondScore(c, scoring.Input{
		ResumeText: text,
		Sections:   sections,
		JDFullText: fullText,
		Explain:    c.PostForm("explain") == "true",
	}, file.Filename)
}

func (s *Server) respondScore(c *gin.Context, in scoring.Input, filename string) {
	out, err := s.score(c.Request.Context(), in)
	if err != nil {
		loggerFrom(c, s.logger).Warn("scoring aborted", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		fail(c, status, "scoring_failed", "Score could not be computed")
		return
	}

	detail := "Score computed"
	if out.Degraded() {
		detail = "Score computed with degraded signal"
	}
	c.JSON(http.StatusOK, scoreResponse{
		Success:    true,
		Detail:     detail,
		Score:      out.Result.ATSScore,
		Filename:   filename,
		JDSections: in.Sections,
		Result:     out.Result,
	})
}

func (s *Server) getGist(c *gin.Context) {
	var req gistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var fields resumetext.Fields
	if req.ParsedResume != nil {
		if _, ok := req.ParsedResume["raw_text"]; !ok && req.Resume != "" {
			req.ParsedResume["raw_text"] = req.Resume
		}
		var err error
		if fields, err = resumetext.FieldsFromMap(req.ParsedResume); err != nil {
			fail(c, http.StatusBadRequest, "invalid_resume", err.Error())
			return
		}
	} else {
		fields = resumetext.ParseFields(req.Resume)
	}

	out := s.answerer.Answer(c.Request.Context(), gist.Request{
		Resume: fields,
		JDText: req.JD,
		Labels: req.Labels,
	})
	c.JSON(http.StatusOK, gistResponse{
		Success:  true,
		Detail:   "Gists generated",
		Answers:  out.Answers,
		Warnings: out.Warnings,
	})
}

// jobSections uses explicit sections when given and otherwise derives them
// from the HTML or plain text.
func jobSections(explicit *jd.Sections, text, html string) (jd.Sections, string, error) {
	text = strings.TrimSpace(text)
	if explicit != nil && !explicit.Empty() {
		return explicit.Clean(), text, nil
	}

	sections, fullText, err := jd.Parse(text, html)
	if err != nil {
		return jd.Sections{}, "", fmt.Errorf("parse job description: %w", err)
	}
	if sections.Empty() && strings.TrimSpace(fullText) == "" {
		return jd.Sections{}, "", errNoJobDescription
	}
	return sections, fullText, nil
}
