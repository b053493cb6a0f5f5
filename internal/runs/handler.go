package runs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/export"
	"resume-screener/internal/screening"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/taxonomy"
)

const defaultMaxUploadBytes int64 = 16 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Taxonomy       *taxonomy.Taxonomy
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, tax *taxonomy.Taxonomy, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Handler{Svc: svc, Taxonomy: tax, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches screening routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyzeUpload)
	rg.POST("/analyze/text", h.analyzeText)
	rg.GET("/industries", h.industries)
	rg.GET("/industry-skills/:industry", h.industrySkills)
	rg.GET("/runs", h.list)
	rg.GET("/runs/:id", h.get)
	rg.GET("/runs/:id/results", h.results)
	rg.GET("/runs/:id/export.csv", h.exportCSV)
	rg.DELETE("/runs/:id", h.delete)
}

func (h *Handler) analyzeUpload(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	if err := c.Request.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeFileTooLarge, fmt.Sprintf("File too large. Maximum size is %dMB", h.MaxUploadBytes>>20), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "expected a multipart form", nil)
		return
	}

	job := screening.JobContext{
		Description: c.PostForm("jobDescription"),
		Industry:    strings.ToLower(strings.TrimSpace(c.PostForm("industry"))),
		Options: screening.Options{
			DeepAnalysis:   formToggle(c.PostForm("deepAnalysis")),
			SkillGaps:      formToggle(c.PostForm("skillGaps")),
			SalaryInsights: formToggle(c.PostForm("salaryInsights")),
			CultureFit:     formToggle(c.PostForm("cultureFit")),
		},
	}
	if job.Industry == "auto" {
		job.Industry = ""
	}
	if err := checkDescription(job.Description); err != nil {
		h.writeError(c, err)
		return
	}

	var headers []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		headers = c.Request.MultipartForm.File["resumes"]
	}
	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		if strings.TrimSpace(fh.Filename) == "" {
			continue
		}
		data, err := readFormFile(fh)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", gin.H{"file": fh.Filename})
			return
		}
		uploads = append(uploads, Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	run, err := h.Svc.AnalyzeUploads(c.Request.Context(), clientID, job, uploads)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.RunIDKey, run.ID)
	respond.JSON(c, http.StatusOK, toResponse(run))
}

func (h *Handler) analyzeText(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeFileTooLarge, fmt.Sprintf("Request too large. Maximum size is %dMB", h.MaxUploadBytes>>20), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	job := screening.JobContext{
		Description: req.JobDescription,
		Industry:    strings.ToLower(strings.TrimSpace(req.Industry)),
		Options:     req.Options,
	}
	run, err := h.Svc.AnalyzeTexts(c.Request.Context(), clientID, job, req.Resumes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.RunIDKey, run.ID)
	respond.JSON(c, http.StatusOK, toResponse(run))
}

func (h *Handler) industries(c *gin.Context) {
	def := h.Taxonomy.DefaultIndustry()
	industries := h.Taxonomy.Industries()
	out := make([]IndustryResponse, 0, len(industries))
	for _, ind := range industries {
		out = append(out, IndustryResponse{
			Name:           ind.Name,
			Label:          ind.Label,
			Technical:      len(ind.Skills.Technical),
			Soft:           len(ind.Skills.Soft),
			Certifications: len(ind.Skills.Certifications),
			Default:        ind.Name == def,
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{"default": def, "industries": out})
}

// industrySkills answers an empty object for unknown industries.
func (h *Handler) industrySkills(c *gin.Context) {
	ind, ok := h.Taxonomy.Lookup(c.Param("industry"))
	if !ok {
		respond.JSON(c, http.StatusOK, gin.H{})
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		taxonomy.CategoryTechnical:      nonNilStrings(ind.Skills.Technical),
		taxonomy.CategorySoft:           nonNilStrings(ind.Skills.Soft),
		taxonomy.CategoryCertifications: nonNilStrings(ind.Skills.Certifications),
	})
}

func (h *Handler) list(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := h.Svc.List(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, toSummary(run))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RunIDKey, id)
	run, err := h.Svc.Get(c.Request.Context(), middleware.ClientIDFromContext(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(run))
}

func (h *Handler) results(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RunIDKey, id)
	criteria, rank, ok := parseResultQuery(c)
	if !ok {
		return
	}
	run, ranked, err := h.Svc.Results(c.Request.Context(), middleware.ClientIDFromContext(c), id, criteria, rank)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, ResultsResponse{
		RunID:         run.ID,
		Industry:      run.Industry,
		Total:         len(run.Results),
		Count:         len(ranked),
		Stats:         run.Stats,
		FilteredStats: aggregate.ComputeStats(rankedReports(ranked)),
		Results:       ranked,
	})
}

func (h *Handler) exportCSV(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RunIDKey, id)
	criteria, rank, ok := parseResultQuery(c)
	if !ok {
		return
	}
	_, ranked, err := h.Svc.Results(c.Request.Context(), middleware.ClientIDFromContext(c), id, criteria, rank)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, rankedReports(ranked)); err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to write csv", nil)
		return
	}
	respond.Attachment(c, http.StatusOK, "screening-"+id+".csv", export.ContentType, buf.Bytes())
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RunIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.ClientIDFromContext(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "run not found", nil)
	case errors.Is(err, ErrNoValidResumes):
		respond.Error(c, http.StatusBadRequest, respond.CodeNoValidResumes, "No valid resumes could be processed", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, validationMessage(err), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to process request", nil)
	}
}

func parseResultQuery(c *gin.Context) (aggregate.Criteria, bool, bool) {
	criteria, err := aggregate.ParseCriteria(c.Query("score"), c.Query("relevance"), c.Query("experience"), c.Query("skill"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return aggregate.Criteria{}, false, false
	}
	if strings.EqualFold(c.Query("bands"), "legacy") {
		criteria.ScoreBands = aggregate.LegacyBands
	}
	return criteria, formToggle(c.Query("rank")), true
}

// isTooLarge reports whether err came from the MaxBytesReader limit. Some
// multipart paths drop the typed error and keep only its message.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
}

func formToggle(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
