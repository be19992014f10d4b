// Package handler implements the HTTP endpoints of the mailverify server.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/optimode/mailverify"
	"github.com/optimode/mailverify/internal/config"
	"github.com/optimode/mailverify/internal/report"
)

// MaxUploadSize bounds the request body of /validate_bulk.
const MaxUploadSize = 16 << 20

const (
	contentTypeJSON = "application/json"

	emailsRequiredMessage   = "Email addresses are required"
	invalidEmailsMessage    = "Invalid email data format"
	noFileMessage           = "No file uploaded"
	noFileSelectedMessage   = "No file selected"
	unsupportedFileMessage  = "Only CSV and TXT files are supported"
	fileTooLargeMessage     = "File too large"
	unreadableFileMessage   = "Could not read uploaded file"
	validationFailedMessage = "Validation failed"
)

// Handler serves the validation endpoints.
type Handler struct {
	validator mailverify.AddressValidator
	cfg       *config.Config
	logger    *zap.Logger
}

// NewHandler creates a Handler. validator is used for single requests and
// driven by the bulk engine for uploads.
func NewHandler(validator mailverify.AddressValidator, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleValidate validates the JSON list of addresses in the "emails" form
// field one by one.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("emails")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, emailsRequiredMessage)
		return
	}

	var emails []string
	if err := json.Unmarshal([]byte(raw), &emails); err != nil {
		h.logger.Debug("Rejected email list", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, invalidEmailsMessage)
		return
	}

	set := mailverify.NewResultSet()
	for _, email := range emails {
		res, err := h.validator.Validate(r.Context(), email)
		if err != nil {
			h.logger.Error("Validation failed", zap.String("email", email), zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, validationFailedMessage)
			return
		}
		set.Set(email, res)
	}

	h.writeResponse(w, set, len(emails))
}

// HandleValidateBulk validates an uploaded .csv or .txt file holding one
// address per line with the chunked bulk engine.
func (h *Handler) HandleValidateBulk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeError(w, http.StatusRequestEntityTooLarge, fileTooLargeMessage)
		case errors.Is(err, http.ErrMissingFile) && r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0:
			// an empty file input arrives as a plain form value
			h.writeError(w, http.StatusBadRequest, noFileSelectedMessage)
		default:
			h.writeError(w, http.StatusBadRequest, noFileMessage)
		}
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Error("Error closing uploaded file", zap.Error(err))
		}
	}()

	if header.Filename == "" {
		h.writeError(w, http.StatusBadRequest, noFileSelectedMessage)
		return
	}
	if !strings.HasSuffix(header.Filename, ".csv") && !strings.HasSuffix(header.Filename, ".txt") {
		h.writeError(w, http.StatusBadRequest, unsupportedFileMessage)
		return
	}

	emails, err := report.ReadAddresses(file)
	if err != nil {
		h.logger.Error("Error reading upload", zap.String("file", header.Filename), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, unreadableFileMessage)
		return
	}

	runID := uuid.NewString()
	logger := h.logger.With(zap.String("run_id", runID))
	logger.Info("Bulk validation started",
		zap.String("file", header.Filename),
		zap.Int("emails", len(emails)),
	)

	set := mailverify.NewBulk(h.validator, h.cfg.BulkOptions(logger)).
		Run(r.Context(), emails, mailverify.DefaultChunkSize(len(emails)), h.cfg.MaxRetries)

	logger.Info("Bulk validation finished", zap.Int("results", set.Len()))
	h.writeResponse(w, set, len(emails))
}

func (h *Handler) writeResponse(w http.ResponseWriter, set *mailverify.ResultSet, total int) {
	resp, err := report.NewResponse(set, total)
	if err != nil {
		h.logger.Error("Error rendering CSV", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, validationFailedMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
