// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/locrelay/internal/events"
	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/media"
	"github.com/tomtom215/locrelay/internal/metrics"
	"github.com/tomtom215/locrelay/internal/models"
	"github.com/tomtom215/locrelay/internal/validation"
)

// Messages existing clients match on.
const (
	msgNoFile          = "No file in request."
	msgBadCoordinates  = "Latitude and longitude are required and cannot be null."
	msgUploadSucceeded = "Image uploaded successfully"
)

const (
	// uploadFormField is the multipart part carrying the image.
	uploadFormField = "image"

	// uploadMemory is how much of a multipart body is held in memory before
	// parts spill to temporary files.
	uploadMemory = 8 << 20

	// cleanupTimeout bounds deleting media after a failed create.
	cleanupTimeout = 5 * time.Second
)

var errBadDuration = errors.New("duration must be a number of milliseconds")

// Upload creates an event from a multipart form with an image. The request
// is fully validated before the image is stored, so a rejected request
// leaves nothing behind.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	maxBytes := h.config.Media.MaxUploadBytes
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		if isTooLarge(err) {
			rejectUpload(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Upload exceeds the %d byte limit.", maxBytes), codePayloadTooLarge)
			return
		}
		log.Debug().Err(err).Msg("Upload without a readable multipart body")
		rejectUpload(w, http.StatusBadRequest, "missing_file", msgNoFile, codeMissingFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		rejectUpload(w, http.StatusBadRequest, "missing_file", msgNoFile, codeMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	contentType, ok := imageContentType(header)
	if !ok {
		rejectUpload(w, http.StatusBadRequest, "bad_type", "Only image uploads are allowed.", codeUnsupportedMedia)
		return
	}

	req, err := eventRequestFromForm(r)
	if err != nil {
		msg := msgBadCoordinates
		if errors.Is(err, errBadDuration) {
			msg = err.Error()
		}
		rejectUpload(w, http.StatusBadRequest, "invalid", msg, codeValidation)
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rejectUpload(w, http.StatusBadRequest, "invalid", verr.Error(), codeValidation)
		return
	}

	name := media.NewName(header.Filename, h.now())
	ref, err := h.media.Save(r.Context(), name, contentType, file, header.Size)
	if err != nil {
		log.Error().Err(err).Str("backend", h.media.Backend()).Str("event_id", sanitizeLogValue(req.EventID)).Msg("Failed to store upload")
		rejectUpload(w, http.StatusInternalServerError, "storage_error", "Failed to store image.", codeStorage)
		return
	}
	req.Image = ref

	ev, err := h.events.Create(r.Context(), req)
	if err != nil {
		h.discardMedia(name)
		if errors.Is(err, events.ErrInvalidEvent) {
			rejectUpload(w, http.StatusBadRequest, "invalid", err.Error(), codeValidation)
			return
		}
		log.Error().Err(err).Str("event_id", sanitizeLogValue(req.EventID)).Msg("Failed to create event from upload")
		rejectUpload(w, http.StatusInternalServerError, "storage_error", "Failed to create event.", codeInternal)
		return
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	metrics.UploadBytes.Observe(float64(header.Size))
	log.Info().
		Str("event_id", ev.EventID).
		Str("image", ref).
		Int64("bytes", header.Size).
		Msg("Event created from upload")

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Message:   msgUploadSucceeded,
		EventID:   ev.EventID,
		ImagePath: ref,
	})
}

func rejectUpload(w http.ResponseWriter, status int, result, message, code string) {
	metrics.Uploads.WithLabelValues(result).Inc()
	if result == "invalid" {
		metrics.EventsRejected.WithLabelValues("upload").Inc()
	}
	writeJSON(w, status, models.UploadError{Message: message, Code: code})
}

// discardMedia removes an image whose event was not created.
func (h *Handler) discardMedia(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := h.media.Delete(ctx, name); err != nil {
		logging.Warn().Err(err).Str("name", name).Msg("Failed to remove orphaned upload")
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return errors.Is(err, multipart.ErrMessageTooLarge)
}

// imageContentType returns the part's declared media type if it is image/*.
func imageContentType(header *multipart.FileHeader) (string, bool) {
	declared := header.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", false
	}
	return mediaType, true
}

// eventRequestFromForm reads the text fields. Missing eventId or duration
// are left for validation to report.
func eventRequestFromForm(r *http.Request) (*models.EventRequest, error) {
	lat, err := parseCoordinate(r.PostFormValue("latitude"))
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate(r.PostFormValue("longitude"))
	if err != nil {
		return nil, err
	}
	duration, err := parseDurationMillis(r.PostFormValue("duration"))
	if err != nil {
		return nil, err
	}

	return &models.EventRequest{
		EventID:          strings.TrimSpace(r.PostFormValue("eventId")),
		Latitude:         &lat,
		Longitude:        &lon,
		EventName:        r.PostFormValue("eventname"),
		EventDescription: r.PostFormValue("eventDescription"),
		Duration:         duration,
	}, nil
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse coordinate %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", raw)
	}
	return v, nil
}

// parseDurationMillis accepts integer or whole-valued decimal milliseconds.
// An empty value yields nil. Decimal values beyond MaxDurationMillis are
// rejected here since they cannot convert exactly; the range of integers is
// left to validation.
func parseDurationMillis(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > float64(models.MaxDurationMillis) {
		return nil, errBadDuration
	}
	n := int64(f)
	return &n, nil
}
