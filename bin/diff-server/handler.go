package main

import (
	"encoding/json"
	"errors"
	"image"
	"image-diff/internal/engine"
	"image-diff/internal/imageio"
	"image-diff/internal/myhttp"
	"image-diff/internal/report"
	"image-diff/internal/storage"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// diffHandler serves POST /diff. The multipart form carries the before and
// after images and optionally the engine name. Similarity heat maps are
// published to store when one is configured, every other artifact is returned
// inline.
type diffHandler struct {
	engineConfig   engine.Config
	store          storage.Storage
	outcomes       metric.Int64Counter
	maxUploadBytes int64
}

func (h *diffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := myhttp.Logger(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	name := r.FormValue("engine")
	if name == "" {
		name = engine.ExactName
	}
	e, err := engine.New(name, h.engineConfig)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome := h.diff(r, name, e)
	if outcome.Kind == engine.WriteFailure {
		logger.Error("failed to write artifact", "error", outcome.Err)
	}
	h.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", outcome.Kind.String())))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(outcome.Kind))
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (h *diffHandler) diff(r *http.Request, name string, e engine.Engine) engine.Outcome {
	before, err := formImage(r, "before")
	if err != nil {
		return engine.FromError(err)
	}
	after, err := formImage(r, "after")
	if err != nil {
		return engine.FromError(err)
	}

	outcome := e.Compare(before, after)
	if outcome.Kind != engine.Different {
		return outcome
	}

	if name == engine.SimilarityName && h.store != nil {
		published, err := report.Publish(r.Context(), h.store, name, outcome)
		if err != nil {
			return engine.FromError(&imageio.WriteError{Err: err})
		}
		return published
	}

	data, err := imageio.Encode(outcome.Artifact, imageio.PNG)
	if err != nil {
		return engine.FromError(err)
	}
	outcome.Data = data
	return outcome
}

// formImage decodes the uploaded file field. A missing field is reported the
// same way as an unopenable path.
func formImage(r *http.Request, field string) (image.Image, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, &imageio.NotFoundError{Path: field, Err: err}
	}
	defer f.Close()

	img, err := imageio.Decode(f, field)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %s: %w", field, err)
	}
	return img, nil
}

func statusCode(kind engine.Kind) int {
	switch kind {
	case engine.Match, engine.Different:
		return http.StatusOK
	case engine.WriteFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
