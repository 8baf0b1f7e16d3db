package report

import (
	"bytes"
	"context"
	"encoding/json"
	"image-diff/internal/engine"
	"image-diff/internal/imageio"
	"image-diff/internal/storage"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
)

// Publish uploads the artifact of a Different outcome to s under a content
// addressed key and records the returned URL. Other outcomes pass through.
func Publish(ctx context.Context, s storage.Storage, prefix string, outcome engine.Outcome) (engine.Outcome, error) {
	if s == nil || outcome.Kind != engine.Different {
		return outcome, nil
	}

	data, ext, err := artifactBytes(outcome)
	if err != nil {
		return outcome, xerrors.Errorf("failed to read artifact: %w", err)
	}

	url, err := s.Put(ctx, storage.Key(prefix, data, ext), data)
	if err != nil {
		return outcome, xerrors.Errorf("failed to publish artifact: %w", err)
	}
	outcome.URL = url

	return outcome, nil
}

func artifactBytes(outcome engine.Outcome) ([]byte, string, error) {
	switch {
	case outcome.Path != "":
		data, err := os.ReadFile(outcome.Path)
		if err != nil {
			return nil, "", xerrors.Errorf("failed to read %s: %w", outcome.Path, err)
		}
		return data, filepath.Ext(outcome.Path), nil
	case len(outcome.Data) > 0:
		return outcome.Data, ".png", nil
	case outcome.Artifact != nil:
		data, err := imageio.Encode(outcome.Artifact, imageio.PNG)
		if err != nil {
			return nil, "", xerrors.Errorf("failed to encode artifact: %w", err)
		}
		return data, ".png", nil
	default:
		return nil, "", xerrors.New("outcome carries no artifact")
	}
}

// Notify posts the outcome JSON to url.
func Notify(ctx context.Context, client *http.Client, url string, outcome engine.Outcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return xerrors.Errorf("failed to encode outcome: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to post outcome to %s: %w", url, err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return xerrors.Errorf("callback %s responded %s", url, response.Status)
	}
	return nil
}
