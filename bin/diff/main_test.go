package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image-diff/internal/imageio"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func defaultOptions() options {
	return options{
		engineName:     "exact",
		mode:           modeSave,
		policy:         "strict",
		diffColor:      "#ff0000",
		alphaSource:    "before",
		storageBackend: "none",
		concurrency:    2,
	}
}

func writeImage(t *testing.T, path string, c color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	if err := imageio.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()

	var results []map[string]any
	decoder := json.NewDecoder(strings.NewReader(out))
	for {
		var result map[string]any
		if err := decoder.Decode(&result); err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		results = append(results, result)
	}
	return results
}

func TestRun(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Different", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		before := writeImage(t, filepath.Join(dir, "before.png"), color.White)
		after := writeImage(t, filepath.Join(dir, "after.png"), color.Black)
		output := filepath.Join(dir, "diff.png")

		var stdout bytes.Buffer
		code, err := run(context.Background(), logger, defaultOptions(), []string{before, after, output}, &stdout)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(1, code); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		results := decodeLines(t, stdout.String())
		if diff := cmp.Diff("different", results[0]["result"]); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(output, results[0]["path"]); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if _, err := os.Stat(output); err != nil {
			t.Errorf("Expected the diff image to be written: %v", err)
		}
	})

	t.Run("BatchWithStorage", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		storeDir := t.TempDir()
		white := writeImage(t, filepath.Join(dir, "white.png"), color.White)
		black := writeImage(t, filepath.Join(dir, "black.png"), color.Black)
		batch := filepath.Join(dir, "batch.txt")
		content := strings.Join([]string{
			white + " " + white + " " + filepath.Join(dir, "1.png"),
			white + " " + black + " " + filepath.Join(dir, "2.png"),
			filepath.Join(dir, "missing.png") + " " + black + " " + filepath.Join(dir, "3.png"),
		}, "\n")
		if err := os.WriteFile(batch, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		o := defaultOptions()
		o.batch = batch
		o.storageBackend = "file"
		o.directory = storeDir

		var stdout bytes.Buffer
		code, err := run(context.Background(), logger, o, nil, &stdout)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(2, code); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		results := decodeLines(t, stdout.String())
		var got []any
		for _, r := range results {
			got = append(got, r["result"])
		}
		if diff := cmp.Diff([]any{"images_match", "different", "not_found"}, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		url, _ := results[1]["url"].(string)
		if !strings.HasPrefix(url, filepath.Join(storeDir, "exact")) {
			t.Errorf("Expected the diff to be published under %s, got %q", storeDir, url)
		}
	})

	t.Run("BytesMode", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		before := writeImage(t, filepath.Join(dir, "before.png"), color.White)
		after := writeImage(t, filepath.Join(dir, "after.png"), color.Black)

		o := defaultOptions()
		o.mode = modeBytes

		var stdout bytes.Buffer
		code, err := run(context.Background(), logger, o, []string{before, after}, &stdout)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(1, code); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if data, _ := decodeLines(t, stdout.String())[0]["data"].(string); data == "" {
			t.Error("Expected encoded bytes in the outcome")
		}
	})

	t.Run("DuplicateDestinations", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		batch := filepath.Join(dir, "batch.txt")
		if err := os.WriteFile(batch, []byte("a.png b.png out.png\nc.png d.png out.png\n"), 0644); err != nil {
			t.Fatal(err)
		}

		o := defaultOptions()
		o.batch = batch

		if _, err := run(context.Background(), logger, o, nil, io.Discard); err == nil {
			t.Error("Expected duplicate destinations to be rejected")
		}
	})

	t.Run("MissingOutput", func(t *testing.T) {
		t.Parallel()

		if _, err := run(context.Background(), logger, defaultOptions(), []string{"a.png", "b.png"}, io.Discard); err == nil {
			t.Error("Expected an error without output in save mode")
		}
	})
}
