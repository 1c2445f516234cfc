package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stopfakeai/detection-api/internal/detection"
)

// ========================================
// Validation Tests
// ========================================

func TestDetectImage_EmptyMedia(t *testing.T) {
	svc := NewMediaService(nil, nil, testLogger())

	if _, err := svc.DetectImage(context.Background(), "a.png", nil); !errors.Is(err, ErrEmptyMedia) {
		t.Errorf("DetectImage() error = %v, want ErrEmptyMedia", err)
	}
}

func TestDetectAudio_TooLarge(t *testing.T) {
	svc := NewMediaService(nil, nil, testLogger())

	big := make([]byte, MaxMediaBytes+1)
	if _, err := svc.DetectAudio(context.Background(), "a.wav", big); !errors.Is(err, ErrMediaTooLarge) {
		t.Errorf("DetectAudio() error = %v, want ErrMediaTooLarge", err)
	}
}

// ========================================
// Demo Mode Tests
// ========================================

func TestDetectImage_DemoMode(t *testing.T) {
	svc := NewMediaService(nil, nil, testLogger())
	ctx := context.Background()
	data := bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 64)

	result, err := svc.DetectImage(ctx, "demo.png", data)
	if err != nil {
		t.Fatalf("DetectImage() error = %v", err)
	}
	if !result.Details.Demo {
		t.Error("Details.Demo = false, want true")
	}
	if result.Method != detection.MethodMLModel {
		t.Errorf("Method = %q, want %q", result.Method, detection.MethodMLModel)
	}
	if result.Confidence < 0.10 || result.Confidence > 0.90 {
		t.Errorf("Confidence = %v, want within [0.10, 0.90]", result.Confidence)
	}
}

func TestDetectImage_DemoModeIsStable(t *testing.T) {
	svc := NewMediaService(nil, nil, testLogger())
	ctx := context.Background()
	data := []byte("same image bytes every time")

	first, err := svc.DetectImage(ctx, "a.png", data)
	if err != nil {
		t.Fatalf("DetectImage() error = %v", err)
	}
	second, err := svc.DetectImage(ctx, "a.png", data)
	if err != nil {
		t.Fatalf("DetectImage() error = %v", err)
	}
	if first.Confidence != second.Confidence {
		t.Errorf("Confidence differs across calls: %v vs %v", first.Confidence, second.Confidence)
	}

	other, err := svc.DetectImage(ctx, "b.png", []byte("different image bytes"))
	if err != nil {
		t.Fatalf("DetectImage() error = %v", err)
	}
	if other.Confidence == first.Confidence {
		t.Error("different content produced identical demo score")
	}
}

func TestDetectAudio_DemoMode(t *testing.T) {
	svc := NewMediaService(nil, nil, testLogger())

	result, err := svc.DetectAudio(context.Background(), "demo.wav", []byte("riff data"))
	if err != nil {
		t.Fatalf("DetectAudio() error = %v", err)
	}
	if !result.Details.Demo {
		t.Error("Details.Demo = false, want true")
	}
	if result.Method != detection.MethodMLModel {
		t.Errorf("Method = %q, want %q", result.Method, detection.MethodMLModel)
	}
}
