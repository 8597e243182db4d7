package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateMediaFileType(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{"jpeg by content type", "image/jpeg", "photo.bin", true},
		{"png by extension", "", "banner.png", true},
		{"uppercase extension", "", "BANNER.PNG", true},
		{"webp", "image/webp", "hero.webp", true},
		{"pdf rejected", "application/pdf", "doc.pdf", false},
		{"executable rejected", "", "malware.exe", false},
		{"no hints rejected", "", "noext", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateMediaFileType(tc.contentType, tc.filename); got != tc.want {
				t.Fatalf("ValidateMediaFileType(%q, %q) = %v, want %v", tc.contentType, tc.filename, got, tc.want)
			}
		})
	}
}

func TestContentTypeForFilename(t *testing.T) {
	if got := ContentTypeForFilename("cover.JPEG"); got != "image/jpeg" {
		t.Fatalf("ContentTypeForFilename = %q, want image/jpeg", got)
	}
	if got := ContentTypeForFilename("unknown.bin"); got != "application/octet-stream" {
		t.Fatalf("ContentTypeForFilename fallback = %q", got)
	}
}

func TestMediaKey(t *testing.T) {
	got := MediaKey("events", "abc-123", "cover.png")
	want := "media/events/abc-123/cover.png"
	if got != want {
		t.Fatalf("MediaKey = %q, want %q", got, want)
	}

	// Path segments in the filename must not escape the entity folder.
	got = MediaKey("posts", "abc-123", "../../etc/passwd")
	if got != "media/posts/abc-123/passwd" {
		t.Fatalf("MediaKey with traversal = %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	s := &S3{cfg: S3Config{Region: "eu-west-1", MediaBucket: "site-media"}}

	abs := "https://cdn.example.com/img.png"
	if got := s.ResolveURL(abs); got != abs {
		t.Fatalf("ResolveURL(absolute) = %q", got)
	}
	if got := s.ResolveURL(""); got != "" {
		t.Fatalf("ResolveURL(empty) = %q", got)
	}
	want := "https://site-media.s3.eu-west-1.amazonaws.com/media/posts/x/img.png"
	if got := s.ResolveURL("media/posts/x/img.png"); got != want {
		t.Fatalf("ResolveURL(key) = %q, want %q", got, want)
	}

	var none *S3
	if got := none.ResolveURL("media/posts/x/img.png"); got != "media/posts/x/img.png" {
		t.Fatalf("ResolveURL on nil receiver = %q", got)
	}
}

func TestPresignExpireDefault(t *testing.T) {
	s := &S3{cfg: S3Config{}}
	if got := s.PresignExpire(); got != 15*time.Minute {
		t.Fatalf("PresignExpire default = %v", got)
	}
	s = &S3{cfg: S3Config{PresignExpireMinutes: 60}}
	if got := s.PresignExpire(); got != time.Hour {
		t.Fatalf("PresignExpire configured = %v", got)
	}
}

func TestGeneratePresignedUploadURL(t *testing.T) {
	// Presigning is local signing, no request leaves the process.
	s, err := NewS3(context.Background(), S3Config{
		Region:          "eu-west-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		MediaBucket:     "site-media",
	}, nil)
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}

	url, err := s.GeneratePresignedUploadURL(context.Background(), "media/events/x/cover.png", "image/png", 10*time.Minute)
	if err != nil {
		t.Fatalf("GeneratePresignedUploadURL: %v", err)
	}
	if !strings.Contains(url, "site-media") || !strings.Contains(url, "media/events/x/cover.png") {
		t.Fatalf("presigned URL missing bucket or key: %s", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("presigned URL not signed: %s", url)
	}
}
