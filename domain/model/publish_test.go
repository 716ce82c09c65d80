package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInferMediaKind(t *testing.T) {
	assert.Equal(t, MediaKindText, InferMediaKind(""))
	assert.Equal(t, MediaKindImage, InferMediaKind("https://cdn.example.com/a.jpg"))
	assert.Equal(t, MediaKindImage, InferMediaKind("https://cdn.example.com/a.png?sig=abc"))
	assert.Equal(t, MediaKindVideo, InferMediaKind("https://cdn.example.com/clip.mp4"))
	assert.Equal(t, MediaKindVideo, InferMediaKind("https://cdn.example.com/Clip.MOV"))
	assert.Equal(t, MediaKindVideo, InferMediaKind("https://cdn.example.com/clip.webm?token=1"))
	// unknown extensions default to image
	assert.Equal(t, MediaKindImage, InferMediaKind("https://cdn.example.com/file.bin"))
}

func TestValidMediaURL(t *testing.T) {
	assert.True(t, ValidMediaURL("https://cdn.example.com/a.jpg"))
	assert.True(t, ValidMediaURL("http://cdn.example.com/a.jpg"))
	assert.False(t, ValidMediaURL("data:image/png;base64,iVBORw0KGgo="))
	assert.False(t, ValidMediaURL("blob:https://app.example.com/uuid"))
	assert.False(t, ValidMediaURL("/tmp/local.jpg"))
	assert.False(t, ValidMediaURL("ftp://cdn.example.com/a.jpg"))
	assert.False(t, ValidMediaURL("https://"))
}

func TestClassifyResults(t *testing.T) {
	ok := PublishResult{Success: true}
	bad := PublishResult{Success: false}

	assert.Equal(t, OverallAllSuccess, ClassifyResults([]PublishResult{ok, ok}))
	assert.Equal(t, OverallPartialSuccess, ClassifyResults([]PublishResult{ok, bad}))
	assert.Equal(t, OverallAllFailure, ClassifyResults([]PublishResult{bad, bad}))
	assert.Equal(t, OverallAllFailure, ClassifyResults(nil))
}

func TestCredentialExpiringSoon(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	buffer := 24 * time.Hour

	noExpiry := Credential{}
	assert.False(t, noExpiry.ExpiringSoon(now, buffer))

	in23h := now.Add(23 * time.Hour)
	assert.True(t, (&Credential{ExpiresAt: &in23h}).ExpiringSoon(now, buffer))

	in25h := now.Add(25 * time.Hour)
	assert.False(t, (&Credential{ExpiresAt: &in25h}).ExpiringSoon(now, buffer))

	past := now.Add(-time.Hour)
	assert.True(t, (&Credential{ExpiresAt: &past}).ExpiringSoon(now, buffer))
}

func TestPublishErrorClassification(t *testing.T) {
	err := WrapPublishError(ErrContainerErrored, errors.New("boom"), "media container failed processing")
	assert.Equal(t, ErrContainerErrored, CodeOf(err))
	assert.Equal(t, "media container failed processing", MessageOf(err))
	assert.True(t, errors.Is(err, err.Err))

	plain := errors.New("socket closed")
	assert.Equal(t, ErrPublishFailed, CodeOf(plain))
	assert.Equal(t, "socket closed", MessageOf(plain))
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform("threads")
	assert.True(t, ok)
	assert.Equal(t, PlatformThreads, p)

	_, ok = ParsePlatform("instagram")
	assert.False(t, ok)
}
