package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitPublishDefaults(t *testing.T) {
	var p Publish
	initPublish(&p)

	assert.Equal(t, 24, p.TokenRefreshBufferHours)
	assert.Equal(t, 60, p.TokenValidityDays)
	assert.Equal(t, 1000, p.InitialDelayTextMs)
	assert.Equal(t, 2000, p.InitialDelayMediaMs)
	assert.Equal(t, 1500, p.PollIntervalMs)
	assert.Equal(t, 10, p.MaxAttemptsText)
	assert.Equal(t, 20, p.MaxAttemptsImage)
	assert.Equal(t, 30, p.MaxAttemptsVideo)

	assert.Equal(t, 24*time.Hour, p.TokenRefreshBuffer())
	assert.Equal(t, 60*24*time.Hour, p.TokenValidity())
	assert.Equal(t, 15*time.Second, p.RequestTimeout())
	assert.Equal(t, 120*time.Second, p.OverallTimeout())
}

func TestInitPublishKeepsExplicitValues(t *testing.T) {
	p := Publish{TokenRefreshBufferHours: 6, MaxAttemptsVideo: 50}
	initPublish(&p)

	assert.Equal(t, 6, p.TokenRefreshBufferHours)
	assert.Equal(t, 50, p.MaxAttemptsVideo)
	assert.Equal(t, 10, p.MaxAttemptsText)
}

func TestHasHTTPS(t *testing.T) {
	assert.True(t, hasHTTPS("https://localhost:10001/auth/facebook/callback"))
	assert.False(t, hasHTTPS("http://localhost:10001/auth/facebook/callback"))
	assert.Equal(t, "https://localhost/cb", toHTTPSCallback("http://localhost/cb"))
	assert.Equal(t, "https://localhost/cb", toHTTPSCallback("https://localhost/cb"))
}
