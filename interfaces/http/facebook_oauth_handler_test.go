package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"content-studio/domain/model"
	"content-studio/infrastructure/clients/facebook"
)

func TestPageCredential_NeverExpires(t *testing.T) {
	cred := pageCredential("user-1", facebook.Page{ID: "page-42", Name: "My Page", AccessToken: "tok-42"})

	assert.Equal(t, "user-1", cred.UserID)
	assert.Equal(t, model.PlatformFacebook, cred.Platform)
	assert.Equal(t, "page-42", cred.AccountID)
	assert.Equal(t, "tok-42", cred.AccessToken)
	assert.Equal(t, "page-42", *cred.PageID)
	assert.Equal(t, "My Page", *cred.PageName)
	assert.Equal(t, "page", *cred.TokenType)
	// page tokens never expire, so the refresh path must skip them
	assert.Nil(t, cred.ExpiresAt)
	assert.False(t, cred.ExpiringSoon(time.Now(), 24*time.Hour))
}
