package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/configuration"
	"content-studio/infrastructure/logger"
)

type IThreadsOAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	Callback(ctx *gin.Context)
	Status(ctx *gin.Context)
}

type threadsOAuthHandler struct {
	credRepo repository.ICredential
	states   *oauthStates
}

func NewThreadsOAuthHandler(credRepo repository.ICredential) IThreadsOAuthHandler {
	return &threadsOAuthHandler{credRepo: credRepo, states: newOAuthStates()}
}

func threadsOAuthConfig() *oauth2.Config {
	conf := configuration.C.OAuth.Threads
	return &oauth2.Config{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RedirectURL:  conf.RedirectURI,
		Scopes:       []string{"threads_basic", "threads_content_publish"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://threads.net/oauth/authorize",
			TokenURL: "https://graph.threads.net/oauth/access_token",
		},
	}
}

// GetAuthURL builds the Threads OAuth URL (user must approve in browser)
func (h *threadsOAuthHandler) GetAuthURL(c *gin.Context) {
	conf := configuration.C.OAuth.Threads
	if conf.ClientID == "" || conf.RedirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threads oauth not configured"})
		return
	}
	state := h.states.issue()
	authURL := threadsOAuthConfig().AuthCodeURL(state)
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL, "state": state})
}

// Callback exchanges the code for a long-lived token and stores the credential.
func (h *threadsOAuthHandler) Callback(c *gin.Context) {
	lg := logger.GetLogger()
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	if !h.states.consume(state) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" { // fallback for dev
		userID = "demo-user"
	}

	oauthConf := threadsOAuthConfig()
	tok, err := oauthConf.Exchange(c.Request.Context(), code)
	if err != nil {
		lg.WithField("error", err).Error("threads code exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}

	accountID := ""
	if v := tok.Extra("user_id"); v != nil {
		accountID = fmt.Sprintf("%v", v)
	}

	// Exchange the short-lived token for a long-lived one.
	llURL := fmt.Sprintf("https://graph.threads.net/access_token?grant_type=th_exchange_token&client_secret=%s&access_token=%s",
		url.QueryEscape(oauthConf.ClientSecret), url.QueryEscape(tok.AccessToken))
	llResp, err := http.Get(llURL)
	if err != nil {
		lg.WithField("error", err).Error("threads long-lived exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "long_lived_exchange_failed"})
		return
	}
	llBody, _ := io.ReadAll(llResp.Body)
	llResp.Body.Close()
	if llResp.StatusCode != 200 {
		lg.WithField("body", string(llBody)).Error("threads long-lived exchange rejected")
		c.JSON(http.StatusBadGateway, gin.H{"error": "long_lived_token_failed"})
		return
	}
	var llData struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(llBody, &llData); err != nil {
		lg.WithField("error", err).Error("unmarshal long lived token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "parse_long_token_failed"})
		return
	}
	expiresAt := time.Now().Add(time.Duration(llData.ExpiresIn) * time.Second).UTC()

	if username := fetchThreadsUsername(llData.AccessToken); username != "" && accountID == "" {
		accountID = username
	}

	tokenType := "user"
	cred := &model.Credential{
		UserID:      userID,
		Platform:    model.PlatformThreads,
		AccountID:   accountID,
		AccessToken: llData.AccessToken,
		ExpiresAt:   &expiresAt,
		Scopes:      "threads_basic,threads_content_publish",
		TokenType:   &tokenType,
	}
	if err := h.credRepo.Upsert(c.Request.Context(), cred); err != nil {
		lg.WithField("error", err).Error("failed to upsert threads credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_token_failed"})
		return
	}
	if c.Query("frontend") == "1" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		_, _ = c.Writer.Write([]byte(fmt.Sprintf(`<!DOCTYPE html><html><head><title>Threads Connected</title></head><body><script>if (window.opener){window.opener.postMessage({source:'threads-oauth',connected:true,account_id:%q},'*');window.close();}else{document.write('Threads connected');}</script></body></html>`, accountID)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "account_id": accountID})
}

// Status returns whether a threads credential is stored
func (h *threadsOAuthHandler) Status(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		userID = "demo-user"
	}
	cred, err := h.credRepo.GetByProvider(c.Request.Context(), userID, model.PlatformThreads)
	if err != nil || cred == nil || cred.AccessToken == "" {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "account_id": cred.AccountID})
}

func fetchThreadsUsername(accessToken string) string {
	resp, err := http.Get(fmt.Sprintf("https://graph.threads.net/v1.0/me?fields=id,username&access_token=%s", url.QueryEscape(accessToken)))
	if err != nil {
		return ""
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return ""
	}
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if json.Unmarshal(body, &me) != nil {
		return ""
	}
	if me.ID != "" {
		return me.ID
	}
	return me.Username
}
