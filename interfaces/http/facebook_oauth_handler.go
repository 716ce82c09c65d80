package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/cache"
	"content-studio/infrastructure/clients/facebook"
	"content-studio/infrastructure/configuration"
	"content-studio/infrastructure/logger"
)

type IFacebookOAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	Callback(ctx *gin.Context)
	Status(ctx *gin.Context)
	ListPages(ctx *gin.Context)
	SelectPage(ctx *gin.Context)
}

type facebookOAuthHandler struct {
	credRepo  repository.ICredential
	fbClient  *facebook.Client
	pageCache cache.IPageCache
	states    *oauthStates
}

func NewFacebookOAuthHandler(credRepo repository.ICredential, fbClient *facebook.Client, pageCache cache.IPageCache) IFacebookOAuthHandler {
	return &facebookOAuthHandler{
		credRepo:  credRepo,
		fbClient:  fbClient,
		pageCache: pageCache,
		states:    newOAuthStates(),
	}
}

const facebookScopes = "pages_show_list,pages_read_engagement,pages_manage_posts,pages_manage_engagement,public_profile"

// pageCredential builds the stored credential for a selected page. Page
// tokens do not expire, so ExpiresAt stays nil and the refresh path skips
// the credential.
func pageCredential(userID string, page facebook.Page) *model.Credential {
	tokenType := "page"
	pageID, pageName := page.ID, page.Name
	return &model.Credential{
		UserID:      userID,
		Platform:    model.PlatformFacebook,
		AccountID:   page.ID,
		AccessToken: page.AccessToken,
		Scopes:      facebookScopes,
		PageID:      &pageID,
		PageName:    &pageName,
		TokenType:   &tokenType,
	}
}

// GetAuthURL builds the Facebook OAuth URL (user must approve in browser)
func (h *facebookOAuthHandler) GetAuthURL(c *gin.Context) {
	conf := configuration.C.OAuth.Facebook
	if conf.ClientID == "" || conf.RedirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "facebook oauth not configured"})
		return
	}
	state := h.states.issue()
	u := url.URL{Scheme: "https", Host: "www.facebook.com", Path: "/v19.0/dialog/oauth"}
	q := u.Query()
	q.Set("client_id", conf.ClientID)
	q.Set("redirect_uri", conf.RedirectURI)
	q.Set("state", state)
	q.Set("scope", facebookScopes)
	u.RawQuery = q.Encode()
	c.JSON(http.StatusOK, gin.H{"auth_url": u.String(), "state": state})
}

// Callback exchanges the code for a long-lived user token, caches the user's
// page list and stores a page-scoped credential.
func (h *facebookOAuthHandler) Callback(c *gin.Context) {
	lg := logger.GetLogger()
	conf := configuration.C.OAuth.Facebook
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

	// 1. Exchange code for a short-lived user access token
	tokenURL := fmt.Sprintf("https://graph.facebook.com/v19.0/oauth/access_token?client_id=%s&redirect_uri=%s&client_secret=%s&code=%s",
		url.QueryEscape(conf.ClientID), url.QueryEscape(conf.RedirectURI), url.QueryEscape(conf.ClientSecret), url.QueryEscape(code))
	shortToken, err := fetchAccessToken(tokenURL)
	if err != nil {
		lg.WithField("error", err).Error("facebook token exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}

	// 2. Exchange short-lived for a long-lived token
	longToken, _, err := h.fbClient.ExchangeToken(c.Request.Context(), conf.ClientID, shortToken)
	if err != nil {
		lg.WithField("error", err).Error("facebook long-lived exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "long_lived_token_failed"})
		return
	}

	// 3. Fetch the manageable pages with per-page tokens
	pages, err := h.fbClient.ListPages(c.Request.Context(), "me", longToken)
	if err != nil {
		lg.WithField("error", err).Error("facebook pages fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "pages_fetch_failed"})
		return
	}
	if len(pages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_pages_available"})
		return
	}
	if h.pageCache != nil {
		cached := make([]cache.Page, 0, len(pages))
		for _, p := range pages {
			cached = append(cached, cache.Page{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken})
		}
		if err := h.pageCache.SetPages(c.Request.Context(), userID, cached); err != nil {
			lg.WithField("error", err).Warn("Failed to cache page list")
		}
	}

	// Default to the first page; the selection endpoint can switch it later.
	selected := pages[0]
	cred := pageCredential(userID, selected)
	if err := h.credRepo.Upsert(c.Request.Context(), cred); err != nil {
		lg.WithField("error", err).Error("failed to upsert facebook credential")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_token_failed"})
		return
	}
	if c.Query("frontend") == "1" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		_, _ = c.Writer.Write([]byte(fmt.Sprintf(`<!DOCTYPE html><html><head><title>Facebook Connected</title></head><body><script>if (window.opener){window.opener.postMessage({source:'facebook-oauth',connected:true,page_id:'%s',page_name:%q},'*');window.close();}else{document.write('Facebook connected: %s');}</script></body></html>`, selected.ID, selected.Name, selected.Name)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "page_id": selected.ID, "page_name": selected.Name})
}

// Status returns whether a facebook page credential is stored
func (h *facebookOAuthHandler) Status(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		userID = "demo-user"
	}
	cred, err := h.credRepo.GetByProvider(c.Request.Context(), userID, model.PlatformFacebook)
	if err != nil || cred == nil || cred.AccessToken == "" {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	resp := gin.H{"connected": true}
	if cred.PageID != nil {
		resp["page_id"] = *cred.PageID
	}
	if cred.PageName != nil {
		resp["page_name"] = *cred.PageName
	}
	c.JSON(http.StatusOK, resp)
}

// ListPages returns the cached page list for page selection in the UI.
func (h *facebookOAuthHandler) ListPages(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	if h.pageCache == nil {
		c.JSON(http.StatusOK, gin.H{"pages": []gin.H{}})
		return
	}
	pages, err := h.pageCache.GetPages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(pages))
	for _, p := range pages {
		out = append(out, gin.H{"id": p.ID, "name": p.Name})
	}
	c.JSON(http.StatusOK, gin.H{"pages": out})
}

// SelectPage switches the stored credential to another cached page.
func (h *facebookOAuthHandler) SelectPage(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	var req struct {
		PageID string `json:"page_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cred, err := h.credRepo.GetByProvider(c.Request.Context(), userID, model.PlatformFacebook)
	if err != nil || cred == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "facebook not connected"})
		return
	}
	if h.pageCache == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page list unavailable, reconnect facebook"})
		return
	}
	pages, err := h.pageCache.GetPages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, p := range pages {
		if p.ID != req.PageID {
			continue
		}
		cred = pageCredential(userID, facebook.Page{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken})
		if err := h.credRepo.Upsert(c.Request.Context(), cred); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store_token_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"selected": true, "page_id": p.ID, "page_name": p.Name})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "page not in cached list, reconnect facebook"})
}

func fetchAccessToken(tokenURL string) (string, error) {
	resp, err := http.Get(tokenURL)
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, string(body))
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}
	return data.AccessToken, nil
}
