package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"content-studio/domain/model"
)

const testAppSecret = "s3cret"

func pageCredential() *model.Credential {
	pageID := "page-42"
	pageName := "My Page"
	return &model.Credential{
		UserID:      "user-1",
		Platform:    model.PlatformFacebook,
		AccountID:   "fb-user",
		AccessToken: "tok-page",
		PageID:      &pageID,
		PageName:    &pageName,
	}
}

func TestAppSecretProof(t *testing.T) {
	// hex(HMAC-SHA256(key=secret, message=token)) must be stable
	proof := AppSecretProof("tok-page", testAppSecret)
	require.Len(t, proof, 64)
	require.Equal(t, proof, AppSecretProof("tok-page", testAppSecret))
	require.NotEqual(t, proof, AppSecretProof("other-token", testAppSecret))
	require.NotEqual(t, proof, AppSecretProof("tok-page", "other-secret"))
}

func TestDriver_Publish_TextGoesToFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-42/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "hello page", r.PostForm.Get("message"))
		require.Equal(t, "tok-page", r.PostForm.Get("access_token"))
		require.Equal(t, AppSecretProof("tok-page", testAppSecret), r.PostForm.Get("appsecret_proof"))
		w.Write([]byte(`{"id":"page-42_777"}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour)

	postID, err := driver.Publish(context.Background(), pageCredential(), model.Post{Text: "hello page", MediaKind: model.MediaKindText})
	require.NoError(t, err)
	require.Equal(t, "page-42_777", postID)
}

func TestDriver_Publish_ImageGoesToPhotos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-42/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "https://cdn.example.com/pic.jpg", r.PostForm.Get("url"))
		require.Equal(t, "look at this", r.PostForm.Get("caption"))
		require.NotEmpty(t, r.PostForm.Get("appsecret_proof"))
		w.Write([]byte(`{"id":"ph-1","post_id":"page-42_888"}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour)

	postID, err := driver.Publish(context.Background(), pageCredential(), model.Post{
		Text:      "look at this",
		MediaURL:  "https://cdn.example.com/pic.jpg",
		MediaKind: model.MediaKindImage,
	})
	require.NoError(t, err)
	require.Equal(t, "page-42_888", postID, "comments attach to the post id, not the photo id")
}

func TestDriver_Publish_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour)

	_, err := driver.Publish(context.Background(), pageCredential(), model.Post{Text: "x", MediaKind: model.MediaKindText})
	require.Equal(t, model.ErrPublishFailed, model.CodeOf(err))
}

func TestDriver_Comment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-42_777/comments", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "more info here", r.PostForm.Get("message"))
		w.Write([]byte(`{"id":"cm-9"}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour)

	commentID, err := driver.Comment(context.Background(), pageCredential(), "page-42_777", "more info here")
	require.NoError(t, err)
	require.Equal(t, "cm-9", commentID)
}

func TestDriver_Comment_ForeignPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"(#200) Permissions error","type":"OAuthException","code":200}}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour)

	_, err := driver.Comment(context.Background(), pageCredential(), "not-ours_1", "hi")
	require.Equal(t, model.ErrCannotReplyToForeignPost, model.CodeOf(err))
}

func TestDriver_RefreshCredential_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		require.Equal(t, "app-1", q.Get("client_id"))
		require.Equal(t, testAppSecret, q.Get("client_secret"))
		require.Equal(t, "tok-page", q.Get("fb_exchange_token"))
		w.Write([]byte(`{"access_token":"tok-long","token_type":"bearer","expires_in":0}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL
	driver := NewDriver(client, "app-1", 60*24*time.Hour).(*Driver)
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	driver.now = func() time.Time { return now }

	refreshed, err := driver.RefreshCredential(context.Background(), pageCredential())
	require.NoError(t, err)
	require.Equal(t, "tok-long", refreshed.AccessToken)
	// expires_in of zero falls back to the configured validity window
	require.Equal(t, now.Add(60*24*time.Hour), *refreshed.ExpiresAt)
}

func TestClient_ListPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fb-user/accounts", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("appsecret_proof"))
		w.Write([]byte(`{"data":[{"id":"page-42","name":"My Page","access_token":"tok-page"},{"id":"page-43","name":"Other Page","access_token":"tok-other"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testAppSecret, 5*time.Second)
	client.BaseURL = srv.URL

	pages, err := client.ListPages(context.Background(), "fb-user", "tok-user")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "My Page", pages[0].Name)
	require.Equal(t, "tok-page", pages[0].AccessToken)
}
