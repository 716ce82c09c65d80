package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"content-studio/domain/dto"
	"content-studio/domain/model"
	"content-studio/infrastructure/utils"
)

type fakeUserUsecase struct {
	lastRegister model.ReqRegister
}

func (f *fakeUserUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	return dto.Res{ResponseCode: "200", ResponseMessage: "Success"}
}

func (f *fakeUserUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	f.lastRegister = req
	return dto.Res{ResponseCode: "200", ResponseMessage: "Success"}
}

func userTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx, rec
}

func TestLogin_MalformedBodyReturnsJSONError(t *testing.T) {
	h := NewUserHandler(&fakeUserUsecase{})

	ctx, rec := userTestContext(t, "{not json")
	h.Login(ctx)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestRegister_HashesPasswordBeforeUsecase(t *testing.T) {
	uc := &fakeUserUsecase{}
	h := NewUserHandler(uc)

	ctx, rec := userTestContext(t, `{"user_name":"tulus","name":"Tulus","password":"hunter2"}`)
	h.Register(ctx)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, utils.MD5Hash("hunter2"), uc.lastRegister.Password)
}

func TestRegister_MalformedBodyReturnsJSONError(t *testing.T) {
	h := NewUserHandler(&fakeUserUsecase{})

	ctx, rec := userTestContext(t, "")
	h.Register(ctx)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}
