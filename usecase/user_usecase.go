package usecase

import (
	"context"
	"time"

	"content-studio/domain/dto"
	"content-studio/domain/model"
	"content-studio/domain/repository"
	"content-studio/infrastructure/configuration"
	"content-studio/infrastructure/logger"
	"content-studio/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo repository.IUser
}

func NewUserUsecase(userRepo repository.IUser) IUserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	res.ResponseCode = "401"
	res.ResponseMessage = "Invalid username or password"

	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("User not found")
		return res
	}
	if user.Password != utils.MD5Hash(req.Password) {
		return res
	}

	now := time.Now().UTC()
	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		"name":      user.Name,
		"sub":       user.UserName,
		"iat":       now.Unix(),
		"exp":       now.Add(24 * time.Hour).Unix(),
	}, configuration.C.App.SecretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Failed to generate token"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = map[string]interface{}{"token": token}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	res.ResponseCode = "400"

	if existing, err := u.userRepo.GetByUserName(ctx, req.UserName); err == nil && existing.UserName == req.UserName {
		res.ResponseMessage = "Username already taken"
		return res
	}

	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password,
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to create user")
		res.ResponseCode = "500"
		res.ResponseMessage = "Failed to create user"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	return res
}
