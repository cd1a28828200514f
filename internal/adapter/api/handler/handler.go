package handler

import (
	"flatnest/internal/infrastructure/ratelimit"
	"flatnest/internal/usecase"
)

var (
	authHandler     *AuthHandler
	userHandler     *UserHandler
	flatHandler     *FlatHandler
	favoriteHandler *FavoriteHandler
	chatHandler     *ChatHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	flatUseCase *usecase.FlatUseCase,
	favoriteUseCase *usecase.FavoriteUseCase,
	chatUseCase *usecase.ChatUseCase,
	limiter *ratelimit.Limiter,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	flatHandler = NewFlatHandler(flatUseCase)
	favoriteHandler = NewFavoriteHandler(favoriteUseCase)
	chatHandler = NewChatHandler(chatUseCase, limiter)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetFlatHandler() *FlatHandler {
	return flatHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
