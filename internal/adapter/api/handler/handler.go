package handler

import (
	"garrafinha/internal/infrastructure/location"
	"garrafinha/internal/usecase"
)

var (
	bottleHandler   *BottleHandler
	unlockHandler   *UnlockHandler
	locationHandler *LocationHandler
)

func Setup(
	bottleUseCase *usecase.BottleUseCase,
	unlockUseCase *usecase.UnlockUseCase,
	locations *location.Directory,
) {
	bottleHandler = NewBottleHandler(bottleUseCase)
	unlockHandler = NewUnlockHandler(unlockUseCase)
	locationHandler = NewLocationHandler(locations)
}

func GetBottleHandler() *BottleHandler {
	return bottleHandler
}

func GetUnlockHandler() *UnlockHandler {
	return unlockHandler
}

func GetLocationHandler() *LocationHandler {
	return locationHandler
}
