package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound indicates a missing profile, community or channel
	ErrNotFound = goerr.New("not found")

	// ErrUnauthorized indicates a missing or invalid caller identity
	ErrUnauthorized = goerr.New("unauthorized")

	// ErrCityNotFound indicates the time lookup provider does not know the city
	ErrCityNotFound = goerr.New("city not found")
)
