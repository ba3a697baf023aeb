package externalApi

import "errors"

var (
	ErrNotFound    = errors.New("error not found")
	ErrRateLimited = errors.New("error rate limited")
	ErrBadResponse = errors.New("error bad response")
)
