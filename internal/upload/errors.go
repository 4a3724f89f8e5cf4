package upload

import "errors"

var (
	ErrFeeEstimation  = errors.New("fee estimation failed")
	ErrSubmission     = errors.New("submission failed")
	ErrAlreadyFetched = errors.New("content already fetched")
)
