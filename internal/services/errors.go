package services

import "errors"

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrClickNotFound    = errors.New("click not found")
	ErrCampaignExists   = errors.New("campaign already exists")

	// ErrMissingIdentity means a conversion payload carried no recoverable
	// session identity field.
	ErrMissingIdentity = errors.New("no session identity in payload")

	// ErrBadPayload means the webhook body was not parseable JSON.
	ErrBadPayload = errors.New("payload not parseable")
)
