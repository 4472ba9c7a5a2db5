package model

import "github.com/google/uuid"

type Client struct {
	ID      uuid.UUID
	Name    string
	Address string
	Email   string
	Phone   string
}
