package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Updown Trading API
// @version         0.1.0
// @description     Round lifecycle, trade intake, and balance ledger for the binary-options core.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
