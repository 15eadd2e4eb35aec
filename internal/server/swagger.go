package server

//go:generate swag init -g internal/server/server.go -o docs

// @title NSC Carbon Footprint Calculator API
// @version 0.1
// @description Measure the data transfer and CO₂ footprint of web pages, first visit vs. return visit.
// @BasePath /
